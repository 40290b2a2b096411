package window

import "fmt"

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}

func errUnknownType(t Type) error {
	return fmt.Errorf("unknown window type: %d", int(t))
}
