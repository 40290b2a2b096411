package lm

import (
	"fmt"
	"strings"
)

// Status describes why the solver stopped.
type Status int

const (
	// StatusSuccess means the relative parameter change fell below tolerance.
	StatusSuccess Status = iota
	// StatusNoProgress means no damping level reduced the cost further.
	StatusNoProgress
	// StatusIterationCap means MaxIterations was reached first.
	StatusIterationCap
	// StatusSingular means the normal equations could not be factorized.
	StatusSingular
)

var statusNames = [...]string{
	StatusSuccess:      "success",
	StatusNoProgress:   "no-progress",
	StatusIterationCap: "iteration-cap",
	StatusSingular:     "singular",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (Status, error) {
	name = strings.TrimSpace(name)
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("lm: unknown status %q", name)
}
