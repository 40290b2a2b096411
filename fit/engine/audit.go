package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// audit collects the human-readable fit log stored with the result and
// mirrors every line to the debug logger.
type audit struct {
	b   strings.Builder
	log *zap.Logger
}

func newAudit(log *zap.Logger) *audit {
	return &audit{log: log}
}

func (a *audit) add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.b.WriteString(msg)
	a.b.WriteByte('\n')
	a.log.Debug(msg)
}

func (a *audit) String() string {
	return a.b.String()
}
