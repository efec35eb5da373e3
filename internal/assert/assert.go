//go:build !lsedebug

// Package assert reports contract violations by callers of the runtime.
//
// Release builds log the violation and let the caller degrade gracefully.
// Build with -tags lsedebug to turn every violation into a panic.
package assert

import (
	"fmt"

	"go.uber.org/zap"
)

// Enabled reports whether violations panic.
const Enabled = false

// That logs a warning when cond is false.
func That(cond bool, format string, args ...any) {
	if cond {
		return
	}
	Logger().Warn("contract violation", zap.String("detail", fmt.Sprintf(format, args...)))
}
