//go:build lsedebug

package assert

import "fmt"

// Enabled reports whether violations panic.
const Enabled = true

// That panics when cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic("lse: contract violation: " + fmt.Sprintf(format, args...))
	}
}
