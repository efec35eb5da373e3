package resource

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lightsource/lse/internal/assert"
)

var logger atomic.Pointer[zap.Logger]

// Logger returns the runtime logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// SetLogger configures the runtime logger, including the logger used for
// contract violations. Stores capture the logger when they are created, so
// call this before creating them.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
	assert.SetLogger(l)
}
