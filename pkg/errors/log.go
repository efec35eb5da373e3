package errors

import "go.uber.org/zap"

// LogHandler is an ErrorHandler that writes errors to a zap logger.
type LogHandler struct {
	// Logger receives the entries. A nil Logger discards them.
	Logger *zap.Logger
	// Verbose includes stack traces.
	Verbose bool
}

// HandleError logs a ResourceError at error level.
func (h *LogHandler) HandleError(err *ResourceError) {
	if err == nil || h.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Key != "" {
		fields = append(fields, zap.String("key", err.Key))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.Logger.Error("lse error", fields...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil || h.Logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.Logger.Error("lse panic", fields...)
}
