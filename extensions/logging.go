package extensions

import (
	"context"
	"log/slog"
	"time"

	weft "github.com/weft-fn/weft-go"
)

// LoggingExtension logs every host invocation and install through slog
type LoggingExtension struct {
	weft.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension.
// logHandler: slog.Handler for output (use NewHumanHandler for formatted
// output, NewSilentHandler for tests, or any other slog.Handler)
func NewLoggingExtension(logHandler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: weft.NewBaseExtension("logging"),
		logger:        slog.New(logHandler),
	}
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *weft.Operation) (any, error) {
	start := time.Now()
	result, err := next()
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("operation failed",
			"operation", string(op.Kind),
			"method", op.Method,
			"duration", duration,
			"error", err.Error(),
		)
	} else {
		e.logger.Info("operation completed",
			"operation", string(op.Kind),
			"method", op.Method,
			"duration", duration,
		)
	}

	return result, err
}

func (e *LoggingExtension) OnPanic(inv *weft.Invocation, recovered any, stack []byte) {
	e.logger.Error("panic in host method",
		"method", inv.Method(),
		"invocation", inv.ID(),
		"recovered", recovered,
	)
}
