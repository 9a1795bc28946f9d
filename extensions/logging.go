package extensions

import (
	"log/slog"
	"time"

	memo "github.com/memo-fn/memo-go"
)

// LoggingExtension logs every evaluation and write with its duration, and
// every invalidation with the affected nodes.
type LoggingExtension struct {
	memo.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a logging extension. A nil logger falls back
// to slog.Default.
func NewLoggingExtension(logger *slog.Logger) *LoggingExtension {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingExtension{
		BaseExtension: memo.NewBaseExtension("logging"),
		logger:        logger,
	}
}

func (e *LoggingExtension) Wrap(next func() (any, error), op *memo.Operation) (any, error) {
	start := time.Now()
	result, err := next()
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("operation failed",
			"op", string(op.Kind),
			"node", op.Node,
			"duration", duration,
			"error", err,
		)
	} else {
		e.logger.Debug("operation completed",
			"op", string(op.Kind),
			"node", op.Node,
			"duration", duration,
		)
	}

	return result, err
}

func (e *LoggingExtension) OnInvalidate(g *memo.Graph, nodes []string) {
	e.logger.Debug("nodes invalidated", "nodes", nodes)
}

func (e *LoggingExtension) OnHookError(err *memo.HookError) bool {
	e.logger.Error("invalidation hook failed",
		"node", err.Node,
		"context", err.Context,
		"error", err.Err,
	)
	return false // log only, let later extensions see it too
}
