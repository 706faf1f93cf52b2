// Package sinks provides progress.Sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/shelfscan/shelfscan/internal/progress"
)

// LogSink emits a structured log line per completed lookup. It stands in for
// the terminal progress bar of interactive runs.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Record logs the event using structured fields.
func (s *LogSink) Record(_ context.Context, evt progress.Event) error {
	s.logger.Info("lookup completed",
		zap.String("run_id", evt.RunID.String()),
		zap.Int64("completed", evt.Completed),
		zap.Int64("total", evt.Total),
		zap.String("catalog", evt.Catalog),
		zap.String("availability", string(evt.Availability)),
		zap.Duration("dur", evt.Dur),
	)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
