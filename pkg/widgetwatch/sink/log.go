package sink

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// LogSink logs each batch and optionally writes it as a JSON line.
type LogSink struct {
	logger *slog.Logger
	mu     sync.Mutex
	w      io.Writer
}

// NewLogSink creates a LogSink. Either argument may be nil.
func NewLogSink(logger *slog.Logger, w io.Writer) *LogSink {
	return &LogSink{logger: logger, w: w}
}

// Send implements Sink.
func (s *LogSink) Send(_ context.Context, b Batch) error {
	if s.logger != nil {
		s.logger.Info("event batch",
			slog.String("batch_id", b.ID),
			slog.String("widget_id", b.WidgetID),
			slog.Int("events", len(b.Events)),
		)
	}
	if s.w == nil {
		return nil
	}

	data, err := b.Marshal()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(data, '\n'))
	return err
}
