// Package alert reports operational failures to a channel outside of the
// user-facing socket responses.
package alert

import (
	"context"
	"fmt"
	"log/slog"
)

// Sink accepts preformatted alert text.
type Sink interface {
	Alert(ctx context.Context, text string) error
}

// Kind names the subsystem an alert comes from.
type Kind string

const (
	KindDaemon     Kind = "DAEMON ERROR"
	KindFeed       Kind = "GITHUB FEED ERROR"
	KindNewsletter Kind = "NEWSLETTER ERROR"
	KindRedis      Kind = "REDIS ERROR"
	KindServer     Kind = "SERVER"
)

// Format renders an alert in the chat markup used by the ops channel:
//
//	> *DAEMON ERROR:* ```detail```
//	> _Cause: someone is going through the Tour_
func Format(kind Kind, detail any, cause string) string {
	return fmt.Sprintf("\n> *%s:* ```%v```\n> _Cause: %s_\n", kind, detail, cause)
}

// Reporter wraps a Sink so callers never have to handle delivery errors;
// a failed delivery is logged and dropped.
type Reporter struct {
	sink   Sink
	logger *slog.Logger
}

// NewReporter creates a Reporter. A nil sink logs only.
func NewReporter(sink Sink, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Reporter{sink: sink, logger: logger}
}

// Report formats and delivers an alert.
func (r *Reporter) Report(ctx context.Context, kind Kind, detail any, cause string) {
	if err := r.sink.Alert(ctx, Format(kind, detail, cause)); err != nil {
		r.logger.Error("alert delivery failed", "kind", kind, "error", err)
	}
}

// Notify delivers free-form text, e.g. the startup banner.
func (r *Reporter) Notify(ctx context.Context, text string) {
	if err := r.sink.Alert(ctx, text); err != nil {
		r.logger.Error("alert delivery failed", "error", err)
	}
}

// LogSink writes alerts to a structured logger. Used in development and
// as the fallback when no webhook is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Alert(_ context.Context, text string) error {
	s.logger.Warn("alert", "text", text)
	return nil
}

// Multi fans an alert out to several sinks and returns the first error.
type Multi []Sink

func (m Multi) Alert(ctx context.Context, text string) error {
	var first error
	for _, s := range m {
		if err := s.Alert(ctx, text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
