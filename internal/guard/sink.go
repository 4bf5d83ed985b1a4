package guard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// Sink receives alerts. Implementations are called with the emission lock
// held, so at most one Emit runs at a time per Settings.
type Sink interface {
	Emit(alert *domain.Alert) error
}

const (
	alertHeader = "[LOOP_GUARD_ALERT]"
	stackHeader = "===== LOOP OVERFLOW STACK TRACE ====="
	stackFooter = "====================================="
)

// WriterSink renders alerts as human-readable lines to an append-only stream.
type WriterSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterSink creates a sink writing to w, or to stderr when w is nil.
func NewWriterSink(w io.Writer) *WriterSink {
	if w == nil {
		w = os.Stderr
	}

	return &WriterSink{w: w}
}

// Emit implements Sink.
func (s *WriterSink) Emit(alert *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, FormatAlert(alert)); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}

	return nil
}

// FormatAlert renders the alert text written by WriterSink.
func FormatAlert(alert *domain.Alert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s session=%s id=%s\n",
		alertHeader, alert.Timestamp.Format(time.RFC3339), alert.Session, alert.ID)
	fmt.Fprintf(&b, "loop: %s\n", alert.Observation.Label)
	fmt.Fprintf(&b, "count: %d | threshold: %d\n", alert.Observation.Count, alert.Threshold)

	if len(alert.Frames) == 0 {
		return b.String()
	}

	b.WriteString(stackHeader + "\n")

	for _, frame := range alert.Frames {
		b.WriteString(frame.String() + "\n")
	}

	b.WriteString(stackFooter + "\n")

	return b.String()
}

// LoggerSink writes alerts as structured warnings.
type LoggerSink struct {
	logger *zap.SugaredLogger
}

// NewLoggerSink creates a sink backed by l.
func NewLoggerSink(l *zap.SugaredLogger) *LoggerSink {
	return &LoggerSink{logger: l}
}

// Emit implements Sink.
func (s *LoggerSink) Emit(alert *domain.Alert) error {
	kvs := []any{
		"alert_id", alert.ID.String(),
		"session", alert.Session.String(),
		"loop", alert.Observation.Label,
		"count", alert.Observation.Count,
		"threshold", alert.Threshold,
	}

	if len(alert.Frames) > 0 {
		stack := make([]string, 0, len(alert.Frames))
		for _, frame := range alert.Frames {
			stack = append(stack, frame.String())
		}

		kvs = append(kvs, "stack", stack)
	}

	s.logger.Warnw("Loop iteration threshold exceeded", kvs...)

	return nil
}

// MultiSink emits every alert to all of its sinks.
type MultiSink []Sink

// Emit implements Sink. Every sink is tried; errors are joined.
func (m MultiSink) Emit(alert *domain.Alert) error {
	var errs []error

	for _, sink := range m {
		if err := sink.Emit(alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
