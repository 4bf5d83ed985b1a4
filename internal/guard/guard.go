package guard

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
	"github.com/oshokin/loop-guard/internal/logger"
)

// callerSkip drops captureStack, emit, overflow and the public check from
// captured stacks so the first frame is the guarded loop.
const callerSkip = 4

// Guard evaluates loop checkpoints against Settings.
type Guard struct {
	// settings is the shared configuration store.
	settings *Settings
	// sink receives alerts.
	sink Sink
	// capturer captures call stacks when enabled.
	capturer FrameCapturer
	// logger reports configuration changes, loop breaks and sink failures.
	logger *zap.SugaredLogger
	// now returns the alert timestamp.
	now func() time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithSink sets the alert sink. The default writes text to stderr.
func WithSink(sink Sink) Option {
	return func(g *Guard) {
		if sink != nil {
			g.sink = sink
		}
	}
}

// WithCapturer sets the stack capturer. A nil capturer disables capture.
func WithCapturer(c FrameCapturer) Option {
	return func(g *Guard) {
		if c == nil {
			c = noopCapturer{}
		}

		g.capturer = c
	}
}

// WithLogger sets the logger used for diagnostics other than alerts.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock sets the clock used for alert timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a guard evaluating against settings.
// A nil settings gets DefaultOptions.
func New(settings *Settings, opts ...Option) *Guard {
	if settings == nil {
		settings = NewSettings(DefaultOptions())
	}

	g := &Guard{
		settings: settings,
		sink:     NewWriterSink(nil),
		capturer: RuntimeCapturer{},
		logger:   logger.Logger().Named("loop-guard"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Settings returns the configuration store the guard evaluates against.
func (g *Guard) Settings() *Settings {
	return g.settings
}

// CheckBound is the pre-loop check. It returns false only when bound exceeds
// the threshold and break-on-overflow is enabled, in which case the caller
// must not execute the loop body at all.
func (g *Guard) CheckBound(bound uint64, label string) bool {
	if bound <= g.settings.Threshold() {
		return true
	}

	return g.overflow(label, bound)
}

// CheckIncrement is the per-iteration check. It increments *counter and
// returns false only when the new value exceeds the threshold and
// break-on-overflow is enabled, in which case the caller must stop the loop.
func (g *Guard) CheckIncrement(counter *uint64, label string) bool {
	*counter++

	if *counter <= g.settings.Threshold() {
		return true
	}

	return g.overflow(label, *counter)
}

// SetThreshold changes the threshold for every subsequent check.
func (g *Guard) SetThreshold(v uint64) {
	previous := g.settings.Threshold()
	g.settings.SetThreshold(v)

	g.logger.Infow("Loop threshold updated", "threshold", v, "previous", previous)
}

// ResetAlertFlag re-arms one-shot alerting.
func (g *Guard) ResetAlertFlag() {
	g.settings.ResetAlertFlag()

	g.logger.Infow("Loop alert re-armed", "session", g.settings.Snapshot().Session.String())
}

// overflow alerts and decides whether the calling loop may proceed.
func (g *Guard) overflow(label string, count uint64) bool {
	g.emit(label, count)

	if !g.settings.BreakOnOverflow() {
		return true
	}

	g.logger.Warnw("Loop break requested", "loop", label, "count", count)

	return false
}

// emit sends at most one alert per armed session. Failures of the sink or
// the capturer never reach the calling loop.
func (g *Guard) emit(label string, count uint64) {
	if g.settings.suppressed() {
		return
	}

	s := g.settings

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.shouldEmit() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Debugw("Loop alert emission panicked", "loop", label, "panic", r)
		}
	}()

	// Marking first keeps a panicking sink from being retried every iteration.
	s.markEmitted()

	alert := &domain.Alert{
		ID:        uuid.New(),
		Session:   s.session,
		Timestamp: g.now(),
		Observation: domain.Observation{
			Label: label,
			Count: count,
		},
		Threshold: s.Threshold(),
		Frames:    g.captureStack(),
	}

	if err := g.sink.Emit(alert); err != nil {
		g.logger.Debugw("Loop alert sink failed", "loop", label, "error", err)
	}
}

// captureStack returns no frames when stack traces are disabled.
func (g *Guard) captureStack() []domain.Frame {
	if !g.settings.StackTraceEnabled() {
		return nil
	}

	return g.capturer.CaptureFrames(callerSkip)
}
