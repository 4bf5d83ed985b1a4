package guard

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// DefaultThreshold is the iteration count above which an alert fires
// unless configured otherwise.
const DefaultThreshold uint64 = 1_000_000

// Options are the recognised configuration inputs of a guard.
type Options struct {
	// Threshold is the iteration count above which an alert fires.
	Threshold uint64
	// WarnOncePerProcess emits at most one alert per armed session.
	WarnOncePerProcess bool
	// EnableStackTrace captures the call stack on alert.
	EnableStackTrace bool
	// EnableLoopBreak asks guarded loops to stop on overflow.
	EnableLoopBreak bool
}

// DefaultOptions returns the options a production process starts with.
func DefaultOptions() Options {
	return Options{
		Threshold:          DefaultThreshold,
		WarnOncePerProcess: true,
		EnableStackTrace:   true,
		EnableLoopBreak:    false,
	}
}

// Settings is the configuration store shared by every guard built on it.
// It is owned by the host application and safe for concurrent use.
type Settings struct {
	// threshold is read and written without locking.
	threshold atomic.Uint64

	warnOnce   atomic.Bool
	stackTrace atomic.Bool
	loopBreak  atomic.Bool

	// emitted mirrors alerted for a lock-free suppression check.
	emitted atomic.Bool

	// mu serialises alert emission and guards the fields below.
	mu sync.Mutex
	// alerted is true once the current session emitted an alert.
	alerted bool
	// session identifies the current armed session.
	session uuid.UUID
	// updatedAt and lastActor record the last operator change.
	updatedAt time.Time
	lastActor *domain.Actor
}

// NewSettings creates a store initialised from opts with a fresh armed session.
func NewSettings(opts Options) *Settings {
	s := &Settings{
		session: uuid.New(),
	}

	s.threshold.Store(opts.Threshold)
	s.warnOnce.Store(opts.WarnOncePerProcess)
	s.stackTrace.Store(opts.EnableStackTrace)
	s.loopBreak.Store(opts.EnableLoopBreak)

	return s
}

// Threshold returns the current threshold.
func (s *Settings) Threshold() uint64 {
	return s.threshold.Load()
}

// SetThreshold stores a new threshold. It applies to every subsequent check.
func (s *Settings) SetThreshold(v uint64) {
	s.threshold.Store(v)
}

// WarnOncePerProcess reports whether the one-shot policy is active.
func (s *Settings) WarnOncePerProcess() bool {
	return s.warnOnce.Load()
}

// SetWarnOncePerProcess toggles the one-shot policy.
func (s *Settings) SetWarnOncePerProcess(v bool) {
	s.warnOnce.Store(v)
}

// StackTraceEnabled reports whether alerts capture the call stack.
func (s *Settings) StackTraceEnabled() bool {
	return s.stackTrace.Load()
}

// SetStackTraceEnabled toggles call stack capture.
func (s *Settings) SetStackTraceEnabled(v bool) {
	s.stackTrace.Store(v)
}

// BreakOnOverflow reports whether guarded loops should stop on overflow.
func (s *Settings) BreakOnOverflow() bool {
	return s.loopBreak.Load()
}

// SetBreakOnOverflow toggles the loop break policy.
func (s *Settings) SetBreakOnOverflow(v bool) {
	s.loopBreak.Store(v)
}

// Apply stores every field of opts.
func (s *Settings) Apply(opts Options) {
	s.SetThreshold(opts.Threshold)
	s.SetWarnOncePerProcess(opts.WarnOncePerProcess)
	s.SetStackTraceEnabled(opts.EnableStackTrace)
	s.SetBreakOnOverflow(opts.EnableLoopBreak)
}

// ResetAlertFlag re-arms alerting and starts a new session.
func (s *Settings) ResetAlertFlag() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerted = false
	s.emitted.Store(false)
	s.session = uuid.New()
}

// Touch records an operator change for reporting.
func (s *Settings) Touch(actor *domain.Actor, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatedAt = at
	s.lastActor = actor.Clone()
}

// Snapshot returns a copy of the current settings.
func (s *Settings) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &domain.Snapshot{
		Threshold:          s.Threshold(),
		WarnOncePerProcess: s.WarnOncePerProcess(),
		StackTraceEnabled:  s.StackTraceEnabled(),
		BreakOnOverflow:    s.BreakOnOverflow(),
		Alerted:            s.alerted,
		Session:            s.session,
		UpdatedAt:          s.updatedAt,
		LastActor:          s.lastActor.Clone(),
	}
}

// suppressed is the lock-free pre-check of the emission path.
func (s *Settings) suppressed() bool {
	return s.warnOnce.Load() && s.emitted.Load()
}

// shouldEmit must be called with mu held.
func (s *Settings) shouldEmit() bool {
	return !s.alerted || !s.warnOnce.Load()
}

// markEmitted must be called with mu held.
func (s *Settings) markEmitted() {
	s.alerted = true
	s.emitted.Store(true)
}
