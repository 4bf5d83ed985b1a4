package guard

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Actor identifies who performed an action in the system.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return fmt.Sprintf("%s@%s", a.Username, a.Hostname)
}

// Observation is a single checkpoint report: which loop and how many iterations.
type Observation struct {
	// Label is a human-readable loop identifier.
	Label string
	// Count is the observed bound or running iteration count.
	Count uint64
}

// Frame is one entry of a captured call stack.
type Frame struct {
	// Index is the position of the frame, 0 being the innermost.
	Index int
	// Symbol is whatever the platform could resolve: function, file and line,
	// or a raw program counter.
	Symbol string
}

// String renders the frame as a single diagnostic line.
func (f Frame) String() string {
	return fmt.Sprintf("[%d] %s", f.Index, f.Symbol)
}

// Alert is the record emitted when an observation exceeds the threshold.
// It lives only for the duration of the emission.
type Alert struct {
	// ID uniquely identifies this alert.
	ID uuid.UUID
	// Session identifies the armed session the alert was emitted in.
	Session uuid.UUID
	// Timestamp is when the overflow was detected.
	Timestamp time.Time
	// Observation is the overflowing checkpoint report.
	Observation Observation
	// Threshold is the threshold in effect when the alert fired.
	Threshold uint64
	// Frames is the captured call stack; empty when capture is disabled or failed.
	Frames []Frame
}

// Snapshot represents the guard settings at a specific point in time.
type Snapshot struct {
	// Threshold is the iteration count above which an alert fires.
	Threshold uint64
	// WarnOncePerProcess enables the one-shot alert policy.
	WarnOncePerProcess bool
	// StackTraceEnabled enables call stack capture on alert.
	StackTraceEnabled bool
	// BreakOnOverflow asks guarded loops to stop on overflow.
	BreakOnOverflow bool
	// Alerted reports whether the current session already emitted an alert.
	Alerted bool
	// Session identifies the current armed session.
	Session uuid.UUID
	// UpdatedAt is when the settings were last changed by an operator.
	UpdatedAt time.Time
	// LastActor is the operator who last changed the settings.
	LastActor *Actor
}

// Clone returns a copy of the snapshot to avoid leaking internal references.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.LastActor = s.LastActor.Clone()

	return &cloned
}
