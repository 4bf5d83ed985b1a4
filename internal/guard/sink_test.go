package guard

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// errWriter fails every write.
type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errTestSink }

// testAlert builds an alert with two frames.
func testAlert() *domain.Alert {
	return &domain.Alert{
		ID:        uuid.New(),
		Session:   uuid.New(),
		Timestamp: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Observation: domain.Observation{
			Label: "data-sync",
			Count: 700_000_000,
		},
		Threshold: 1_000_000,
		Frames: []domain.Frame{
			{Index: 0, Symbol: "main.syncLoop /srv/main.go:42"},
			{Index: 1, Symbol: "0x4a5b6c"},
		},
	}
}

// TestWriterSink_Format verifies the human-readable alert layout.
func TestWriterSink_Format(t *testing.T) {
	t.Parallel()

	var (
		buf   bytes.Buffer
		alert = testAlert()
	)

	require.NoError(t, NewWriterSink(&buf).Emit(alert))

	want := alertHeader + " 2026-10-18T09:30:00Z session=" + alert.Session.String() + " id=" + alert.ID.String() + "\n" +
		"loop: data-sync\n" +
		"count: 700000000 | threshold: 1000000\n" +
		stackHeader + "\n" +
		"[0] main.syncLoop /srv/main.go:42\n" +
		"[1] 0x4a5b6c\n" +
		stackFooter + "\n"

	require.Equal(t, want, buf.String())
}

// TestWriterSink_WriteError ensures write failures are reported to the caller of Emit.
func TestWriterSink_WriteError(t *testing.T) {
	t.Parallel()

	err := NewWriterSink(errWriter{}).Emit(testAlert())
	require.ErrorIs(t, err, errTestSink)
}

// TestLoggerSink_Fields checks the structured fields of a logged alert.
func TestLoggerSink_Fields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	alert := testAlert()

	require.NoError(t, NewLoggerSink(zap.New(core).Sugar()).Emit(alert))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	require.Equal(t, "data-sync", fields["loop"])
	require.Equal(t, uint64(700_000_000), fields["count"])
	require.Equal(t, uint64(1_000_000), fields["threshold"])
	require.Equal(t, alert.ID.String(), fields["alert_id"])
	require.Len(t, fields["stack"], 2)
}

// TestMultiSink_JoinsErrors verifies every sink is tried and errors are combined.
func TestMultiSink_JoinsErrors(t *testing.T) {
	t.Parallel()

	var (
		first  = &recordingSink{err: errTestSink}
		second = new(recordingSink)
		other  = errors.New("other failure")
		third  = &recordingSink{err: other}
	)

	err := MultiSink{first, second, third}.Emit(testAlert())

	require.ErrorIs(t, err, errTestSink)
	require.ErrorIs(t, err, other)
	require.Equal(t, 1, first.count())
	require.Equal(t, 1, second.count())
	require.Equal(t, 1, third.count())

	require.NoError(t, MultiSink{second}.Emit(testAlert()))
}
