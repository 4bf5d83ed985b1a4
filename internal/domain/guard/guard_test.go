package guard

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestActorClone verifies that Clone returns a deep copy and handles nil safely.
func TestActorClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Actor)(nil).Clone())

	a := &Actor{
		Hostname: "build-01",
		Username: "o.shokin",
	}

	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)
	require.Equal(t, "o.shokin@build-01", b.String())
	require.Equal(t, "<unknown>", (*Actor)(nil).String())
}

// TestSnapshotClone verifies that Snapshot.Clone copies fields and deep-copies LastActor.
func TestSnapshotClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Snapshot)(nil).Clone())

	s := &Snapshot{
		Threshold:          1_000_000,
		WarnOncePerProcess: true,
		StackTraceEnabled:  true,
		Session:            uuid.New(),
		UpdatedAt:          time.Now().UTC().Truncate(time.Second),
		LastActor: &Actor{
			Hostname: "build-01",
			Username: "o.shokin",
		},
	}

	c := s.Clone()
	require.Equal(t, s, c)

	// Ensure actor pointer is cloned.
	require.NotSame(t, s.LastActor, c.LastActor)
}

// TestFrameString checks the single-line frame rendering.
func TestFrameString(t *testing.T) {
	t.Parallel()

	f := Frame{Index: 3, Symbol: "main.main /src/main.go:12"}
	require.Equal(t, "[3] main.main /src/main.go:12", f.String())
}
