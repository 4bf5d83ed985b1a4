package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/loop-guard/internal/config"
	domain "github.com/oshokin/loop-guard/internal/domain/guard"
)

// TestResolveTarget covers flag overrides and settings file fallbacks.
func TestResolveTarget(t *testing.T) {
	t.Parallel()

	// Address only, no settings file needed.
	addr, timeout, err := resolveTarget(&Options{ServerAddress: "127.0.0.1:1"})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:1", addr)
	require.Equal(t, config.DefaultTimeout, timeout)

	// Settings file provides address and timeout.
	path := filepath.Join(t.TempDir(), "settings.yaml")
	cfg := config.Default()
	cfg.ControlAddress = "127.0.0.1:2"
	cfg.Timeout = time.Second
	require.NoError(t, config.Save(path, cfg))

	addr, timeout, err = resolveTarget(&Options{ConfigPath: path})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:2", addr)
	require.Equal(t, time.Second, timeout)

	// Flags override the file.
	addr, timeout, err = resolveTarget(&Options{ConfigPath: path, ServerAddress: "127.0.0.1:3", Timeout: time.Minute})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:3", addr)
	require.Equal(t, time.Minute, timeout)

	// Missing file without an address fails.
	_, _, err = resolveTarget(&Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)

	// Missing file with an address falls back to the address.
	addr, _, err = resolveTarget(&Options{
		ConfigPath:    filepath.Join(t.TempDir(), "missing.yaml"),
		ServerAddress: "127.0.0.1:4",
	})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:4", addr)
}

// TestFormatSnapshot checks the rendered settings.
func TestFormatSnapshot(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<nil settings>\n", FormatSnapshot(nil))

	session := uuid.MustParse("6f1c2f8e-6a0c-4d63-9d0e-8f0a4a1b2c3d")

	out := FormatSnapshot(&domain.Snapshot{
		Threshold:          1_000_000,
		WarnOncePerProcess: true,
		Session:            session,
		UpdatedAt:          time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC),
		LastActor:          &domain.Actor{Hostname: "ops-01", Username: "oncall"},
	})

	require.Contains(t, out, "threshold:             1000000\n")
	require.Contains(t, out, "warn_once_per_process: true\n")
	require.Contains(t, out, "enable_loop_break:     false\n")
	require.Contains(t, out, "session:               "+session.String()+"\n")
	require.Contains(t, out, "updated_at:            2026-10-18T08:00:00Z\n")
	require.Contains(t, out, "last_actor:            oncall@ops-01\n")

	out = FormatSnapshot(&domain.Snapshot{})
	require.Contains(t, out, "updated_at:            <never>\n")
	require.Contains(t, out, "last_actor:            <none>\n")
}
