package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/loop-guard/internal/config"
	domain "github.com/oshokin/loop-guard/internal/domain/guard"
	"github.com/oshokin/loop-guard/internal/service/common"
	"github.com/oshokin/loop-guard/internal/service/server"
)

// freeAddress reserves a free loopback port and releases it for the server.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// startServer starts loopguard-server with a temporary config and the given
// state file. Returns a stop function that waits for the server to exit.
func startServer(t *testing.T, addr string, statePath string) (stop func()) {
	t.Helper()

	// Create cancellable context for server lifecycle.
	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := config.Default()
	cfg.ControlAddress = addr
	cfg.StateFile = statePath
	cfg.Timeout = 5 * time.Second
	cfg.Workload.Enabled = false

	require.NoError(t, config.Save(cfgPath, cfg))

	done := make(chan error, 1)

	// Start server in background goroutine.
	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath: cfgPath,
			NoWatch:    true,
		})
	}()

	// Wait until the control port accepts connections.
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 5*time.Second, 20*time.Millisecond)

	return func() {
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

// dial connects a control client to addr.
func dial(t *testing.T, addr string) *common.Client {
	t.Helper()

	c, err := common.Dial(context.Background(), addr, common.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// TestControl_Roundtrip starts the real server and exercises every control call
// with on-disk persistence.
func TestControl_Roundtrip(t *testing.T) {
	t.Parallel()

	addr := freeAddress(t)
	statePath := filepath.Join(t.TempDir(), "state.json")

	stop := startServer(t, addr, statePath)
	defer stop()

	ctx := context.Background()
	c := dial(t, addr)

	actor := &domain.Actor{
		Hostname: "test-hostname",
		Username: "test-user",
	}

	// Initial read reports configured defaults.
	got, err := c.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000), got.Threshold)
	require.False(t, got.Alerted)

	// Lower the threshold.
	got, err = c.SetThreshold(ctx, actor, 5)
	require.NoError(t, err)
	require.Equal(t, uint64(5), got.Threshold)
	require.Equal(t, "test-user@test-hostname", got.LastActor.String())

	sessionBefore := got.Session

	// Re-arm alerting starts a new session.
	got, err = c.ResetAlertFlag(ctx, actor)
	require.NoError(t, err)
	require.False(t, got.Alerted)
	require.NotEqual(t, sessionBefore, got.Session)

	// Read back what was written.
	got, err = c.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(5), got.Threshold)

	// Verify changes were persisted to disk.
	_, err = os.Stat(statePath)
	require.NoError(t, err)
}

// TestControl_ThresholdSurvivesRestart verifies the operator threshold is
// restored from the state file after a restart.
func TestControl_ThresholdSurvivesRestart(t *testing.T) {
	t.Parallel()

	statePath := filepath.Join(t.TempDir(), "state.json")
	actor := &domain.Actor{Hostname: "ops-host", Username: "ops"}
	ctx := context.Background()

	// First run: change the threshold.
	addr := freeAddress(t)
	stop := startServer(t, addr, statePath)

	_, err := dial(t, addr).SetThreshold(ctx, actor, 4242)
	require.NoError(t, err)
	stop()

	// Second run: the persisted threshold wins over the config file.
	addr = freeAddress(t)
	stop = startServer(t, addr, statePath)
	defer stop()

	got, err := dial(t, addr).GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(4242), got.Threshold)
	require.NotNil(t, got.LastActor)
	require.Equal(t, "ops@ops-host", got.LastActor.String())
}
