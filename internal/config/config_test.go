package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validations and defaults.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), errConfigIsNotSet)

	// Missing address.
	cfg := Default()
	cfg.ControlAddress = ""
	require.ErrorIs(t, Validate(cfg), errControlAddressRequired)

	// Bad address.
	cfg = Default()
	cfg.ControlAddress = "bad:address"
	require.Error(t, Validate(cfg))

	// Unknown sink.
	cfg = Default()
	cfg.Guard.Sink = "pager"
	require.ErrorIs(t, Validate(cfg), errUnknownSink)

	// Unknown log level.
	cfg = Default()
	cfg.LogLevel = "chatty"
	require.ErrorIs(t, Validate(cfg), errUnknownLogLevel)

	// Negative workers.
	cfg = Default()
	cfg.Workload.Workers = -1
	require.ErrorIs(t, Validate(cfg), errNegativeWorkers)

	// Defaults are filled in.
	cfg = &Config{ControlAddress: "127.0.0.1:0"}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultStateFilename, cfg.StateFile)
	require.Equal(t, SinkStderr, cfg.Guard.Sink)
	require.Equal(t, 1, cfg.Workload.Workers)
	require.Equal(t, DefaultWorkloadInterval, cfg.Workload.Interval)
	require.Equal(t, DefaultWorkloadLabel, cfg.Workload.Label)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.ControlAddress = "127.0.0.1:50099"
	cfg.Guard.Threshold = 5_000_000
	cfg.Guard.EnableLoopBreak = true
	cfg.Guard.Sink = SinkBoth
	cfg.Workload.Enabled = true
	cfg.Workload.Bound = 700_000_000
	cfg.Workload.Interval = time.Minute

	require.NoError(t, Save(path, cfg))
	require.ErrorIs(t, Save(path, nil), errConfigIsNotSet)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_PartialFileKeepsDefaults verifies that keys missing from the file keep their defaults.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := "guard:\n  threshold: 0\n  enable_stack_trace: false\n"

	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultControlAddress, cfg.ControlAddress)
	require.Zero(t, cfg.Guard.Threshold)
	require.False(t, cfg.Guard.EnableStackTrace)
	require.True(t, cfg.Guard.WarnOncePerProcess)

	opts := cfg.GuardOptions()
	require.Zero(t, opts.Threshold)
	require.True(t, opts.WarnOncePerProcess)
	require.False(t, opts.EnableStackTrace)
	require.False(t, opts.EnableLoopBreak)
}

// TestLoad_Errors covers missing and malformed files.
func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("guard: [oops"), DefaultFilePermissions))

	_, err = Load(path)
	require.Error(t, err)
}
