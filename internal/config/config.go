package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/loop-guard/internal/guard"
	"github.com/oshokin/loop-guard/internal/logger"
)

// Config holds the settings of the guarded server and its control clients.
type Config struct {
	// ControlAddress is the gRPC address of the control API.
	ControlAddress string `yaml:"control_addr"`
	// StateFile is the path to the JSON file storing operator changes.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of diagnostic logs.
	LogLevel string `yaml:"log_level"`
	// Guard holds the loop guard options.
	Guard Guard `yaml:"guard"`
	// Workload configures the sample guarded job run by the server.
	Workload Workload `yaml:"workload"`
}

// Guard holds the recognised loop guard options.
type Guard struct {
	// Threshold is the iteration count above which an alert fires.
	Threshold uint64 `yaml:"threshold"`
	// WarnOncePerProcess emits at most one alert per armed session.
	WarnOncePerProcess bool `yaml:"warn_once_per_process"`
	// EnableStackTrace captures the call stack on alert.
	EnableStackTrace bool `yaml:"enable_stack_trace"`
	// EnableLoopBreak asks guarded loops to stop on overflow.
	EnableLoopBreak bool `yaml:"enable_loop_break"`
	// Sink selects where alerts go: stderr, log or both.
	Sink string `yaml:"sink"`
}

// Workload configures the periodic guarded job.
type Workload struct {
	// Enabled turns the job on.
	Enabled bool `yaml:"enabled"`
	// Label names the guarded loops in alerts.
	Label string `yaml:"label"`
	// Bound is the number of items the job processes per run.
	Bound uint64 `yaml:"bound"`
	// Interval is the delay between runs.
	Interval time.Duration `yaml:"interval"`
	// Workers is the number of concurrent job runners.
	Workers int `yaml:"workers"`
}

// Alert sink names.
const (
	SinkStderr = "stderr"
	SinkLog    = "log"
	SinkBoth   = "both"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "loopguard-settings.yaml"

	// DefaultStateFilename is the default filename for persisted operator changes.
	DefaultStateFilename = "loopguard-state.json"

	// DefaultControlAddress is the default control API address.
	DefaultControlAddress = "127.0.0.1:50061"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultWorkloadInterval is the default delay between workload runs.
	DefaultWorkloadInterval = 30 * time.Second

	// DefaultWorkloadLabel names the workload loops unless configured.
	DefaultWorkloadLabel = "data-sync"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errControlAddressRequired is returned when the control address is missing.
	errControlAddressRequired = errors.New("control address must be provided")
	// errUnknownSink is returned for an unsupported alert sink name.
	errUnknownSink = errors.New("unknown alert sink")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeWorkers is returned when the workload has a negative worker count.
	errNegativeWorkers = errors.New("workload workers must not be negative")
)

// Default returns the settings used for every key missing from the file.
func Default() *Config {
	opts := guard.DefaultOptions()

	return &Config{
		ControlAddress: DefaultControlAddress,
		StateFile:      DefaultStateFilename,
		Timeout:        DefaultTimeout,
		LogLevel:       "info",
		Guard: Guard{
			Threshold:          opts.Threshold,
			WarnOncePerProcess: opts.WarnOncePerProcess,
			EnableStackTrace:   opts.EnableStackTrace,
			EnableLoopBreak:    opts.EnableLoopBreak,
			Sink:               SinkStderr,
		},
		Workload: Workload{
			Label:    DefaultWorkloadLabel,
			Interval: DefaultWorkloadInterval,
			Workers:  1,
		},
	}
}

// Load reads configuration from the provided path on top of Default and
// validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults for empty values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.ControlAddress == "" {
		return errControlAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ControlAddress); err != nil {
		return fmt.Errorf("invalid control address: %w", err)
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	switch cfg.Guard.Sink {
	case "":
		cfg.Guard.Sink = SinkStderr
	case SinkStderr, SinkLog, SinkBoth:
	default:
		return fmt.Errorf("%w: %q", errUnknownSink, cfg.Guard.Sink)
	}

	// Set default timeout if not specified.
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Set default state file if not specified.
	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	return validateWorkload(&cfg.Workload)
}

// validateWorkload fills workload defaults.
func validateWorkload(w *Workload) error {
	if w.Workers < 0 {
		return errNegativeWorkers
	}

	if w.Workers == 0 {
		w.Workers = 1
	}

	if w.Interval <= 0 {
		w.Interval = DefaultWorkloadInterval
	}

	if w.Label == "" {
		w.Label = DefaultWorkloadLabel
	}

	return nil
}

// GuardOptions converts the guard section into guard options.
func (c *Config) GuardOptions() guard.Options {
	return guard.Options{
		Threshold:          c.Guard.Threshold,
		WarnOncePerProcess: c.Guard.WarnOncePerProcess,
		EnableStackTrace:   c.Guard.EnableStackTrace,
		EnableLoopBreak:    c.Guard.EnableLoopBreak,
	}
}
