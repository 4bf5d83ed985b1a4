package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/loop-guard/internal/config"
	domain "github.com/oshokin/loop-guard/internal/domain/guard"
	"github.com/oshokin/loop-guard/internal/logger"
	"github.com/oshokin/loop-guard/internal/service/common"
)

// Options configures how the client reaches the guarded server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides the control address from config when specified.
	ServerAddress string

	// Timeout overrides the per-RPC timeout from config when positive.
	Timeout time.Duration
}

// Action is a single control call made with an established client.
type Action func(ctx context.Context, client *common.Client, actor *domain.Actor) (*domain.Snapshot, error)

// Get reads the current settings.
func Get() Action {
	return func(ctx context.Context, client *common.Client, _ *domain.Actor) (*domain.Snapshot, error) {
		return client.GetSettings(ctx)
	}
}

// SetThreshold changes the threshold.
func SetThreshold(threshold uint64) Action {
	return func(ctx context.Context, client *common.Client, actor *domain.Actor) (*domain.Snapshot, error) {
		return client.SetThreshold(ctx, actor, threshold)
	}
}

// Reset re-arms one-shot alerting.
func Reset() Action {
	return func(ctx context.Context, client *common.Client, actor *domain.Actor) (*domain.Snapshot, error) {
		return client.ResetAlertFlag(ctx, actor)
	}
}

// Run connects to the guarded server, performs action and prints the
// resulting settings to w.
func Run(ctx context.Context, opts *Options, action Action, w io.Writer) error {
	ctx = logger.WithName(ctx, "loopguard-ctl")

	serverAddress, timeout, err := resolveTarget(opts)
	if err != nil {
		return err
	}

	// Identify current user and hostname for the audit trail.
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Calling control server", "server_address", serverAddress)

	snapshot, err := action(ctx, client, actor)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, FormatSnapshot(snapshot))

	return err
}

// resolveTarget picks the server address and timeout: flags override the
// settings file, and a missing file is fine when an address was given.
func resolveTarget(opts *Options) (string, time.Duration, error) {
	if opts.ServerAddress != "" && opts.ConfigPath == "" {
		return opts.ServerAddress, timeoutOrDefault(opts.Timeout, config.DefaultTimeout), nil
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		if opts.ServerAddress == "" {
			return "", 0, fmt.Errorf("load settings: %w", err)
		}

		return opts.ServerAddress, timeoutOrDefault(opts.Timeout, config.DefaultTimeout), nil
	}

	serverAddress := cfg.ControlAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	return serverAddress, timeoutOrDefault(opts.Timeout, cfg.Timeout), nil
}

// timeoutOrDefault returns timeout when positive, otherwise fallback.
func timeoutOrDefault(timeout, fallback time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}

	return fallback
}

// FormatSnapshot renders settings as aligned key-value lines.
func FormatSnapshot(snapshot *domain.Snapshot) string {
	if snapshot == nil {
		return "<nil settings>\n"
	}

	updatedAt := "<never>"
	if !snapshot.UpdatedAt.IsZero() {
		updatedAt = snapshot.UpdatedAt.Format(time.RFC3339)
	}

	actor := "<none>"
	if snapshot.LastActor != nil {
		actor = snapshot.LastActor.String()
	}

	return fmt.Sprintf(
		"threshold:             %d\n"+
			"warn_once_per_process: %t\n"+
			"enable_stack_trace:    %t\n"+
			"enable_loop_break:     %t\n"+
			"alerted:               %t\n"+
			"session:               %s\n"+
			"updated_at:            %s\n"+
			"last_actor:            %s\n",
		snapshot.Threshold,
		snapshot.WarnOncePerProcess,
		snapshot.StackTraceEnabled,
		snapshot.BreakOnOverflow,
		snapshot.Alerted,
		snapshot.Session,
		updatedAt,
		actor,
	)
}
