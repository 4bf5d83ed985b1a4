package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	api "github.com/oshokin/loop-guard/internal/api/grpc/control"
	"github.com/oshokin/loop-guard/internal/config"
	"github.com/oshokin/loop-guard/internal/guard"
	"github.com/oshokin/loop-guard/internal/logger"
	pb "github.com/oshokin/loop-guard/internal/pb/v1"
	repository "github.com/oshokin/loop-guard/internal/repository/settings"
	"github.com/oshokin/loop-guard/internal/service/workload"
)

// Options controls the loopguard-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist operator changes.
	StateFile string
	// NoWatch disables settings hot reload.
	NoWatch bool
}

// ErrNoControlAddress indicates missing control API configuration.
var ErrNoControlAddress = errors.New("no control address configured")

// Run starts the guarded process and blocks until ctx is canceled or a
// component fails.
//
//nolint:funlen // Wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "loopguard-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyLogLevel(settings.LogLevel)

	// Use StateFile from config unless overridden by command line option.
	stateFile := settings.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.ControlAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	g := guard.New(
		guard.NewSettings(settings.GuardOptions()),
		guard.WithSink(buildSink(settings.Guard.Sink)),
	)

	svc, err := newService(ctx, g, repository.NewFileRepository(stateFile))
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterControlServiceServer(grpcServer, api.NewServer(svc))

	var job *workload.Job
	if settings.Workload.Enabled {
		job = workload.NewJob(g, workload.Options{
			Label:    settings.Workload.Label,
			Bound:    settings.Workload.Bound,
			Interval: settings.Workload.Interval,
			Workers:  settings.Workload.Workers,
		})
	}

	logger.InfoKV(ctx, "Loop guard server listening",
		"listen_address", listenAddress,
		"state_file", stateFile,
		"threshold", g.Settings().Threshold(),
		"workload", settings.Workload.Enabled,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()

		return nil
	})

	if !opts.NoWatch {
		group.Go(func() error {
			return config.Watch(groupCtx, opts.ConfigPath, func(cfg *config.Config) {
				applyLogLevel(cfg.LogLevel)
				svc.applyConfig(groupCtx, cfg.GuardOptions())

				if job != nil {
					job.SetBound(cfg.Workload.Bound)
				}
			})
		})
	}

	if job != nil {
		group.Go(func() error {
			return job.Run(groupCtx)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Loop guard server stopped")

	return nil
}

// buildSink maps the configured sink name to an alert sink.
//
//nolint:ireturn // Callers only need the Sink behaviour.
func buildSink(name string) guard.Sink {
	alertLogger := logger.Logger().Named("loop-guard.alert")

	switch name {
	case config.SinkLog:
		return guard.NewLoggerSink(alertLogger)
	case config.SinkBoth:
		return guard.MultiSink{guard.NewWriterSink(os.Stderr), guard.NewLoggerSink(alertLogger)}
	default:
		return guard.NewWriterSink(os.Stderr)
	}
}

// applyLogLevel sets the global log level from its configured name.
func applyLogLevel(name string) {
	if level, ok := logger.ParseLogLevel(name); ok {
		logger.SetLevel(level)
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise uses configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoControlAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid control address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
