package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/loop-guard/internal/domain/guard"
	"github.com/oshokin/loop-guard/internal/guard"
	"github.com/oshokin/loop-guard/internal/logger"
	repo "github.com/oshokin/loop-guard/internal/repository/settings"
)

// service encapsulates operator changes to the guard and their persistence.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// guard is the running guard being reconfigured.
	guard *guard.Guard
	// repo handles persistent storage of operator changes.
	repo repo.Repository
	// mu serialises operator changes so the persisted file matches memory.
	mu sync.Mutex
}

// newService creates a service for g and restores the last persisted
// operator change, if any.
func newService(ctx context.Context, g *guard.Guard, repository repo.Repository) (*service, error) {
	s := &service{
		guard: g,
		repo:  repository,
	}

	if repository == nil {
		return s, nil
	}

	snapshot, err := repository.Load(ctx)
	switch {
	case err == nil:
		if snapshot != nil {
			s.restore(ctx, snapshot)
		}
	case errors.Is(err, repo.ErrNotFound):
		// Keep configured settings.
	default:
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return s, nil
}

// restore applies the persisted threshold and audit trail.
func (s *service) restore(ctx context.Context, snapshot *domain.Snapshot) {
	settings := s.guard.Settings()
	settings.SetThreshold(snapshot.Threshold)
	settings.Touch(snapshot.LastActor, snapshot.UpdatedAt)

	logger.InfoKV(ctx, "Restored persisted threshold",
		"threshold", snapshot.Threshold, "actor", snapshot.LastActor.String())
}

// GetSettings returns the current guard settings.
func (s *service) GetSettings(ctx context.Context) *domain.Snapshot {
	snapshot := s.guard.Settings().Snapshot()

	logger.DebugKV(ctx, "Settings requested", "threshold", snapshot.Threshold, "alerted", snapshot.Alerted)

	return snapshot
}

// SetThreshold changes the threshold and persists the change.
func (s *service) SetThreshold(ctx context.Context, actor *domain.Actor, threshold uint64) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guard.SetThreshold(threshold)

	snapshot, err := s.record(ctx, actor)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Threshold updated", "threshold", threshold, "actor", actor.String())

	return snapshot, nil
}

// ResetAlertFlag re-arms alerting and persists the change.
func (s *service) ResetAlertFlag(ctx context.Context, actor *domain.Actor) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guard.ResetAlertFlag()

	snapshot, err := s.record(ctx, actor)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Alerting re-armed", "session", snapshot.Session.String(), "actor", actor.String())

	return snapshot, nil
}

// record stamps the change with the actor and saves the resulting snapshot.
func (s *service) record(ctx context.Context, actor *domain.Actor) (*domain.Snapshot, error) {
	settings := s.guard.Settings()
	settings.Touch(actor, time.Now())

	snapshot := settings.Snapshot()

	if s.repo != nil {
		if err := s.repo.Save(ctx, snapshot); err != nil {
			logger.Errorf(ctx, "Failed to persist settings: %v", err)

			return nil, fmt.Errorf("persist settings: %w", err)
		}
	}

	return snapshot, nil
}

// applyConfig reconfigures the guard after the settings file changed.
func (s *service) applyConfig(ctx context.Context, opts guard.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.guard.Settings()

	if settings.Threshold() != opts.Threshold {
		s.guard.SetThreshold(opts.Threshold)
	}

	settings.SetWarnOncePerProcess(opts.WarnOncePerProcess)
	settings.SetStackTraceEnabled(opts.EnableStackTrace)
	settings.SetBreakOnOverflow(opts.EnableLoopBreak)

	logger.InfoKV(ctx, "Guard reconfigured from settings file",
		"threshold", opts.Threshold,
		"warn_once_per_process", opts.WarnOncePerProcess,
		"enable_stack_trace", opts.EnableStackTrace,
		"enable_loop_break", opts.EnableLoopBreak,
	)
}
