package workload

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/loop-guard/internal/logger"
)

// Checker is the subset of the guard the job depends on.
type Checker interface {
	CheckBound(bound uint64, label string) bool
	CheckIncrement(counter *uint64, label string) bool
}

// Options configures a Job.
type Options struct {
	// Label prefixes the loop labels reported to the guard.
	Label string
	// Bound is the batch size of each run.
	Bound uint64
	// Interval is the delay between runs.
	Interval time.Duration
	// Workers is the number of runs executed concurrently per tick.
	Workers int
}

// Result describes one run.
type Result struct {
	// Synced is the number of iterations the sync loop executed.
	Synced uint64
	// Drained is the number of iterations the drain loop executed.
	Drained uint64
	// Checksum keeps the loop bodies observable.
	Checksum uint64
}

const (
	// cancelCheckMask sets how often long loops look at the context.
	cancelCheckMask = 1<<20 - 1
	// defaultInterval is used when Options.Interval is not positive.
	defaultInterval = 30 * time.Second
)

// Job is a periodic guarded batch job.
type Job struct {
	checker  Checker
	label    string
	interval time.Duration
	workers  int
	bound    atomic.Uint64
}

// NewJob creates a job guarded by checker.
func NewJob(checker Checker, opts Options) *Job {
	j := &Job{
		checker:  checker,
		label:    opts.Label,
		interval: opts.Interval,
		workers:  max(opts.Workers, 1),
	}

	if j.interval <= 0 {
		j.interval = defaultInterval
	}

	j.bound.Store(opts.Bound)

	return j
}

// SetBound changes the batch size of subsequent runs.
func (j *Job) SetBound(bound uint64) {
	j.bound.Store(bound)
}

// Run executes the job immediately and then on every interval until ctx is canceled.
func (j *Job) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "workload")

	logger.InfoKV(ctx, "Workload started", "label", j.label, "interval", j.interval.String(), "workers", j.workers)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if err := j.tick(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Workload stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// tick runs the configured number of workers concurrently.
func (j *Job) tick(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for worker := range j.workers {
		group.Go(func() error {
			result := j.RunOnce(groupCtx)

			logger.DebugKV(groupCtx, "Workload run finished",
				"worker", worker, "synced", result.Synced, "drained", result.Drained)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("workload tick: %w", err)
	}

	return nil
}

// RunOnce processes one batch. Long loops stop early when ctx is canceled.
func (j *Job) RunOnce(ctx context.Context) Result {
	var (
		result Result
		bound  = j.bound.Load()
	)

	// Counted loop: the bound is known before entering.
	if j.checker.CheckBound(bound, j.label+"/sync") {
		for i := uint64(0); i < bound; i++ {
			if i&cancelCheckMask == 0 && ctx.Err() != nil {
				break
			}

			result.Checksum += i
			result.Synced++
		}
	}

	// Condition-driven loop: pops until the backlog is empty.
	var (
		backlog = bound
		counter uint64
	)

	for backlog > 0 {
		if !j.checker.CheckIncrement(&counter, j.label+"/drain") {
			break
		}

		if counter&cancelCheckMask == 0 && ctx.Err() != nil {
			break
		}

		backlog--
		result.Checksum ^= backlog
		result.Drained++
	}

	return result
}
