// Package harness runs batches of random-start traversals and summarizes them.
package harness

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/pathfinder"
)

// Finder is the part of the engine the harness drives.
type Finder interface {
	FindPath(ctx context.Context, start, target string) (*pathfinder.Result, error)
	TargetTitle(ctx context.Context, target string) (string, error)
}

// Config describes one batch.
type Config struct {
	Count       int
	Concurrency int
	// Delay is the pause between starting consecutive traversals.
	Delay  time.Duration
	Start  string
	Target string
}

// Run is the outcome of one traversal in a batch.
type Run struct {
	Index  int
	Result *pathfinder.Result
	Err    error
}

// Report is a finished batch.
type Report struct {
	RunID       string
	Target      string
	TargetTitle string
	Runs        []Run
	Stats       Stats
	Elapsed     time.Duration
}

// RunnerParams holds the runner's collaborators.
type RunnerParams struct {
	Finder Finder
	Logger infralogger.Logger
}

// Runner executes batches.
type Runner struct {
	finder Finder
	log    infralogger.Logger
}

// NewRunner creates a runner.
func NewRunner(p RunnerParams) *Runner {
	log := p.Logger
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Runner{finder: p.Finder, log: log}
}

// Run executes cfg.Count traversals from cfg.Start to cfg.Target. A failed
// traversal is recorded in its Run and never stops the batch; only context
// cancellation ends it early, in which case the partial report is returned
// with the context error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("batch count must be positive, got %d", cfg.Count)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	began := time.Now()
	report := &Report{RunID: uuid.NewString(), Target: cfg.Target}
	log := r.log.With(infralogger.String("run_id", report.RunID))

	targetTitle, err := r.finder.TargetTitle(ctx, cfg.Target)
	if err != nil {
		log.Warn("Could not title target, falling back to outcomes", infralogger.Error(err))
	}
	report.TargetTitle = targetTitle

	log.Info("Starting batch",
		infralogger.Int("count", cfg.Count),
		infralogger.Int("concurrency", cfg.Concurrency),
		infralogger.String("target", cfg.Target),
	)

	runs := make([]Run, cfg.Count)
	var mu sync.Mutex
	completed := make([]bool, cfg.Count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i := range cfg.Count {
		if i > 0 && !pause(gctx, cfg.Delay) {
			break
		}
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			res, findErr := r.finder.FindPath(gctx, cfg.Start, cfg.Target)
			run := Run{Index: i + 1, Result: res, Err: findErr}
			logRun(log, run, cfg.Count)

			mu.Lock()
			runs[i] = run
			completed[i] = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i, done := range completed {
		if done {
			report.Runs = append(report.Runs, runs[i])
		}
	}
	report.Stats = Summarize(report.Runs, targetTitle)
	report.Elapsed = time.Since(began)

	log.Info("Batch finished",
		infralogger.Int("total", report.Stats.Total),
		infralogger.Int("reached", report.Stats.Reached),
		infralogger.Duration("elapsed", report.Elapsed),
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return report, fmt.Errorf("batch interrupted after %d runs: %w", len(report.Runs), ctxErr)
	}
	return report, nil
}

func logRun(log infralogger.Logger, run Run, total int) {
	fields := []infralogger.Field{
		infralogger.Int("run", run.Index),
		infralogger.Int("of", total),
	}
	if run.Result != nil {
		fields = append(fields,
			infralogger.String("outcome", string(run.Result.Outcome)),
			infralogger.Int("length", len(run.Result.Path)),
			infralogger.Strings("path", run.Result.Path),
		)
	}
	if run.Err != nil {
		if errors.Is(run.Err, context.Canceled) {
			return
		}
		log.Warn("Traversal failed", append(fields, infralogger.Error(run.Err))...)
		return
	}
	log.Info("Traversal finished", fields...)
}

// pause waits d or until ctx is done, reporting whether the wait completed.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
