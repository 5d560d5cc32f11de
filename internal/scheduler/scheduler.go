// Package scheduler triggers pipeline runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Snapshot, error)
}

// Scheduler runs the pipeline once at start and then on every tick of a cron
// schedule. A tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	runner     Runner
	cron       *cron.Cron
	spec       string
	runTimeout time.Duration
	logger     *slog.Logger
}

// New creates a scheduler for spec, a five-field cron expression or a
// descriptor such as "@hourly" or "@every 15m". Each run is bounded by
// runTimeout.
func New(runner Runner, spec string, runTimeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	cl := cronLogger{logger: logger}
	return &Scheduler{
		runner:     runner,
		cron:       cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:       spec,
		runTimeout: runTimeout,
		logger:     logger,
	}, nil
}

// Run performs the initial pass, then blocks serving the schedule until ctx is
// cancelled. It waits for an in-flight run to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runOnce(ctx)

	if _, err := s.cron.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", s.spec, "next_run", s.nextRun())

	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.runner.Run(runCtx)
	if err != nil {
		// The pipeline logs the failure; keep serving the previous snapshot.
		s.logger.Debug("scheduled run failed", "duration", time.Since(start))
		return
	}
	s.logger.Debug("scheduled run completed", "run_id", snap.RunID, "duration", time.Since(start))
}

func (s *Scheduler) nextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
