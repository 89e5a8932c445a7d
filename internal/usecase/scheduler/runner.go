package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"keypool/internal/pkg/config"
	"keypool/internal/pkg/ratelimit"
)

const jobTimeout = 5 * time.Minute

// StaleSweeper cancels tickets that sat idle past the auto-close horizon.
// Implemented by the ticket command service.
type StaleSweeper interface {
	SweepStale(ctx context.Context) (int, error)
}

// Runner drives the three periodic jobs: the restock tick, the stale
// ticket sweep, and the rate limiter window sweep. Each job runs on its
// own ticker so a slow tick in one never delays the others.
type Runner struct {
	restock *RestockUseCase
	sweeper StaleSweeper
	limiter *ratelimit.Limiter
	cfg     config.SchedulerConfig

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	running bool
}

func NewRunner(
	restock *RestockUseCase,
	sweeper StaleSweeper,
	limiter *ratelimit.Limiter,
	cfg config.SchedulerConfig,
) *Runner {
	return &Runner{
		restock: restock,
		sweeper: sweeper,
		limiter: limiter,
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
}

func (r *Runner) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	slog.Info("scheduler started",
		"restock_interval", r.cfg.RestockTickInterval.String(),
		"auto_close_interval", r.cfg.AutoCloseInterval.String(),
		"rate_sweep_period", r.cfg.RateWindowSweepPeriod.String())

	r.spawn(r.cfg.RestockTickInterval, r.runRestock)
	r.spawn(r.cfg.AutoCloseInterval, r.runAutoClose)
	r.spawn(r.cfg.RateWindowSweepPeriod, r.runRateSweep)
}

// Stop halts all loops and waits for in-flight jobs to finish.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()

		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		slog.Info("scheduler stopped")
	})
}

func (r *Runner) spawn(interval time.Duration, job func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				job()
			case <-r.stopCh:
				return
			}
		}
	}()
}

func (r *Runner) runRestock() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	groups, err := r.restock.Tick(ctx)
	if err != nil {
		slog.Error("restock tick failed", "error", err.Error())
		return
	}
	if len(groups) > 0 {
		slog.Info("restock tick applied credits", "groups", len(groups))
	}

	if deleted, err := r.restock.Cleanup(ctx); err != nil {
		slog.Error("restock cleanup failed", "error", err.Error())
	} else if deleted > 0 {
		slog.Info("restock cleanup removed stale queue rows", "deleted", deleted)
	}
}

func (r *Runner) runAutoClose() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	closed, err := r.sweeper.SweepStale(ctx)
	if err != nil {
		slog.Error("stale ticket sweep failed", "error", err.Error())
		return
	}
	if closed > 0 {
		slog.Info("stale ticket sweep closed tickets", "closed", closed)
	}
}

func (r *Runner) runRateSweep() {
	if evicted := r.limiter.Sweep(); evicted > 0 {
		slog.Debug("rate limiter sweep evicted windows", "evicted", evicted)
	}
}
