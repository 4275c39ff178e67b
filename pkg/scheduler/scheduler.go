package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/devpulse/pkg/domain"
	"github.com/umputun/devpulse/pkg/repository"
)

// Aggregator runs one aggregation cycle
type Aggregator interface {
	Run(ctx context.Context) (*domain.Snapshot, error)
}

// Store persists snapshots
type Store interface {
	Save(ctx context.Context, snap *domain.Snapshot, mode repository.WriteMode) error
	Prune(ctx context.Context, keep int) error
}

// Scheduler runs aggregation cycles periodically and persists the
// results. Cycles run with merge-mode persistence so a provider outage
// keeps that provider's last-known data in the stored snapshot.
type Scheduler struct {
	aggregator Aggregator
	store      Store
	interval   time.Duration
	keep       int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Config holds scheduler configuration
type Config struct {
	UpdateInterval time.Duration
	KeepSnapshots  int
}

// New creates a scheduler instance
func New(aggregator Aggregator, store Store, cfg Config) *Scheduler {
	if cfg.UpdateInterval == 0 {
		cfg.UpdateInterval = time.Hour
	}
	if cfg.KeepSnapshots == 0 {
		cfg.KeepSnapshots = 50
	}
	return &Scheduler{
		aggregator: aggregator,
		store:      store,
		interval:   cfg.UpdateInterval,
		keep:       cfg.KeepSnapshots,
	}
}

// Start begins the periodic update worker
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.updateWorker(ctx)

	lgr.Printf("[INFO] scheduler started with update interval %v", s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// updateWorker runs an aggregation cycle immediately and then on every tick
func (s *Scheduler) updateWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on start
	if err := s.runCycle(ctx); err != nil {
		lgr.Printf("[ERROR] aggregation cycle failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				lgr.Printf("[ERROR] aggregation cycle failed: %v", err)
			}
		}
	}
}

// runCycle executes one aggregation cycle and persists the snapshot.
// Per-provider failures are absorbed inside the aggregator; an error
// here means either nothing could be aggregated at all or the
// persistence handoff failed.
func (s *Scheduler) runCycle(ctx context.Context) error {
	snap, err := s.aggregator.Run(ctx)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	if err := s.store.Save(ctx, snap, repository.WriteMerge); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	if err := s.store.Prune(ctx, s.keep); err != nil {
		lgr.Printf("[WARN] failed to prune old snapshots: %v", err)
	}

	lgr.Printf("[INFO] snapshot stored, updated at %s", snap.UpdatedAt.Format(time.RFC3339))
	return nil
}

// UpdateNow triggers an immediate aggregation cycle
func (s *Scheduler) UpdateNow(ctx context.Context) error {
	lgr.Printf("[INFO] triggered immediate update")
	return s.runCycle(ctx)
}
