package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/devpulse/pkg/domain"
)

// WriteMode controls how a new snapshot relates to the stored latest one
type WriteMode string

// write modes
const (
	// WriteOverwrite stores the snapshot as-is
	WriteOverwrite WriteMode = "overwrite"
	// WriteMerge keeps the previous snapshot's data for provider fields
	// that are absent (nil) in the new one, so a provider outage doesn't
	// wipe its last-known data
	WriteMerge WriteMode = "merge"
)

// ErrNoSnapshot is returned when no snapshot has been stored yet
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository persists aggregation snapshots as JSON documents
type SnapshotRepository struct {
	db *sqlx.DB
}

// snapshotSQL represents a snapshot row
type snapshotSQL struct {
	ID        int64     `db:"id"`
	UpdatedAt time.Time `db:"updated_at"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// NewSnapshotRepository creates a snapshot repository
func NewSnapshotRepository(database *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: database}
}

// Save stores one snapshot. In merge mode provider fields that are nil
// in the new snapshot are filled from the stored latest one; derived
// fields (articles, leaderboard, totals) always reflect the new cycle.
func (r *SnapshotRepository) Save(ctx context.Context, snap *domain.Snapshot, mode WriteMode) error {
	toStore := *snap

	if mode == WriteMerge {
		prev, err := r.GetLatest(ctx)
		if err != nil && !errors.Is(err, ErrNoSnapshot) {
			return fmt.Errorf("load previous snapshot: %w", err)
		}
		if prev != nil {
			mergeSnapshots(&toStore, prev)
		}
	}

	payload, err := json.Marshal(&toStore)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO snapshots (updated_at, payload) VALUES (?, ?)",
			toStore.UpdatedAt, string(payload))
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("insert snapshot: %w", err)}
		}
		return nil
	})
}

// GetLatest returns the most recently stored snapshot
func (r *SnapshotRepository) GetLatest(ctx context.Context) (*domain.Snapshot, error) {
	var row snapshotSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM snapshots ORDER BY id DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(row.Payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot payload: %w", err)
	}
	return &snap, nil
}

// List returns stored snapshot timestamps, newest first, up to limit
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]time.Time, error) {
	if limit <= 0 {
		limit = 10
	}
	var stamps []time.Time
	err := r.db.SelectContext(ctx, &stamps,
		"SELECT updated_at FROM snapshots ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return stamps, nil
}

// Prune deletes all but the newest keep snapshots
func (r *SnapshotRepository) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)", keep)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SnapshotRepository) Close() error {
	return r.db.Close()
}

// mergeSnapshots fills nil provider fields of dst from prev
func mergeSnapshots(dst, prev *domain.Snapshot) {
	if dst.Analytics == nil {
		dst.Analytics = prev.Analytics
	}
	if dst.Github == nil {
		dst.Github = prev.Github
	}
	if dst.Npm == nil {
		dst.Npm = prev.Npm
	}
	if dst.Lapras == nil {
		dst.Lapras = prev.Lapras
	}
	if dst.Zenn == nil {
		dst.Zenn = prev.Zenn
	}
	if dst.Qiita == nil {
		dst.Qiita = prev.Qiita
	}
	if dst.Blog == nil {
		dst.Blog = prev.Blog
	}
}
