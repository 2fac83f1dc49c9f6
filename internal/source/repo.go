// internal/source/repo.go
//
// Repository-backed configuration source.
//
// Context
// -------
// Polls an entry.Repository for all configuration records and reports
// the {key → value} fold as the complete snapshot.  Unlike a file parse
// failure, a repository error propagates out of Poll rather than being
// swallowed: content errors are recoverable, connectivity errors must
// stay visible for operational diagnosis.  The composite store logs the
// failure, keeps the last-known-good snapshot, and continues the
// schedule.
//
// Defaults follow the store-backed convention: 1s initial delay, then a
// 5s steady period.
//
// Notes
// -----
//   - Oxford commas, two spaces after periods.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/yanizio/dynconf/internal/entry"
)

const (
	// DefaultRepoInitialDelay precedes the first background poll of a
	// repository source.
	DefaultRepoInitialDelay = 1 * time.Second

	// DefaultRepoInterval is the steady repository polling period.
	DefaultRepoInterval = 5 * time.Second
)

// Repo adapts an entry.Repository into a polled source.
type Repo struct {
	name         string
	repo         entry.Repository
	initialDelay time.Duration
	interval     time.Duration
}

// NewRepo builds a repository source.  Non-positive delays fall back to
// the store-backed defaults.
func NewRepo(name string, r entry.Repository, initialDelay, interval time.Duration) *Repo {
	if initialDelay <= 0 {
		initialDelay = DefaultRepoInitialDelay
	}
	if interval <= 0 {
		interval = DefaultRepoInterval
	}
	return &Repo{name: name, repo: r, initialDelay: initialDelay, interval: interval}
}

func (r *Repo) Name() string                { return r.name }
func (r *Repo) Interval() time.Duration     { return r.interval }
func (r *Repo) InitialDelay() time.Duration { return r.initialDelay }

// Poll fetches every record and folds it into the snapshot.  Repository
// errors propagate; this cycle then counts as failed.
func (r *Repo) Poll(ctx context.Context, _ bool) (map[string]any, error) {
	rows, err := r.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository source %s: %w", r.name, err)
	}
	snap := make(map[string]any, len(rows))
	for _, e := range rows {
		snap[e.Key] = e.Value
	}
	return snap, nil
}
