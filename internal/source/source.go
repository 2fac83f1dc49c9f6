// internal/source/source.go
//
// Source interface and the static in-memory source.
//
// Context
// -------
// A Source delivers a complete snapshot of its key space on every
// successful poll, a total replacement rather than a delta, so keys
// removed upstream disappear from that source's contribution on the
// next cycle.  The composite store (composite.go) owns one polling
// goroutine per source and merges the published snapshots.
//
// Notes
// -----
//   - Poll must be safe to call from the store's polling goroutine and
//     from a forced Refresh on a caller goroutine.
//   - A zero Interval falls back to the store's default period.
//   - Oxford commas, two spaces after periods.
package source

import (
	"context"
	"sync"
	"time"
)

// Source is one named contributor to the composite key space.
type Source interface {
	// Name identifies the source in logs, metrics, and Refresh calls.
	Name() string

	// Interval is the steady polling period; zero means the store
	// default.
	Interval() time.Duration

	// InitialDelay is the pause before the first background poll after
	// the synchronous construction-time poll.
	InitialDelay() time.Duration

	// Poll returns the source's complete current key/value snapshot.
	// initial is true only for the synchronous construction-time call.
	Poll(ctx context.Context, initial bool) (map[string]any, error)
}

// Static is a fixed in-memory source, useful for seeding a defaults
// layer and for tests.  Replace swaps the whole snapshot; the next poll
// publishes it.
type Static struct {
	name string
	mu   sync.RWMutex
	vals map[string]any
}

// NewStatic copies vals into a Static source.
func NewStatic(name string, vals map[string]any) *Static {
	s := &Static{name: name}
	s.Replace(vals)
	return s
}

func (s *Static) Name() string                { return s.name }
func (s *Static) Interval() time.Duration     { return 0 }
func (s *Static) InitialDelay() time.Duration { return 0 }

// Replace swaps the entire snapshot.
func (s *Static) Replace(vals map[string]any) {
	cp := make(map[string]any, len(vals))
	for k, v := range vals {
		cp[k] = v
	}
	s.mu.Lock()
	s.vals = cp
	s.mu.Unlock()
}

func (s *Static) Poll(_ context.Context, _ bool) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]any, len(s.vals))
	for k, v := range s.vals {
		cp[k] = v
	}
	return cp, nil
}
