// internal/source/composite.go
//
// Composite configuration store: N named sources, one merged view.
//
// Context
// -------
// The store owns one polling goroutine per registered source and
// presents a single Get/GetAll view over their snapshots.  The
// effective value for a key comes from whichever source published it
// most recently; freshest wins, not registration order.  Each
// successful poll replaces that source's contribution atomically
// (copy-on-publish); readers are lock-free against the currently
// published merged map and can never observe a half-updated source.
//
// A failed poll is contained: it logs, bumps the error counter, and
// leaves the source's last-known-good snapshot in place.  One source's
// failure never cancels or delays another source's schedule, and never
// surfaces to a Get caller.
//
// Workflow
// --------
//  1. NewStore, then Add each source.  Add performs one synchronous
//     initial poll so construction-time validation sees real values,
//     then starts the background loop (initial delay, steady ticker).
//  2. Readers call Get or GetAll from any goroutine.
//  3. Refresh forces one poll cycle for a named source; concurrent
//     callers for the same source collapse through singleflight.
//  4. Close cancels every loop and waits; no poll runs after it
//     returns.
//
// Notes
// -----
//   - Publish sequence numbers, not wall-clock time, order snapshots;
//     two publishes in the same nanosecond still order correctly.
//   - Oxford commas, two spaces after periods.
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/dynconf/internal/metrics"
)

// DefaultInterval is the fallback steady period for sources that do not
// declare their own.
const DefaultInterval = 30 * time.Second

// snapshot is one source's immutable published contribution.
type snapshot struct {
	values map[string]any
	seq    uint64
	at     time.Time
}

// state pairs a source with its last-known-good snapshot.
type state struct {
	src  Source
	snap atomic.Pointer[snapshot]
}

// Store merges named sources into one logical key space.
type Store struct {
	mu     sync.Mutex // guards states slice and remerge
	states []*state

	merged atomic.Pointer[map[string]any]
	seq    atomic.Uint64

	sfg    singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewStore returns an empty store; register sources with Add.
func NewStore() *Store {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{ctx: ctx, cancel: cancel}
}

// Add registers src, performs one synchronous initial poll, and starts
// the background polling loop.  An initial poll failure is logged and
// tolerated; the source starts with an empty contribution and retries
// on its schedule.
func (s *Store) Add(src Source) error {
	// Registration and the wg.Add must be atomic with Close's shutdown
	// check, or a racing Close could wg.Wait before this Add's loop is
	// accounted for.
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return fmt.Errorf("store is closed")
	}
	for _, st := range s.states {
		if st.src.Name() == src.Name() {
			s.mu.Unlock()
			return fmt.Errorf("duplicate source %q", src.Name())
		}
	}
	st := &state{src: src}
	s.states = append(s.states, st)
	metrics.ActiveSources.Inc()
	s.wg.Add(1)
	s.mu.Unlock()

	if err := s.pollOnce(st, true); err != nil {
		zap.S().Warnw("initial poll failed", "source", src.Name(), "err", err)
	}

	go s.loop(st)
	return nil
}

// Get returns the effective raw value for key from the merged view.
func (s *Store) Get(key string) (any, bool) {
	m := s.merged.Load()
	if m == nil {
		return nil, false
	}
	v, ok := (*m)[key]
	return v, ok
}

// GetAll returns a copy of the merged view.
func (s *Store) GetAll() map[string]any {
	m := s.merged.Load()
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(*m))
	for k, v := range *m {
		out[k] = v
	}
	return out
}

// Refresh forces one poll cycle for the named source.  Concurrent
// refreshes of the same source collapse into a single poll.
func (s *Store) Refresh(name string) error {
	if s.closed.Load() {
		return fmt.Errorf("store is closed")
	}
	st := s.find(name)
	if st == nil {
		return fmt.Errorf("unknown source %q", name)
	}
	_, err, _ := s.sfg.Do(name, func() (any, error) {
		return nil, s.pollOnce(st, false)
	})
	return err
}

// Close stops every polling loop and waits for them to exit.  No poll
// runs after Close returns.
func (s *Store) Close() {
	s.mu.Lock()
	if !s.closed.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	n := len(s.states)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	metrics.ActiveSources.Sub(float64(n))
	zap.S().Infow("composite store closed", "sources", n)
}

func (s *Store) find(name string) *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.states {
		if st.src.Name() == name {
			return st
		}
	}
	return nil
}

// loop drives one source: initial delay, then a steady ticker.  Poll
// failures keep the schedule; only Close stops it.
func (s *Store) loop(st *state) {
	defer s.wg.Done()

	delay := st.src.InitialDelay()
	if delay > 0 {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	interval := st.src.Interval()
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			_ = s.pollOnce(st, false)
		}
	}
}

// pollOnce runs one cycle for st.  On success it publishes the new
// snapshot and remerges; on failure the last-known-good snapshot stays
// in place.
func (s *Store) pollOnce(st *state, initial bool) error {
	vals, err := st.src.Poll(s.ctx, initial)
	if err != nil {
		metrics.SourcePollErrorsTotal.WithLabelValues(st.src.Name()).Inc()
		zap.S().Warnw("source poll failed, keeping last-known-good",
			"source", st.src.Name(), "err", err)
		return err
	}

	snap := &snapshot{
		values: vals,
		seq:    s.seq.Add(1),
		at:     time.Now(),
	}
	st.snap.Store(snap)
	s.remerge()

	metrics.SourcePollTotal.WithLabelValues(st.src.Name()).Inc()
	zap.S().Debugw("source poll published",
		"source", st.src.Name(), "keys", len(vals), "seq", snap.seq)
	return nil
}

// remerge rebuilds the merged view from every published snapshot,
// overlaying older publishes first so the freshest source wins each
// contested key.  The result replaces the previous view atomically.
func (s *Store) remerge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := make([]*snapshot, 0, len(s.states))
	for _, st := range s.states {
		if sn := st.snap.Load(); sn != nil {
			snaps = append(snaps, sn)
		}
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].seq < snaps[j].seq })

	merged := make(map[string]any)
	for _, sn := range snaps {
		for k, v := range sn.values {
			merged[k] = v
		}
	}
	s.merged.Store(&merged)
}
