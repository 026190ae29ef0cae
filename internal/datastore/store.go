package datastore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matsen/citegraph/internal/logging"
)

// Status is the lifecycle state of the store.
type Status string

const (
	StatusNotLoaded   Status = "not-loaded"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
)

// Loader produces the lookup tables for one generation.
// The returned snapshot's Generation and LoadedAt are assigned by the Store.
type Loader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*Snapshot, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// Update is delivered to subscribers after every completed load.
type Update struct {
	Status   Status
	Snapshot *Snapshot // latest published snapshot, nil if none
	Err      error     // load error, nil on success
}

// Store holds the currently published snapshot.
// Snapshot reads are lock-free; loads are serialized.
type Store struct {
	current atomic.Pointer[Snapshot]

	loadMu sync.Mutex // serializes Load

	mu          sync.Mutex
	status      Status
	lastErr     error
	generation  uint64
	nextSubID   int
	subscribers map[int]func(Update)
}

// NewStore creates an empty store in the not-loaded state.
func NewStore() *Store {
	return &Store{
		status:      StatusNotLoaded,
		subscribers: make(map[int]func(Update)),
	}
}

// Snapshot returns the published snapshot, or nil before the first successful load.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Require returns the published snapshot or ErrNotReady.
func (s *Store) Require() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotReady
	}
	return snap, nil
}

// Status returns the current lifecycle state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error of the most recent failed load, or nil.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers fn to be called after every completed load.
// fn runs on the loading goroutine and must not call Load. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Update)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Load runs loader and publishes its result as a new generation.
//
// On failure nothing is published. If an earlier snapshot exists it stays
// visible and the status remains ready; otherwise the store becomes unavailable.
func (s *Store) Load(ctx context.Context, loader Loader) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	if s.current.Load() == nil {
		s.status = StatusLoading
	}
	s.mu.Unlock()

	start := time.Now()
	snap, err := loader.Load(ctx)

	s.mu.Lock()
	var update Update
	if err != nil {
		s.lastErr = err
		if s.current.Load() == nil {
			s.status = StatusUnavailable
		}
		update = Update{Status: s.status, Snapshot: s.current.Load(), Err: err}
	} else {
		s.generation++
		snap.Generation = s.generation
		snap.LoadedAt = time.Now()
		s.current.Store(snap)
		s.status = StatusReady
		s.lastErr = nil
		update = Update{Status: StatusReady, Snapshot: snap}
	}
	subs := make([]func(Update), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if err != nil {
		logging.Warn("load failed", "err", err, "status", update.Status, "duration", time.Since(start))
	} else {
		stats := snap.Stats()
		logging.Info("published snapshot",
			"generation", stats.Generation,
			"papers", stats.Papers,
			"links", stats.Links,
			"search_entries", stats.SearchEntries,
			"duration", time.Since(start))
	}

	for _, fn := range subs {
		fn(update)
	}

	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Publish makes snap the current generation without running a loader.
func (s *Store) Publish(snap *Snapshot) *Snapshot {
	published, _ := s.Load(context.Background(), LoaderFunc(func(context.Context) (*Snapshot, error) {
		return snap, nil
	}))
	return published
}
