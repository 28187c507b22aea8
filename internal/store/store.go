// Package store owns the ordered task collection and is the only place it is
// mutated. Presentation surfaces hold a *Store and observe it through
// snapshots, either by calling List or by subscribing.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrIDExhausted is returned when the generator keeps producing identifiers
// that were already issued.
var ErrIDExhausted = errors.New("id generator produced only duplicates")

const maxIDAttempts = 64

// Backend holds the task rows in insertion order on behalf of a Store.
// Implementations need not be safe for concurrent use; the Store serializes
// every call.
type Backend interface {
	Append(ctx context.Context, t Task) error
	SetText(ctx context.Context, id ID, text string) (bool, error)
	Remove(ctx context.Context, id ID) (bool, error)
	Contains(ctx context.Context, id ID) (bool, error)
	All(ctx context.Context) ([]Task, error)
}

// Listener receives the snapshot produced by a mutation.
type Listener func(Snapshot)

// Store is the authoritative task collection.
type Store struct {
	mu      sync.Mutex
	backend Backend
	newID   IDGenerator
	issued  map[ID]struct{}
	current Snapshot

	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextSub   int
	published uint64
}

// Option configures a Store built by New.
type Option func(*Store)

// WithIDGenerator overrides the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New builds a store over backend. A nil backend means an empty MemoryBackend.
// Rows already present in the backend become the initial collection.
func New(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	s := &Store{
		backend:   backend,
		newID:     UUIDGenerator(),
		issued:    map[ID]struct{}{},
		listeners: map[int]Listener{},
	}
	for _, opt := range opts {
		opt(s)
	}
	rows, err := backend.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	for _, t := range rows {
		s.issued[t.ID] = struct{}{}
	}
	s.current = newSnapshot(0, rows)
	return s, nil
}

// Create appends a task with a fresh identifier.
func (s *Store) Create(ctx context.Context, text string) (Task, error) {
	s.mu.Lock()
	id, err := s.freshID(ctx)
	if err != nil {
		s.mu.Unlock()
		return Task{}, err
	}
	t := Task{ID: id, Text: text}
	if err := s.backend.Append(ctx, t); err != nil {
		s.mu.Unlock()
		return Task{}, fmt.Errorf("append task: %w", err)
	}
	s.issued[id] = struct{}{}
	snap := s.refresh(ctx, func(rows []Task) []Task {
		return append(rows, t)
	})
	s.mu.Unlock()
	s.publish(snap)
	return t, nil
}

// Update replaces the text of the task with the given id. An unknown id is a
// no-op and reports false; a snapshot is emitted either way.
func (s *Store) Update(ctx context.Context, id ID, text string) (bool, error) {
	s.mu.Lock()
	found, err := s.backend.SetText(ctx, id, text)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("update task %s: %w", id, err)
	}
	snap := s.refresh(ctx, func(rows []Task) []Task {
		for i := range rows {
			if rows[i].ID == id {
				rows[i].Text = text
			}
		}
		return rows
	})
	s.mu.Unlock()
	s.publish(snap)
	return found, nil
}

// Delete removes the task with the given id. An unknown id is a no-op and
// reports false; a snapshot is emitted either way.
func (s *Store) Delete(ctx context.Context, id ID) (bool, error) {
	s.mu.Lock()
	found, err := s.backend.Remove(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}
	snap := s.refresh(ctx, func(rows []Task) []Task {
		out := rows[:0]
		for _, t := range rows {
			if t.ID != id {
				out = append(out, t)
			}
		}
		return out
	})
	s.mu.Unlock()
	s.publish(snap)
	return found, nil
}

// List returns the current snapshot.
func (s *Store) List(ctx context.Context) (Snapshot, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

// Len reports the number of tasks in the current snapshot.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Len()
}

// Version reports the version of the current snapshot.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Version()
}

// Subscribe registers fn to run after every mutation. fn runs on the
// mutating goroutine and must not call back into the store.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.listeners, id)
			s.notifyMu.Unlock()
		})
	}
}

// freshID must be called with mu held.
func (s *Store) freshID(ctx context.Context) (ID, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, seen := s.issued[id]; seen {
			continue
		}
		exists, err := s.backend.Contains(ctx, id)
		if err != nil {
			return "", fmt.Errorf("check id %s: %w", id, err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

// refresh reloads the rows after a successful backend write and advances the
// snapshot. If the reload fails the write has still happened, so fold applies
// it to a copy of the previous rows instead. refresh must be called with mu
// held.
func (s *Store) refresh(ctx context.Context, fold func([]Task) []Task) Snapshot {
	rows, err := s.backend.All(ctx)
	if err != nil {
		log.Printf("store: reload tasks: %v; applying change locally", err)
		rows = fold(s.current.Tasks())
	}
	s.current = newSnapshot(s.current.version+1, rows)
	return s.current
}

func (s *Store) publish(snap Snapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	// a concurrent mutation may have published a newer version already
	if snap.version <= s.published {
		return
	}
	s.published = snap.version
	for _, fn := range s.listeners {
		fn(snap)
	}
}
