package store

import (
	"context"
	"errors"
	"log"
	"sync"

	"tourops-console/internal/eventbus"
	"tourops-console/internal/observability/metrics"
)

// Entity is anything a Store can hold.
type Entity interface {
	EntityID() string
}

// ErrMissingID rejects an upsert whose entity carries no identity. The
// store is left unchanged; callers treat this as non-fatal.
var ErrMissingID = errors.New("store: entity missing id")

// Changed is published after every successful upsert.
type Changed[T Entity] struct {
	Kind     string
	Entity   T
	Inserted bool
}

// Seeded is published once after a bulk snapshot replaces the contents.
type Seeded[T Entity] struct {
	Kind  string
	Count int
}

// Store is a keyed in-memory cache for one entity kind. Upserts replace
// the stored entity wholesale (last write wins, no field merge) and an
// update never changes positional order. One instance is owned by one
// console session; the lock only covers the window where a bulk load and
// early push deltas may interleave.
type Store[T Entity] struct {
	kind    string
	bus     eventbus.Bus
	logger  *log.Logger
	prepend bool

	mu    sync.RWMutex
	index map[string]int
	items []T
}

// Option customizes a store.
type Option[T Entity] func(*Store[T])

// WithPrependInserts makes new entities enter at the front, for
// newest-first feeds. Updates still keep their position.
func WithPrependInserts[T Entity]() Option[T] {
	return func(s *Store[T]) {
		s.prepend = true
	}
}

// New constructs a store for one entity kind.
func New[T Entity](kind string, bus eventbus.Bus, logger *log.Logger, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		kind:   kind,
		bus:    bus,
		logger: logger,
		index:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the entity kind label.
func (s *Store[T]) Kind() string { return s.kind }

// Upsert inserts the entity if its id is unseen, otherwise replaces the
// stored entity wholesale. Re-applying an identical upsert leaves the
// observable state unchanged, which is what makes push delta delivery
// safe to duplicate.
func (s *Store[T]) Upsert(ctx context.Context, entity T) (bool, error) {
	id := entity.EntityID()
	if id == "" {
		if s.logger != nil {
			s.logger.Printf("store %s: rejected entity without id", s.kind)
		}
		metrics.IncDeltaRejected("missing_id")
		return false, ErrMissingID
	}

	s.mu.Lock()
	pos, exists := s.index[id]
	if exists {
		s.items[pos] = entity
	} else if s.prepend {
		s.items = append([]T{entity}, s.items...)
		for key, p := range s.index {
			s.index[key] = p + 1
		}
		s.index[id] = 0
	} else {
		s.items = append(s.items, entity)
		s.index[id] = len(s.items) - 1
	}
	size := len(s.items)
	s.mu.Unlock()

	metrics.SetStoreSize(s.kind, size)
	s.publish(ctx, Changed[T]{Kind: s.kind, Entity: entity, Inserted: !exists})
	return !exists, nil
}

// Replace seeds the store wholesale from a bulk snapshot, preserving the
// snapshot's order. Entities without an id are skipped and logged.
func (s *Store[T]) Replace(ctx context.Context, entities []T) {
	s.mu.Lock()
	s.items = make([]T, 0, len(entities))
	s.index = make(map[string]int, len(entities))
	for _, entity := range entities {
		id := entity.EntityID()
		if id == "" {
			if s.logger != nil {
				s.logger.Printf("store %s: skipped snapshot entity without id", s.kind)
			}
			continue
		}
		if _, dup := s.index[id]; dup {
			continue
		}
		s.items = append(s.items, entity)
		s.index[id] = len(s.items) - 1
	}
	size := len(s.items)
	s.mu.Unlock()

	metrics.SetStoreSize(s.kind, size)
	s.publish(ctx, Seeded[T]{Kind: s.kind, Count: size})
}

// Get returns the entity stored under id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	pos, ok := s.index[id]
	if !ok {
		return zero, false
	}
	return s.items[pos], true
}

// All returns a copy of the contents in original insertion order.
func (s *Store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Find returns the first entity matching the predicate, in store order.
func (s *Store[T]) Find(pred func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of entities held.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) publish(ctx context.Context, event any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Printf("store %s: notification error: %v", s.kind, err)
	}
}
