package eventbus

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// Handler handles a published event.
type Handler func(ctx context.Context, event any) error

// Bus delivers events to subscribed handlers.
type Bus interface {
	Publish(ctx context.Context, event any) error
	Subscribe(eventType string, handler Handler) *Subscription
}

// ErrNilEvent is returned when a nil event is published.
var ErrNilEvent = errors.New("eventbus: nil event")

// ErrInvalidEventType is returned when the event type cannot be determined.
var ErrInvalidEventType = errors.New("eventbus: invalid event type")

// Subscription identifies one registered handler. Canceling it stops
// delivery; it never interrupts a handler that is already running.
type Subscription struct {
	bus       *InMemoryBus
	eventType string
	id        int
}

// Cancel unregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	entries := s.bus.handlers[s.eventType]
	for i, entry := range entries {
		if entry.id == s.id {
			s.bus.handlers[s.eventType] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	s.bus.mu.Unlock()
	s.bus = nil
}

type handlerEntry struct {
	id      int
	handler Handler
}

// InMemoryBus is a minimal in-process event bus.
type InMemoryBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string][]handlerEntry
}

// NewInMemoryBus constructs a new in-memory bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string][]handlerEntry)}
}

// Publish dispatches an event to all handlers of its type, in subscription
// order, on the caller's goroutine.
func (b *InMemoryBus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return ErrNilEvent
	}

	eventType := EventType(event)
	if eventType == "" {
		return ErrInvalidEventType
	}

	b.mu.RLock()
	entries := append([]handlerEntry(nil), b.handlers[eventType]...)
	b.mu.RUnlock()

	var firstErr error
	for _, entry := range entries {
		if err := entry.handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscribe registers a handler for an event type.
func (b *InMemoryBus) Subscribe(eventType string, handler Handler) *Subscription {
	if eventType == "" || handler == nil {
		return nil
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], handlerEntry{id: id, handler: handler})
	b.mu.Unlock()

	return &Subscription{bus: b, eventType: eventType, id: id}
}

// EventType returns the fully-qualified type name for an event instance.
func EventType(event any) string {
	if event == nil {
		return ""
	}
	t := reflect.TypeOf(event)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// EventTypeOf returns the fully-qualified type name for a type parameter.
func EventTypeOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
