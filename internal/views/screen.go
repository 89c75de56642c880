package views

import (
	"errors"
	"log"

	"tourops-console/internal/eventbus"
)

// Screen groups the event subscriptions behind one console surface so a
// view can be torn down in a single call when the operator navigates
// away. A closed screen must never refresh again.
type Screen struct {
	name   string
	bus    eventbus.Bus
	logger *log.Logger
	subs   []*eventbus.Subscription
}

// NewScreen constructs an empty screen.
func NewScreen(name string, bus eventbus.Bus, logger *log.Logger) (*Screen, error) {
	if name == "" {
		return nil, errors.New("views: empty screen name")
	}
	if bus == nil {
		return nil, errors.New("views: nil bus")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Screen{name: name, bus: bus, logger: logger}, nil
}

// Name returns the screen's display name.
func (s *Screen) Name() string { return s.name }

// On registers a handler for one event type and keeps the subscription
// for teardown.
func (s *Screen) On(eventType string, handler eventbus.Handler) {
	s.subs = append(s.subs, s.bus.Subscribe(eventType, handler))
}

// Close cancels every subscription the screen holds.
func (s *Screen) Close() {
	for _, sub := range s.subs {
		sub.Cancel()
	}
	s.subs = nil
	s.logger.Printf("views: screen %s closed", s.name)
}
