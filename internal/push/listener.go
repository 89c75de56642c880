package push

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"tourops-console/internal/observability/metrics"
)

// Event is one frame on the push channel.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// Handler consumes push events in arrival order.
type Handler interface {
	HandleEvent(ctx context.Context, name string, payload json.RawMessage) error
}

// Listener maintains a websocket connection to the backend push endpoint
// and feeds decoded events to a single handler. All frames are read on
// one goroutine, so the handler observes them strictly in arrival order.
type Listener struct {
	url            string
	handler        Handler
	logger         *log.Logger
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
}

// Option customizes the listener.
type Option func(*Listener)

// WithReconnectDelay sets the fixed pause between reconnect attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(l *Listener) {
		if d > 0 {
			l.reconnectDelay = d
		}
	}
}

// WithDialer swaps the websocket dialer (tests).
func WithDialer(d *websocket.Dialer) Option {
	return func(l *Listener) {
		if d != nil {
			l.dialer = d
		}
	}
}

// NewListener constructs a push listener.
func NewListener(url string, handler Handler, logger *log.Logger, opts ...Option) (*Listener, error) {
	if url == "" {
		return nil, errors.New("push: empty url")
	}
	if handler == nil {
		return nil, errors.New("push: nil handler")
	}
	if logger == nil {
		logger = log.Default()
	}
	l := &Listener{
		url:            url,
		handler:        handler,
		logger:         logger,
		dialer:         websocket.DefaultDialer,
		reconnectDelay: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run connects and reads until ctx is cancelled. Connection loss is a
// transport concern only: the listener reconnects after a fixed delay and
// never replays or re-requests missed frames.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.readLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Printf("push: connection lost: %v", err)
		}
		metrics.IncPushReconnect()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.reconnectDelay):
		}
	}
}

func (l *Listener) readLoop(ctx context.Context) error {
	conn, _, err := l.dialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	l.logger.Printf("push: connected to %s", l.url)

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal(frame, &ev); err != nil || ev.Name == "" {
			metrics.IncPushFrame(metrics.ResultError)
			l.logger.Printf("push: skipping malformed frame: %v", err)
			continue
		}
		metrics.IncPushFrame(metrics.ResultSuccess)
		if err := l.handler.HandleEvent(ctx, ev.Name, ev.Data); err != nil {
			l.logger.Printf("push: handler error on %s: %v", ev.Name, err)
		}
	}
}
