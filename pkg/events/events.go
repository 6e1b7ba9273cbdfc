// Package events is a small publish/subscribe channel for session lifecycle
// notifications. Delivery is fire-and-forget and synchronous.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names a lifecycle event.
type Type string

const (
	LoginSucceeded    Type = "login-succeeded"
	RegisterSucceeded Type = "register-succeeded"
	LogoutCompleted   Type = "logout-completed"
	SessionRefreshed  Type = "session-refreshed"
)

// Event is one emitted notification.
type Event struct {
	ID      uuid.UUID
	Type    Type
	Payload any
	Time    time.Time
}

// Handler receives events.
type Handler func(Event)

// Bus is an observer list. The zero value is not usable; call NewBus.
type Bus struct {
	mu       sync.Mutex
	handlers []*entry
	now      func() time.Time
	log      *slog.Logger
}

type entry struct {
	fn Handler
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger logs every emitted event at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Subscribe registers h. The returned func removes it; calling it more than
// once is harmless.
func (b *Bus) Subscribe(h Handler) func() {
	e := &entry{fn: h}
	b.mu.Lock()
	b.handlers = append(b.handlers, e)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, cur := range b.handlers {
				if cur == e {
					b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Emit delivers an event to every current subscriber, in subscription order.
// Handlers may unsubscribe while being called.
func (b *Bus) Emit(t Type, payload any) Event {
	evt := Event{ID: uuid.New(), Type: t, Payload: payload, Time: b.now()}

	b.mu.Lock()
	hs := make([]*entry, len(b.handlers))
	copy(hs, b.handlers)
	b.mu.Unlock()

	for _, h := range hs {
		h.fn(evt)
	}
	if b.log != nil {
		b.log.LogAttrs(context.Background(), slog.LevelDebug, "event.emit",
			slog.String("type", string(t)),
			slog.String("id", evt.ID.String()),
		)
	}
	return evt
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
