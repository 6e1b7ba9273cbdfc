// Package bootstrap drives the session store from the host's lifecycle: one
// identity check per process, a fail-safe that unblocks the guard if that
// check hangs, and background re-validation when the app comes back into
// view.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/naveenspark/authsync/pkg/auth"
	"github.com/naveenspark/authsync/pkg/visibility"
)

// DefaultTimeout bounds how long the guard can sit in "checking session".
const DefaultTimeout = 5 * time.Second

// SessionStore is the part of *auth.Store the controller drives.
type SessionStore interface {
	Refresh(ctx context.Context) error
	Snapshot() auth.Session
	MarkBootstrapped() bool
}

// Controller owns a fail-safe timer and a visibility subscription. All
// session state stays in the store.
type Controller struct {
	store    SessionStore
	source   visibility.Source
	latch    *Latch
	timeout  time.Duration
	cooldown time.Duration
	now      func() time.Time
	log      *slog.Logger

	mu          sync.Mutex
	active      bool
	failsafe    *time.Timer
	unsubscribe func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithLatch replaces DefaultLatch.
func WithLatch(l *Latch) Option {
	return func(c *Controller) {
		if l != nil {
			c.latch = l
		}
	}
}

// WithTimeout sets the fail-safe delay.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCooldown sets the minimum gap between a successful fetch and a
// visibility-triggered refresh. Zero refreshes on every return to view;
// negative values keep the default.
func WithCooldown(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.cooldown = d
		}
	}
}

// WithClock overrides time.Now for the visibility policy.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// NewController returns an inactive controller. source may be nil when the
// host has no notion of visibility.
func NewController(store SessionStore, source visibility.Source, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		source:   source,
		latch:    DefaultLatch,
		timeout:  DefaultTimeout,
		cooldown: visibility.DefaultCooldown,
		now:      time.Now,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Activate starts the controller. The first activation in the process (per
// latch) issues the initial refresh on ctx; every activation arms the
// fail-safe and subscribes to visibility. Calling Activate on an active
// controller does nothing.
func (c *Controller) Activate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return
	}
	c.active = true

	if c.latch.TryAcquire() {
		c.log.DebugContext(ctx, "bootstrap.initial_refresh")
		go func() {
			if err := c.store.Refresh(ctx); err != nil {
				c.log.WarnContext(ctx, "bootstrap.initial_refresh.rejected", slog.Any("err", err))
			}
		}()
	}

	c.failsafe = time.AfterFunc(c.timeout, func() {
		if c.store.MarkBootstrapped() {
			c.log.WarnContext(ctx, "bootstrap.failsafe.fired", slog.Duration("timeout", c.timeout))
		}
	})

	if c.source != nil {
		lifetime, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c.cancel = cancel
		c.unsubscribe = c.source.Subscribe(func(visible bool) {
			c.onVisibility(lifetime, visible)
		})
	}
}

// Deactivate stops the fail-safe, drops the visibility subscription and
// cancels any visibility refresh still running. The initial refresh is not
// cancelled. Safe to call more than once.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.failsafe.Stop()
	c.failsafe = nil
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// Active reports whether the controller is between Activate and Deactivate.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) onVisibility(ctx context.Context, visible bool) {
	snap := c.store.Snapshot()
	ok := visibility.ShouldRefresh(visibility.Params{
		Visible:             visible,
		InFlight:            snap.InFlight,
		LastSuccessfulFetch: snap.LastSuccessfulFetch,
		Now:                 c.now(),
		Cooldown:            c.cooldown,
	})
	if !ok {
		return
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	// Listeners run on the host's event goroutine; the request must not
	// block it.
	go func() {
		defer c.wg.Done()
		err := c.store.Refresh(ctx)
		switch {
		case errors.Is(err, auth.ErrConcurrentOperation):
			c.log.DebugContext(ctx, "bootstrap.visibility_refresh.skipped", slog.Any("err", err))
		case err != nil:
			c.log.WarnContext(ctx, "bootstrap.visibility_refresh.failed", slog.Any("err", err))
		default:
			c.log.DebugContext(ctx, "bootstrap.visibility_refresh.done")
		}
	}()
}
