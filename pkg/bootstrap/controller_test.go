package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/naveenspark/authsync/pkg/auth"
	"github.com/naveenspark/authsync/pkg/visibility"
)

type fakeStore struct {
	mu        sync.Mutex
	snap      auth.Session
	err       error
	marks     int
	refreshed chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{refreshed: make(chan struct{}, 16)}
}

func (f *fakeStore) Refresh(context.Context) error {
	f.refreshed <- struct{}{}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeStore) Snapshot() auth.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeStore) MarkBootstrapped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks++
	return true
}

func (f *fakeStore) markCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marks
}

func waitRefresh(t *testing.T, f *fakeStore) {
	t.Helper()
	select {
	case <-f.refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Refresh")
	}
}

func noRefresh(t *testing.T, f *fakeStore) {
	t.Helper()
	select {
	case <-f.refreshed:
		t.Fatal("unexpected Refresh")
	default:
	}
}

func spentLatch() *Latch {
	l := &Latch{}
	l.TryAcquire()
	return l
}

func TestLatch(t *testing.T) {
	var l Latch
	if l.Acquired() {
		t.Fatal("new latch already acquired")
	}
	if !l.TryAcquire() {
		t.Fatal("first TryAcquire() = false")
	}
	if l.TryAcquire() {
		t.Fatal("second TryAcquire() = true")
	}
	if !l.Acquired() {
		t.Error("Acquired() = false after TryAcquire")
	}
}

func TestActivate_InitialRefreshOncePerProcess(t *testing.T) {
	f := newFakeStore()
	latch := &Latch{}

	c := NewController(f, nil, WithLatch(latch), WithTimeout(time.Hour))
	c.Activate(context.Background())
	waitRefresh(t, f)

	// Remount: same controller again, then a fresh instance sharing the latch.
	c.Deactivate()
	c.Activate(context.Background())
	c.Deactivate()
	other := NewController(f, nil, WithLatch(latch), WithTimeout(time.Hour))
	other.Activate(context.Background())
	defer other.Deactivate()

	time.Sleep(20 * time.Millisecond)
	noRefresh(t, f)
}

func TestActivate_Twice(t *testing.T) {
	f := newFakeStore()
	sig := visibility.NewSignal(false)
	c := NewController(f, sig, WithLatch(spentLatch()), WithTimeout(time.Hour))

	c.Activate(context.Background())
	c.Activate(context.Background())
	defer c.Deactivate()

	if got := sig.Len(); got != 1 {
		t.Errorf("listeners = %d, want 1", got)
	}
}

// blockingAPI never answers until ctx ends.
type blockingAPI struct{}

func (blockingAPI) Request(ctx context.Context, _, _ string, _ any) (any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFailsafe_UnblocksHungBootstrap(t *testing.T) {
	store := auth.NewStore(blockingAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewController(store, nil, WithLatch(&Latch{}), WithTimeout(20*time.Millisecond))
	c.Activate(ctx)
	defer c.Deactivate()

	deadline := time.Now().Add(2 * time.Second)
	for !store.Snapshot().Bootstrapped {
		if time.Now().After(deadline) {
			t.Fatal("fail-safe never marked the session bootstrapped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	snap := store.Snapshot()
	if snap.Status != auth.StatusIdle {
		t.Errorf("Status = %s, want idle", snap.Status)
	}
	if auth.Guard(snap) != auth.DecisionRedirect {
		t.Errorf("Guard() = %s, want redirect", auth.Guard(snap))
	}
}

// identityAPI answers the identity endpoint immediately.
type identityAPI struct{}

func (identityAPI) Request(_ context.Context, _, path string, _ any) (any, error) {
	if path == auth.DefaultPaths.Me {
		return map[string]any{"id": "u1", "email": "a@b.com"}, nil
	}
	return nil, errors.New("unexpected path " + path)
}

func TestFailsafe_NoOpAfterRealBootstrap(t *testing.T) {
	store := auth.NewStore(identityAPI{})
	store.Refresh(context.Background()) //nolint:errcheck

	c := NewController(store, nil, WithLatch(spentLatch()), WithTimeout(10*time.Millisecond))
	c.Activate(context.Background())
	defer c.Deactivate()
	time.Sleep(40 * time.Millisecond)

	if got := store.Snapshot().Status; got != auth.StatusAuthenticated {
		t.Errorf("Status = %s, want authenticated", got)
	}
}

func TestDeactivate_StopsFailsafe(t *testing.T) {
	f := newFakeStore()
	c := NewController(f, nil, WithLatch(spentLatch()), WithTimeout(20*time.Millisecond))
	c.Activate(context.Background())
	c.Deactivate()
	c.Deactivate()

	time.Sleep(60 * time.Millisecond)
	if got := f.markCount(); got != 0 {
		t.Errorf("MarkBootstrapped called %d times after Deactivate", got)
	}
	if c.Active() {
		t.Error("Active() = true after Deactivate")
	}
}

func TestVisibility_RefreshesWhenDue(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	f := newFakeStore()
	f.err = auth.ErrConcurrentOperation // rejected refreshes are only logged
	sig := visibility.NewSignal(false)
	c := NewController(f, sig,
		WithLatch(spentLatch()),
		WithTimeout(time.Hour),
		WithCooldown(30*time.Second),
		WithClock(func() time.Time { return now }),
	)
	c.Activate(context.Background())
	defer c.Deactivate()

	// Never fetched: due.
	sig.Set(true)
	waitRefresh(t, f)

	// Hidden: never refresh.
	sig.Set(false)
	noRefresh(t, f)

	// Fetched 10s ago: inside the cooldown.
	f.mu.Lock()
	f.snap.LastSuccessfulFetch = now.Add(-10 * time.Second)
	f.mu.Unlock()
	sig.Set(true)
	noRefresh(t, f)
	sig.Set(false)

	// Busy: skip.
	f.mu.Lock()
	f.snap.LastSuccessfulFetch = now.Add(-time.Minute)
	f.snap.InFlight = true
	f.mu.Unlock()
	sig.Set(true)
	noRefresh(t, f)
	sig.Set(false)

	f.mu.Lock()
	f.snap.InFlight = false
	f.mu.Unlock()
	sig.Set(true)
	waitRefresh(t, f)
}

func TestVisibility_CooldownSetting(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		opts []Option
		want bool
	}{
		{"default", nil, false},
		{"zero", []Option{WithCooldown(0)}, true},
		{"negative keeps default", []Option{WithCooldown(-time.Second)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeStore()
			f.snap.LastSuccessfulFetch = now.Add(-time.Second)
			sig := visibility.NewSignal(false)
			opts := append([]Option{
				WithLatch(spentLatch()),
				WithTimeout(time.Hour),
				WithClock(func() time.Time { return now }),
			}, tt.opts...)
			c := NewController(f, sig, opts...)
			c.Activate(context.Background())
			defer c.Deactivate()

			sig.Set(true)
			if tt.want {
				waitRefresh(t, f)
			} else {
				noRefresh(t, f)
			}
		})
	}
}

func TestDeactivate_Unsubscribes(t *testing.T) {
	f := newFakeStore()
	sig := visibility.NewSignal(false)
	c := NewController(f, sig, WithLatch(spentLatch()), WithTimeout(time.Hour))
	c.Activate(context.Background())
	c.Deactivate()

	if got := sig.Len(); got != 0 {
		t.Fatalf("listeners after Deactivate = %d, want 0", got)
	}
	sig.Set(true)
	noRefresh(t, f)
}
