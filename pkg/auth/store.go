package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/naveenspark/authsync/pkg/autherr"
	"github.com/naveenspark/authsync/pkg/client"
	"github.com/naveenspark/authsync/pkg/domain"
	"github.com/naveenspark/authsync/pkg/events"
)

// ErrConcurrentOperation is returned when an operation is started while
// another one is still in flight. Nothing is mutated and no request is sent.
var ErrConcurrentOperation = errors.New("auth: another auth operation is in flight")

// Status drives UI gating.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusError         Status = "error"
)

// Session is the state held by a Store. Values handed out by the Store are
// copies; mutating them has no effect.
type Session struct {
	// User is set once an identity is known and cleared by logout or by a
	// refresh that finds no session.
	User                *domain.User
	Status              Status
	ErrorKind           autherr.Kind
	ErrorMessage        string
	LastSuccessfulFetch time.Time
	// Bootstrapped is false until the first session check resolves.
	Bootstrapped bool
	// IntendedPath is where to go after a successful login. Empty means none.
	IntendedPath string
	InFlight     bool
}

func (s Session) clone() Session {
	if s.User != nil {
		u := s.User.Clone()
		s.User = &u
	}
	return s
}

func (s *Session) clearError() {
	s.ErrorKind = autherr.KindNone
	s.ErrorMessage = ""
}

// Requester performs API calls. *client.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (any, error)
}

// Paths are the API endpoints the store calls.
type Paths struct {
	Login    string
	Register string
	Me       string
	Logout   string
}

// DefaultPaths are the endpoints used unless WithPaths overrides them.
var DefaultPaths = Paths{
	Login:    "/api/auth/login",
	Register: "/api/auth/register",
	Me:       "/api/me",
	Logout:   "/api/auth/logout",
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Store is the single owner of Session. Login, Register, Refresh and Logout
// are mutually exclusive: at most one runs at a time, and a second caller
// gets ErrConcurrentOperation instead of waiting.
type Store struct {
	api      Requester
	paths    Paths
	bus      *events.Bus
	reporter Reporter
	now      func() time.Time
	log      *slog.Logger

	mu      sync.Mutex
	state   Session
	subs    map[int]func(Session)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithPaths overrides the API endpoints.
func WithPaths(p Paths) Option {
	return func(s *Store) { s.paths = p }
}

// WithEvents publishes lifecycle events on bus instead of a private one.
func WithEvents(bus *events.Bus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithReporter attaches a diagnostic observer that sees every state change.
func WithReporter(r Reporter) Option {
	return func(s *Store) { s.reporter = r }
}

// WithClock injects a custom clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore creates a store in the initial idle, not-yet-bootstrapped state.
func NewStore(api Requester, opts ...Option) *Store {
	s := &Store{
		api:   api,
		paths: DefaultPaths,
		now:   time.Now,
		log:   slog.New(slog.DiscardHandler),
		state: Session{Status: StatusIdle},
		subs:  map[int]func(Session){},
	}
	for _, o := range opts {
		o(s)
	}
	if s.bus == nil {
		s.bus = events.NewBus()
	}
	return s
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Events returns the bus lifecycle events are published on.
func (s *Store) Events() *events.Bus { return s.bus }

// Subscribe registers fn to be called with a snapshot after every change.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn under the lock, then notifies observers outside it.
func (s *Store) update(fn func(*Session)) {
	s.mu.Lock()
	fn(&s.state)
	s.notifyLocked()
}

// notifyLocked must be called with mu held; it releases it.
func (s *Store) notifyLocked() {
	snap := s.state.clone()
	fns := make([]func(Session), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	if s.reporter != nil {
		s.reporter.Report(snap)
	}
	for _, fn := range fns {
		fn(snap)
	}
}

// begin claims the in-flight slot and applies enter. It returns the status
// that was current before enter ran.
func (s *Store) begin(enter func(*Session)) (Status, error) {
	s.mu.Lock()
	if s.state.InFlight {
		s.mu.Unlock()
		return "", ErrConcurrentOperation
	}
	prev := s.state.Status
	s.state.InFlight = true
	enter(&s.state)
	s.notifyLocked()
	return prev, nil
}

// release frees the in-flight slot. A cancelled operation also rolls back the
// loading status it introduced.
func (s *Store) release(cancelled bool, entry Status, extra func(*Session)) {
	s.update(func(st *Session) {
		st.InFlight = false
		if cancelled && st.Status == StatusLoading {
			st.Status = entry
		}
		if extra != nil {
			extra(st)
		}
	})
}

// Refresh re-reads the session identity from the API. During a silent
// refresh of an authenticated or errored session the status is left alone;
// only an idle session shows loading.
//
// The very first refresh of the process treats failure as "not signed in".
// Later failures become error state. Either way Bootstrapped is true once it
// returns. The only error returned is ErrConcurrentOperation.
func (s *Store) Refresh(ctx context.Context) error {
	entry, err := s.begin(func(st *Session) {
		if st.Status == StatusIdle {
			st.Status = StatusLoading
		}
	})
	if err != nil {
		return err
	}

	cancelled := s.refresh(ctx)
	s.release(cancelled, entry, func(st *Session) { st.Bootstrapped = true })
	return nil
}

// refresh does the work of Refresh for a caller that already holds the
// in-flight slot. It reports whether ctx was cancelled.
func (s *Store) refresh(ctx context.Context) bool {
	res, err := s.api.Request(ctx, http.MethodGet, s.paths.Me, nil)
	if err != nil {
		if ctx.Err() != nil {
			s.log.DebugContext(ctx, "auth.refresh.cancelled")
			return true
		}
		s.refreshFailed(ctx, err)
		return false
	}

	u, ok := DecodeUser(res)
	if !ok {
		s.update(func(st *Session) {
			st.User = nil
			st.Status = StatusIdle
		})
		s.log.DebugContext(ctx, "auth.refresh.anonymous")
		return false
	}

	s.update(func(st *Session) {
		st.User = &u
		st.Status = StatusAuthenticated
		st.LastSuccessfulFetch = s.now()
		st.clearError()
	})
	s.bus.Emit(events.SessionRefreshed, u)
	s.log.DebugContext(ctx, "auth.refresh.succeeded", slog.String("user_id", u.ID))
	return false
}

func (s *Store) refreshFailed(ctx context.Context, err error) {
	r := autherr.Normalize(failureCode(err, "UNAUTHORIZED"), "")
	anonymous := false
	s.update(func(st *Session) {
		st.User = nil
		if !st.Bootstrapped {
			// First check of the process: anonymous visitors are expected
			// to fail here, so this is "signed out", not an error.
			anonymous = true
			st.Status = StatusIdle
			st.clearError()
			return
		}
		st.Status = StatusError
		st.ErrorKind = r.Kind
		st.ErrorMessage = r.Message
	})
	if anonymous {
		s.log.DebugContext(ctx, "auth.refresh.anonymous", slog.Any("err", err))
		return
	}
	s.log.WarnContext(ctx, "auth.refresh.failed", slog.String("kind", string(r.Kind)), slog.Any("err", err))
}

// Login posts credentials to the login endpoint. It reports whether the
// login succeeded; failures are recorded in the session rather than
// returned. The only error returned is ErrConcurrentOperation.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	return s.authenticate(ctx, "login", s.paths.Login, email, password, "BAD_CREDENTIALS", events.LoginSucceeded)
}

// Register creates an account and signs it in. It behaves like Login, except
// that an unstructured failure is classified as UNKNOWN.
func (s *Store) Register(ctx context.Context, email, password string) (bool, error) {
	return s.authenticate(ctx, "register", s.paths.Register, email, password, "UNKNOWN", events.RegisterSucceeded)
}

func (s *Store) authenticate(ctx context.Context, op, path, email, password, defaultCode string, evt events.Type) (bool, error) {
	entry, err := s.begin(func(st *Session) {
		st.Status = StatusLoading
		st.clearError()
	})
	if err != nil {
		return false, err
	}

	cancelled := false
	var extra func(*Session)
	defer func() { s.release(cancelled, entry, extra) }()

	res, err := s.api.Request(ctx, http.MethodPost, path, credentials{Email: email, Password: password})
	if err != nil {
		if ctx.Err() != nil {
			cancelled = true
			s.log.DebugContext(ctx, "auth."+op+".cancelled")
			return false, nil
		}
		r := autherr.Normalize(failureCode(err, defaultCode), "")
		s.update(func(st *Session) {
			st.Status = StatusError
			st.ErrorKind = r.Kind
			st.ErrorMessage = r.Message
		})
		s.log.InfoContext(ctx, "auth."+op+".failed", slog.String("kind", string(r.Kind)), slog.Any("err", err))
		return false, nil
	}

	if u, ok := DecodeUser(res); ok {
		s.update(func(st *Session) {
			st.User = &u
			st.Status = StatusAuthenticated
			st.LastSuccessfulFetch = s.now()
		})
		s.bus.Emit(evt, u)
		s.log.InfoContext(ctx, "auth."+op+".succeeded", slog.String("user_id", u.ID))
		return true, nil
	}

	// The server accepted the credentials but sent no user; it has set the
	// session cookie, so hydrate from the identity endpoint. The login
	// result stands even if that refresh fails. Like Refresh, it resolves
	// the bootstrap whatever the outcome.
	s.log.DebugContext(ctx, "auth."+op+".hydrate")
	extra = func(st *Session) { st.Bootstrapped = true }
	cancelled = s.refresh(ctx)
	return true, nil
}

// Logout asks the API to end the session and clears local state no matter
// how that request turns out. The only error returned is
// ErrConcurrentOperation.
func (s *Store) Logout(ctx context.Context) error {
	_, err := s.begin(func(st *Session) {
		st.Status = StatusLoading
		st.clearError()
	})
	if err != nil {
		return err
	}

	if _, err := s.api.Request(ctx, http.MethodPost, s.paths.Logout, nil); err != nil {
		s.log.DebugContext(ctx, "auth.logout.request_failed", slog.Any("err", err))
	}

	s.update(func(st *Session) {
		st.User = nil
		st.Status = StatusIdle
		st.LastSuccessfulFetch = time.Time{}
		st.IntendedPath = ""
		st.InFlight = false
	})
	s.bus.Emit(events.LogoutCompleted, nil)
	s.log.InfoContext(ctx, "auth.logout.completed")
	return nil
}

// ClearError drops the error fields. An errored session falls back to
// authenticated when a user is present, idle otherwise.
func (s *Store) ClearError() {
	s.update(func(st *Session) {
		st.clearError()
		if st.Status == StatusError {
			if st.User != nil {
				st.Status = StatusAuthenticated
			} else {
				st.Status = StatusIdle
			}
		}
	})
}

// SetIntendedPath records where to return after login; "" clears it.
func (s *Store) SetIntendedPath(path string) {
	s.update(func(st *Session) { st.IntendedPath = path })
}

// MarkBootstrapped forces the bootstrap to count as resolved and drops a
// stuck loading status back to idle. It reports whether the session was
// still unbootstrapped.
func (s *Store) MarkBootstrapped() bool {
	s.mu.Lock()
	if s.state.Bootstrapped {
		s.mu.Unlock()
		return false
	}
	s.state.Bootstrapped = true
	if s.state.Status == StatusLoading {
		s.state.Status = StatusIdle
	}
	s.notifyLocked()
	return true
}

// failureCode picks the code to classify: the API's structured code, then
// NETWORK for requests that never got a response, then the status for
// throttling and server failures, then the operation's default. A bare 503
// on login is therefore SERVER_ERROR, not BAD_CREDENTIALS; only 4xx
// responses without a code fall through to the default.
func failureCode(err error, def string) string {
	if code, ok := client.ErrorCode(err); ok {
		return code
	}
	status := client.StatusCode(err)
	switch {
	case status == 0:
		return string(autherr.KindNetwork)
	case status == http.StatusTooManyRequests, status >= 500:
		return strconv.Itoa(status)
	}
	return def
}
