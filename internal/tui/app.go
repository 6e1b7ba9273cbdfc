// Package tui is the terminal front-end: a bubbletea program that renders
// the session store and routes user actions into it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/authsync/internal/browser"
	"github.com/naveenspark/authsync/pkg/auth"
	"github.com/naveenspark/authsync/pkg/events"
	"github.com/naveenspark/authsync/pkg/visibility"
)

type view int

const (
	viewHome view = iota
	viewLogin
	viewRegister
	viewMe
)

// Paths each view is addressed by.
const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathMe       = "/me"
)

var viewPaths = map[view]string{
	viewHome:     PathHome,
	viewLogin:    PathLogin,
	viewRegister: PathRegister,
	viewMe:       PathMe,
}

// -- messages --

// sessionMsg carries the latest store snapshot.
type sessionMsg auth.Session

type authDoneMsg struct {
	kind formKind
	ok   bool
	err  error
}

type logoutDoneMsg struct{ err error }

type openedMsg struct {
	url string
	err error
}

// openURL is swapped out in tests.
var openURL = browser.Open

// bridge turns store callbacks into bubbletea messages. Session changes
// are coalesced: the App always reads the newest snapshot.
type bridge struct {
	changed  chan struct{}
	activity chan events.Event
	once     sync.Once
	unsubs   []func()
}

func newBridge(store *auth.Store, log *slog.Logger) *bridge {
	b := &bridge{
		changed:  make(chan struct{}, 1),
		activity: make(chan events.Event, 16),
	}
	b.unsubs = append(b.unsubs, store.Subscribe(func(auth.Session) {
		select {
		case b.changed <- struct{}{}:
		default:
		}
	}))
	b.unsubs = append(b.unsubs, store.Events().Subscribe(func(e events.Event) {
		select {
		case b.activity <- e:
		default:
			log.Debug("tui.activity.dropped", slog.String("type", string(e.Type)))
		}
	}))
	return b
}

func (b *bridge) close() {
	b.once.Do(func() {
		for _, u := range b.unsubs {
			u()
		}
	})
}

// Option configures an App.
type Option func(*App)

// WithVersion sets the version shown in the header.
func WithVersion(v string) Option { return func(a *App) { a.version = v } }

// WithWebURL sets the site opened with "o" and listed in help.
func WithWebURL(u string) Option { return func(a *App) { a.webURL = strings.TrimRight(u, "/") } }

// WithPersist registers a hook run after every login, register and logout,
// used to save or drop the cookie file.
func WithPersist(fn func()) Option { return func(a *App) { a.persist = fn } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithContext sets the context store operations run under.
func WithContext(ctx context.Context) Option { return func(a *App) { a.ctx = ctx } }

// App is the root Bubbletea model.
type App struct {
	store   *auth.Store
	signal  *visibility.Signal
	bridge  *bridge
	ctx     context.Context
	log     *slog.Logger
	persist func()
	version string
	webURL  string

	session  auth.Session
	view     view
	home     homeModel
	login    formModel
	register formModel
	me       meModel
	notice   string

	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI for store. signal receives terminal focus changes
// and may be nil. Call Close when the program exits.
func NewApp(store *auth.Store, signal *visibility.Signal, opts ...Option) App {
	a := App{
		store:    store,
		signal:   signal,
		ctx:      context.Background(),
		log:      slog.New(slog.DiscardHandler),
		persist:  func() {},
		login:    newFormModel(formLogin),
		register: newFormModel(formRegister),
		session:  store.Snapshot(),
	}
	for _, o := range opts {
		o(&a)
	}
	a.bridge = newBridge(store, a.log)
	return a
}

// Close detaches the App from the store.
func (a App) Close() { a.bridge.close() }

// Path returns the path of the current view.
func (a App) Path() string { return viewPaths[a.view] }

func (a App) Init() tea.Cmd {
	return tea.Batch(a.waitForSession(), a.waitForActivity(), shimmerTickCmd())
}

func (a App) waitForSession() tea.Cmd {
	b, store := a.bridge, a.store
	return func() tea.Msg {
		<-b.changed
		return sessionMsg(store.Snapshot())
	}
}

func (a App) waitForActivity() tea.Cmd {
	b := a.bridge
	return func() tea.Msg {
		return activityMsg(<-b.activity)
	}
}

// Navigate switches to the view for path. Protected paths go through the
// route guard: an anonymous session is sent to the login form and the
// requested path is remembered for after sign-in.
func (a App) Navigate(path string) (App, tea.Cmd) {
	switch path {
	case PathLogin:
		a.view = viewLogin
	case PathRegister:
		a.view = viewRegister
	case PathMe:
		if d, _ := auth.Protect(a.store, path); d == auth.DecisionRedirect {
			a.view = viewLogin
			a.notice = "Sign in to view " + path
			return a, nil
		}
		a.view = viewMe
	default:
		a.view = viewHome
	}
	a.notice = ""
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + notice(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.home, _ = a.home.Update(bodyMsg)
		a.login, _ = a.login.Update(bodyMsg)
		a.register, _ = a.register.Update(bodyMsg)
		a.me, _ = a.me.Update(bodyMsg, a.session)
		return a, nil

	case tea.FocusMsg:
		if a.signal != nil {
			a.signal.Set(true)
		}
		return a, nil

	case tea.BlurMsg:
		if a.signal != nil {
			a.signal.Set(false)
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionMsg:
		a.session = auth.Session(msg)
		next := a.waitForSession()
		// The guard is re-evaluated whenever the session moves under /me.
		if a.view == viewMe && auth.Guard(a.session) == auth.DecisionRedirect {
			a, _ = a.Navigate(PathMe)
		}
		return a, next

	case activityMsg:
		a.home, _ = a.home.Update(msg)
		return a, a.waitForActivity()

	case submitMsg:
		if a.session.InFlight {
			return a, nil
		}
		return a, a.runAuth(msg)

	case authDoneMsg:
		return a.afterAuth(msg)

	case logoutDoneMsg:
		if errors.Is(msg.err, auth.ErrConcurrentOperation) {
			a.notice = "Another request is in progress."
			return a, nil
		}
		a.login = a.login.reset()
		a.notice = "Signed out."
		a.view = viewHome
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.notice = "Open " + msg.url + " in your browser."
		}
		return a, nil

	case meCopyMsg:
		a.me, _ = a.me.Update(msg, a.session)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if a.isEditing() {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)
	}
	return a, nil
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := helpItemsFor(a.webURL)
	switch msg.String() {
	case "h", "esc":
		a.helpOpen = false
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.helpCursor < len(items)-1 {
			a.helpCursor++
		}
	case "k", "up":
		if a.helpCursor > 0 {
			a.helpCursor--
		}
	case "enter":
		if a.helpCursor < len(items) {
			return a, openCmd(items[a.helpCursor].url)
		}
	}
	return a, nil
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		if a.session.Status == auth.StatusError {
			a.store.ClearError()
			return a, nil
		}
		return a.Navigate(PathHome)
	}
	var cmd tea.Cmd
	if a.view == viewRegister {
		a.register, cmd = a.register.Update(msg)
	} else {
		a.login, cmd = a.login.Update(msg)
	}
	return a, cmd
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "h":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil
	case "1":
		return a.Navigate(PathHome)
	case "2":
		return a.Navigate(PathMe)
	case "l":
		return a.Navigate(PathLogin)
	case "r":
		return a.Navigate(PathRegister)
	case "o":
		if a.webURL != "" {
			return a, openCmd(a.webURL)
		}
		return a, nil
	case "esc":
		if a.session.Status == auth.StatusError {
			a.store.ClearError()
		}
		return a, nil
	case "x":
		if a.session.User == nil {
			return a, nil
		}
		return a, a.runLogout()
	}
	if a.view == viewMe {
		var cmd tea.Cmd
		a.me, cmd = a.me.Update(msg, a.session)
		return a, cmd
	}
	return a, nil
}

func (a App) isEditing() bool {
	return a.view == viewLogin || a.view == viewRegister
}

func (a App) runAuth(msg submitMsg) tea.Cmd {
	store, ctx, persist := a.store, a.ctx, a.persist
	return func() tea.Msg {
		var ok bool
		var err error
		if msg.kind == formRegister {
			ok, err = store.Register(ctx, msg.email, msg.password)
		} else {
			ok, err = store.Login(ctx, msg.email, msg.password)
		}
		if ok {
			persist()
		}
		return authDoneMsg{kind: msg.kind, ok: ok, err: err}
	}
}

func (a App) afterAuth(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, auth.ErrConcurrentOperation) {
		a.notice = "Another request is in progress."
		return a, nil
	}
	if !msg.ok {
		return a, nil
	}
	a.login = a.login.reset()
	a.register = a.register.reset()
	next := auth.ConsumeIntendedPath(a.store, PathHome)
	a, cmd := a.Navigate(next)
	if msg.kind == formRegister {
		a.notice = "Account created."
	} else {
		a.notice = "Signed in."
	}
	return a, cmd
}

func (a App) runLogout() tea.Cmd {
	store, ctx, persist := a.store, a.ctx, a.persist
	return func() tea.Msg {
		err := store.Logout(ctx)
		if err == nil {
			persist()
		}
		return logoutDoneMsg{err: err}
	}
}

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{url: url, err: openURL(url)}
	}
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := centered(logo, lipgloss.Width(logo), a.width)

	sub := metaStyle.Render(viewPaths[a.view])
	if a.version != "" {
		sub += metaStyle.Render("  " + a.version)
	}
	header += "\n" + centered(sub, lipgloss.Width(sub), a.width)

	var body, help string
	switch a.view {
	case viewHome:
		body = a.home.View(a.session)
		help = " " + helpEntry("2", "account") + "  "
		if a.session.User != nil {
			help += helpEntry("x", "sign out")
		} else {
			help += helpEntry("l", "sign in") + "  " + helpEntry("r", "register")
		}
		help += "  " + helpEntry("o", "web") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewLogin:
		body = a.login.View(a.session)
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("esc", "back")
	case viewRegister:
		body = a.register.View(a.session)
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("esc", "back")
	case viewMe:
		body = a.me.View(a.session)
		help = " " + helpEntry("1", "home") + "  " + a.me.helpKeys() + "  " + helpEntry("q", "quit")
	}

	if a.helpOpen {
		body = helpView(helpItemsFor(a.webURL), a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	notice := ""
	if a.notice != "" {
		notice = " " + accentStyle.Render(a.notice)
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, body, notice, help)
}
