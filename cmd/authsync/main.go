package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/authsync/internal/config"
	"github.com/naveenspark/authsync/internal/tui"
	"github.com/naveenspark/authsync/pkg/bootstrap"
	"github.com/naveenspark/authsync/pkg/events"
	"github.com/naveenspark/authsync/pkg/visibility"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "authsync "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "":
		return runTUI(ctx, cfg)
	case "login", "register":
		email := ""
		if len(args) > 1 {
			email = args[1]
		}
		return runAuth(ctx, cfg, cmd, email, out)
	case "whoami":
		return runWhoami(ctx, cfg, out)
	case "logout":
		return runLogout(ctx, cfg, out)
	}
	return fmt.Errorf("unknown command %q (try: authsync help)", cmd)
}

// cliLogger logs to AUTHSYNC_LOG_FILE when set, to stderr in debug mode,
// and nowhere otherwise.
func cliLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return cfg.NewLogger(f), func() { f.Close() }, nil //nolint:errcheck
	}
	if cfg.Debug {
		return cfg.NewLogger(os.Stderr), func() {}, nil
	}
	return slog.New(slog.DiscardHandler), func() {}, nil
}

// tuiLogger is cliLogger for the alternate screen: stderr is never used.
func tuiLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := tea.LogToFile(cfg.LogFile, "authsync")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return cfg.NewLogger(f), func() { f.Close() }, nil //nolint:errcheck
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	log, closeLog, err := tuiLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := openSession(cfg, log)
	if err != nil {
		return err
	}
	return launchTUI(ctx, s)
}

func launchTUI(ctx context.Context, s *session) error {
	// Terminals report focus once the program starts; assume visible.
	sig := visibility.NewSignal(true)
	ctrl := bootstrap.NewController(s.store, sig,
		bootstrap.WithTimeout(s.cfg.BootstrapTimeout),
		bootstrap.WithCooldown(s.cfg.RefreshCooldown),
		bootstrap.WithLogger(s.log),
	)
	ctrl.Activate(ctx)
	defer ctrl.Deactivate()

	// Background refreshes can rotate or clear the session cookie.
	unsubscribe := s.store.Events().Subscribe(func(e events.Event) {
		if e.Type == events.SessionRefreshed {
			s.save()
		}
	})
	defer unsubscribe()

	app := tui.NewApp(s.store, sig,
		tui.WithVersion(version),
		tui.WithWebURL(s.cfg.WebURL),
		tui.WithPersist(s.save),
		tui.WithLogger(s.log),
		tui.WithContext(ctx),
	)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runAuth(ctx context.Context, cfg *config.Config, cmd, email string, out io.Writer) error {
	title := "Sign in"
	if cmd == "register" {
		title = "Create an account"
	}
	email, password, err := promptCredentials(title, email)
	if err != nil {
		return err
	}

	// Login ends in the TUI, so it logs the way the TUI does.
	newLogger := cliLogger
	if cmd == "login" {
		newLogger = tuiLogger
	}
	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	s, err := openSession(cfg, log)
	if err != nil {
		return err
	}

	if err := authenticate(ctx, s, cmd, email, password, out); err != nil {
		return err
	}
	if cmd == "register" {
		return nil
	}
	// Launch TUI automatically after login.
	return launchTUI(ctx, s)
}

// authenticate runs login or register against the store and reports the
// outcome in the store's own words.
func authenticate(ctx context.Context, s *session, cmd, email, password string, out io.Writer) error {
	var ok bool
	var err error
	if cmd == "register" {
		ok, err = s.store.Register(ctx, email, password)
	} else {
		ok, err = s.store.Login(ctx, email, password)
	}
	if err != nil {
		return err
	}
	snap := s.store.Snapshot()
	if !ok {
		return fmt.Errorf("%s failed: %s", cmd, snap.ErrorMessage)
	}
	s.save()

	who := email
	if snap.User != nil {
		who = snap.User.Name()
	}
	if cmd == "register" {
		fmt.Fprintf(out, "Account created for %s\n", who)
	} else {
		fmt.Fprintf(out, "Signed in as %s\n\n", who)
	}
	return nil
}

func runWhoami(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log, closeLog, err := cliLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	s, err := openSession(cfg, log)
	if err != nil {
		return err
	}
	return whoami(ctx, s, out)
}

func whoami(ctx context.Context, s *session, out io.Writer) error {
	if err := s.store.Refresh(ctx); err != nil {
		return err
	}
	snap := s.store.Snapshot()
	if snap.User == nil {
		if s.hasSavedCookies() {
			fmt.Fprintln(out, "Saved session has expired.")
			if err := s.forget(); err != nil {
				return err
			}
		}
		printAnonymous(out)
		return nil
	}
	s.save()

	u := snap.User
	fmt.Fprintf(out, "%s\n", u.Name())
	fmt.Fprintf(out, "  id     %s\n", u.ID)
	fmt.Fprintf(out, "  email  %s\n", u.Email)
	if len(u.Roles) > 0 {
		fmt.Fprintf(out, "  roles  %s\n", strings.Join(u.Roles, ", "))
	}
	return nil
}

func runLogout(ctx context.Context, cfg *config.Config, out io.Writer) error {
	log, closeLog, err := cliLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	s, err := openSession(cfg, log)
	if err != nil {
		return err
	}
	return logout(ctx, s, out)
}

func logout(ctx context.Context, s *session, out io.Writer) error {
	if s.cfg.PersistCookies() && !s.hasSavedCookies() {
		fmt.Fprintln(out, "Already logged out.")
		return nil
	}
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	if err := s.forget(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged out.")
	return nil
}
