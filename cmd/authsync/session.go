package main

import (
	"log/slog"

	"github.com/naveenspark/authsync/internal/config"
	"github.com/naveenspark/authsync/internal/cookiefile"
	"github.com/naveenspark/authsync/pkg/auth"
	"github.com/naveenspark/authsync/pkg/client"
	"github.com/naveenspark/authsync/pkg/events"
)

// session wires the API client, the auth store and the cookie file.
type session struct {
	cfg    *config.Config
	client *client.Client
	store  *auth.Store
	log    *slog.Logger
}

func openSession(cfg *config.Config, log *slog.Logger) (*session, error) {
	c, err := client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if cfg.PersistCookies() {
		cookies, err := cookiefile.Load(cfg.CookieFile, cfg.APIURL)
		if err != nil {
			// A corrupt file only costs a sign-in.
			log.Warn("session.cookies.load_failed", slog.Any("err", err))
		}
		c.SetCookies(cookies)
	}

	opts := []auth.Option{
		auth.WithLogger(log),
		auth.WithEvents(events.NewBus(events.WithLogger(log))),
	}
	if cfg.Debug {
		opts = append(opts, auth.WithReporter(auth.NewLogReporter(log)))
	}
	return &session{
		cfg:    cfg,
		client: c,
		store:  auth.NewStore(c, opts...),
		log:    log,
	}, nil
}

// save writes the jar's cookies for the API origin. An empty jar removes
// the file.
func (s *session) save() {
	if !s.cfg.PersistCookies() {
		return
	}
	if err := cookiefile.Save(s.cfg.CookieFile, s.cfg.APIURL, s.client.Cookies()); err != nil {
		s.log.Warn("session.cookies.save_failed", slog.Any("err", err))
	}
}

// hasSavedCookies reports whether a previous run left a session behind.
func (s *session) hasSavedCookies() bool {
	return s.cfg.PersistCookies() && cookiefile.Exists(s.cfg.CookieFile)
}

// forget removes the cookie file.
func (s *session) forget() error {
	if !s.cfg.PersistCookies() {
		return nil
	}
	return cookiefile.Remove(s.cfg.CookieFile)
}
