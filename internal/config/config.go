// Package config loads authsync settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// CookieFileDisabled turns off cookie persistence when used as AUTHSYNC_COOKIE_FILE.
const CookieFileDisabled = "-"

// Config holds every tunable. Defaults live in the struct tags.
type Config struct {
	// APIURL is the session API origin. ENV: AUTHSYNC_API_URL
	APIURL string `env:"AUTHSYNC_API_URL,default=http://localhost:8080"`
	// WebURL is opened in the browser. Derived from APIURL when empty. ENV: AUTHSYNC_WEB_URL
	WebURL string `env:"AUTHSYNC_WEB_URL"`

	RefreshCooldown  time.Duration `env:"AUTHSYNC_REFRESH_COOLDOWN,default=30s"`
	BootstrapTimeout time.Duration `env:"AUTHSYNC_BOOTSTRAP_TIMEOUT,default=5s"`
	RequestTimeout   time.Duration `env:"AUTHSYNC_REQUEST_TIMEOUT,default=30s"`

	// Debug logs every session transition and event.
	Debug    bool   `env:"AUTHSYNC_DEBUG"`
	LogLevel string `env:"AUTHSYNC_LOG_LEVEL,default=info"`
	LogFile  string `env:"AUTHSYNC_LOG_FILE"`

	// CookieFile is where the session cookie is kept between runs.
	// Defaults to ~/.authsync/cookies.json. ENV: AUTHSYNC_COOKIE_FILE
	CookieFile string `env:"AUTHSYNC_COOKIE_FILE"`
}

// Load reads the environment, fills derived fields and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.WebURL == "" {
		cfg.WebURL = webURLFor(cfg.APIURL)
	}
	if cfg.CookieFile == "" {
		path, err := defaultCookieFile()
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		cfg.CookieFile = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate checks URLs, durations and the log level.
func (c *Config) Validate() error {
	var errs []error
	if err := checkHTTPURL("AUTHSYNC_API_URL", c.APIURL); err != nil {
		errs = append(errs, err)
	}
	if err := checkHTTPURL("AUTHSYNC_WEB_URL", c.WebURL); err != nil {
		errs = append(errs, err)
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"AUTHSYNC_REFRESH_COOLDOWN", c.RefreshCooldown},
		{"AUTHSYNC_BOOTSTRAP_TIMEOUT", c.BootstrapTimeout},
		{"AUTHSYNC_REQUEST_TIMEOUT", c.RequestTimeout},
	} {
		if d.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.val))
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PersistCookies reports whether the cookie file is enabled.
func (c *Config) PersistCookies() bool {
	return c.CookieFile != CookieFileDisabled
}

// Level returns the configured log level; Debug forces slog.LevelDebug.
func (c *Config) Level() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("AUTHSYNC_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

func checkHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	return nil
}

// webURLFor strips a leading "api." host label: https://api.example.com
// becomes https://example.com. Other hosts are returned unchanged.
func webURLFor(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL
	}
	host := u.Hostname()
	if !strings.HasPrefix(host, "api.") {
		return apiURL
	}
	u.Host = strings.TrimPrefix(host, "api.")
	if port := u.Port(); port != "" {
		u.Host += ":" + port
	}
	u.Path = ""
	return u.String()
}

// defaultCookieFile returns ~/.authsync/cookies.json.
func defaultCookieFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".authsync", "cookies.json"), nil
}
