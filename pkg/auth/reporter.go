package auth

import (
	"context"
	"log/slog"
)

// Reporter observes every session change. It is a diagnostic side channel
// and must not call back into the Store.
type Reporter interface {
	Report(Session)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Session)

// Report implements Reporter.
func (f ReporterFunc) Report(s Session) {
	if f != nil {
		f(s)
	}
}

// NewLogReporter returns a Reporter that writes each change to l at debug
// level. Emails are never logged.
func NewLogReporter(l *slog.Logger) Reporter {
	return ReporterFunc(func(s Session) {
		attrs := []slog.Attr{
			slog.String("status", string(s.Status)),
			slog.Bool("bootstrapped", s.Bootstrapped),
			slog.Bool("in_flight", s.InFlight),
		}
		if s.User != nil {
			attrs = append(attrs, slog.String("user_id", s.User.ID))
		}
		if s.ErrorKind != "" {
			attrs = append(attrs, slog.String("error_kind", string(s.ErrorKind)))
		}
		if s.IntendedPath != "" {
			attrs = append(attrs, slog.String("intended_path", s.IntendedPath))
		}
		l.LogAttrs(context.Background(), slog.LevelDebug, "auth.state", attrs...)
	})
}
