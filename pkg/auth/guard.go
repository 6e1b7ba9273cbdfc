package auth

// Decision is what a protected view should do with the current session.
type Decision int

const (
	// DecisionLoading: the session check has not settled; show a spinner.
	DecisionLoading Decision = iota
	// DecisionRedirect: nobody is signed in; send the visitor to log in.
	DecisionRedirect
	// DecisionAllow: render the protected content.
	DecisionAllow
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	}
	return "unknown"
}

// Guard decides how a protected view renders s.
func Guard(s Session) Decision {
	if !s.Bootstrapped || s.Status == StatusLoading {
		return DecisionLoading
	}
	if s.User == nil {
		return DecisionRedirect
	}
	return DecisionAllow
}

// Protect evaluates Guard for the view at path (including query and
// fragment) and, when redirecting, remembers path so login can return to it.
func Protect(s *Store, path string) (Decision, Session) {
	snap := s.Snapshot()
	d := Guard(snap)
	if d == DecisionRedirect {
		s.SetIntendedPath(path)
	}
	return d, snap
}

// ConsumeIntendedPath returns the remembered path, or fallback when none is
// set, and clears it.
func ConsumeIntendedPath(s *Store, fallback string) string {
	p := s.Snapshot().IntendedPath
	if p == "" {
		return fallback
	}
	s.SetIntendedPath("")
	return p
}
