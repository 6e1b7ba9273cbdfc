package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/authsync/pkg/auth"
	"github.com/naveenspark/authsync/pkg/domain"
	"github.com/naveenspark/authsync/pkg/events"
)

func TestHomeViewStates(t *testing.T) {
	u := &domain.User{ID: "u1", Email: "a@b.com"}
	tests := []struct {
		name string
		s    auth.Session
		want string
	}{
		{"checking", auth.Session{Status: auth.StatusLoading}, "Checking session"},
		{"anonymous", auth.Session{Status: auth.StatusIdle, Bootstrapped: true}, "Not signed in."},
		{"signed in", auth.Session{Status: auth.StatusAuthenticated, Bootstrapped: true, User: u}, "a@b.com"},
		{"error", auth.Session{Status: auth.StatusError, Bootstrapped: true, ErrorMessage: "Server error. Please try again."}, "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := homeModel{width: 80}
			if got := m.View(tt.s); !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in view, got:\n%s", tt.want, got)
			}
		})
	}
}

func TestHomeActivityNewestFirstAndCapped(t *testing.T) {
	m := homeModel{width: 80}
	for i := 0; i < maxActivity+3; i++ {
		m, _ = m.Update(activityMsg{Type: events.SessionRefreshed, Time: time.Now()})
	}
	m, _ = m.Update(activityMsg{Type: events.LogoutCompleted, Time: time.Now()})
	if len(m.activity) != maxActivity {
		t.Fatalf("kept %d entries, want %d", len(m.activity), maxActivity)
	}
	if m.activity[0].Type != events.LogoutCompleted {
		t.Errorf("newest entry = %s, want logout-completed", m.activity[0].Type)
	}
}
