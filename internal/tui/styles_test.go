package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/authsync/pkg/auth"
)

func TestStatusBadge(t *testing.T) {
	for _, s := range []auth.Status{auth.StatusIdle, auth.StatusLoading, auth.StatusAuthenticated, auth.StatusError} {
		t.Run(string(s), func(t *testing.T) {
			if got := statusBadge(s); !strings.Contains(got, string(s)) {
				t.Errorf("statusBadge(%s) = %q", s, got)
			}
		})
	}
}

func TestRenderShimmerLogo(t *testing.T) {
	for _, frame := range []int{0, 1, 50, 1000} {
		logo := renderShimmerLogo(frame)
		// 8 letters, two spaces between each.
		if w := lipgloss.Width(logo); w != 8+7*2 {
			t.Errorf("frame %d: width = %d, want 22", frame, w)
		}
	}
}

func TestHelpItemsFor(t *testing.T) {
	if items := helpItemsFor(""); items != nil {
		t.Errorf("helpItemsFor(\"\") = %v, want nil", items)
	}
	items := helpItemsFor("https://example.com")
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[1].url != "https://example.com/login" || items[1].desc != "example.com/login" {
		t.Errorf("login item = %+v", items[1])
	}
}

func TestEventStyleUnknownKind(t *testing.T) {
	if got := eventStyle("something-else").Render("x"); !strings.Contains(got, "x") {
		t.Errorf("eventStyle render = %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatTime(time.Now().Add(-tt.ago)); got != tt.want {
			t.Errorf("formatTime(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("hello", 10); got != "hello" {
		t.Errorf("truncStr short = %q", got)
	}
	if got := truncStr("héllo wörld", 6); got != "héllo…" {
		t.Errorf("truncStr long = %q", got)
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := truncateToHeight(s, 2); got != "a\nb\n" {
		t.Errorf("truncateToHeight(2) = %q", got)
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Errorf("truncateToHeight(0) = %q", got)
	}
	if got := truncateToHeight(s, 10); got != s {
		t.Errorf("truncateToHeight(10) = %q", got)
	}
}

func TestCentered(t *testing.T) {
	if got := centered("ab", 2, 6); got != "  ab" {
		t.Errorf("centered = %q", got)
	}
	if got := centered("abcdef", 6, 2); got != "abcdef" {
		t.Errorf("centered overflow = %q", got)
	}
}
