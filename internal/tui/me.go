package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/authsync/pkg/auth"
)

type meCopyMsg struct{ err error }

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// meModel is the protected account view.
type meModel struct {
	statusMsg string
	width     int
}

func (m meModel) Update(msg tea.Msg, s auth.Session) (meModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case meCopyMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed: " + msg.err.Error()
		} else {
			m.statusMsg = "user id copied"
		}

	case tea.KeyMsg:
		if msg.String() == "c" && auth.Guard(s) == auth.DecisionAllow {
			id := s.User.ID
			return m, func() tea.Msg {
				return meCopyMsg{err: copyToClipboard(id)}
			}
		}
	}
	return m, nil
}

// View renders what the route guard allows for s.
func (m meModel) View(s auth.Session) string {
	switch auth.Guard(s) {
	case auth.DecisionLoading:
		return "\n " + dimStyle.Render("Checking session…")
	case auth.DecisionRedirect:
		return "\n " + dimStyle.Render("Redirecting to sign in…")
	}

	u := s.User
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(u.Name()) + "  " + statusBadge(s.Status))
	if u.HasRole("admin") {
		b.WriteString("  " + goldStyle.Bold(true).Render("admin"))
	}
	b.WriteString("\n\n")
	b.WriteString(" " + sectionHeaderStyle.Render("Account") + "\n")
	b.WriteString(" " + labelStyle.Render("ID") + normalStyle.Render(u.ID) + "\n")
	b.WriteString(" " + labelStyle.Render("Email") + normalStyle.Render(u.Email) + "\n")
	if u.DisplayName != "" {
		b.WriteString(" " + labelStyle.Render("Display name") + normalStyle.Render(u.DisplayName) + "\n")
	}
	roles := "none"
	if len(u.Roles) > 0 {
		roles = strings.Join(u.Roles, ", ")
	}
	b.WriteString(" " + labelStyle.Render("Roles") + goldStyle.Render(roles) + "\n")
	if !s.LastSuccessfulFetch.IsZero() {
		b.WriteString(" " + labelStyle.Render("Verified") + dimStyle.Render(formatTime(s.LastSuccessfulFetch)) + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString("\n " + accentStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m meModel) helpKeys() string {
	return helpEntry("c", "copy id") + "  " + helpEntry("x", "sign out")
}
