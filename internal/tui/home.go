package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/authsync/pkg/auth"
	"github.com/naveenspark/authsync/pkg/events"
)

// maxActivity is how many recent events the home view keeps.
const maxActivity = 8

// activityMsg carries one event from the store's bus.
type activityMsg events.Event

type homeModel struct {
	activity []events.Event // newest first
	width    int
	height   int
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case activityMsg:
		m.activity = append([]events.Event{events.Event(msg)}, m.activity...)
		if len(m.activity) > maxActivity {
			m.activity = m.activity[:maxActivity]
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m homeModel) View(s auth.Session) string {
	var sb strings.Builder

	badge := statusBadge(s.Status)
	sb.WriteString("\n" + centered(badge, lipgloss.Width(badge), m.width) + "\n\n")

	switch {
	case !s.Bootstrapped:
		sb.WriteString(" " + dimStyle.Render("Checking session…") + "\n")
	case s.User != nil:
		sb.WriteString(" " + dimStyle.Render("Signed in as ") + selectedStyle.Render(s.User.Name()) + "\n")
		if s.User.DisplayName != "" {
			sb.WriteString(" " + metaStyle.Render(s.User.Email) + "\n")
		}
	default:
		sb.WriteString(" " + dimStyle.Render("Not signed in.") + " " +
			metaStyle.Render("press l to sign in or r to create an account") + "\n")
	}
	if s.Status == auth.StatusError && s.ErrorMessage != "" {
		sb.WriteString("\n " + alertStyle.Render(s.ErrorMessage) + "\n")
	}

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	sb.WriteString("\n " + sectionHeaderStyle.Render("Activity") + "\n")
	sb.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")
	if len(m.activity) == 0 {
		sb.WriteString(" " + dimStyle.Render("no activity yet") + "\n")
		return sb.String()
	}
	for _, e := range m.activity {
		kind := string(e.Type)
		line := eventStyle(kind).Render("│") + " " + eventStyle(kind).Render(kind)
		if who := activitySubject(e); who != "" {
			line += " " + normalStyle.Render(truncStr(who, 40))
		}
		line += "  " + metaStyle.Render(formatTime(e.Time))
		sb.WriteString(" " + line + "\n")
	}
	return sb.String()
}

// activitySubject names the user an event is about, if any.
func activitySubject(e events.Event) string {
	if p, ok := e.Payload.(interface{ Name() string }); ok {
		return p.Name()
	}
	return ""
}
