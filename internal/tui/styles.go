package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/authsync/pkg/auth"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "AUTHSYNC" as a wave of green light moving
// left to right. Deep forest green (#1a3a24) -> bright emerald (#4ade80).
func renderShimmerLogo(frame int) string {
	const text = "AUTHSYNC"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		// Slow breathing tide
		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(26 + b*(74-26))
		g := clampByte(58 + b*(222-58))
		bl := clampByte(36 + b*(128-36))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}

	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	// Error alert shown above forms.
	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#b45555")).
			Padding(0, 1)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#606878")).
			Width(14)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474")).
				Bold(true)

	// Event colors for the activity list.
	eventColors = map[string]lipgloss.Color{
		"login-succeeded":    lipgloss.Color("#34d474"),
		"register-succeeded": lipgloss.Color("#4ade80"),
		"session-refreshed":  lipgloss.Color("#3ecce4"),
		"logout-completed":   lipgloss.Color("#d4a844"),
	}
)

// statusStyle returns the badge style for a session status.
func statusStyle(s auth.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch s {
	case auth.StatusAuthenticated:
		return base.Foreground(lipgloss.Color("#0a0a10")).Background(lipgloss.Color("#34d474"))
	case auth.StatusLoading:
		return base.Foreground(lipgloss.Color("#0a0a10")).Background(lipgloss.Color("#d4a844"))
	case auth.StatusError:
		return base.Foreground(lipgloss.Color("#e4e4ec")).Background(lipgloss.Color("#b45555"))
	default:
		return base.Foreground(lipgloss.Color("#c0c4d0")).Background(lipgloss.Color("#1e1e2a"))
	}
}

// statusBadge renders the status as a colored pill, e.g. " authenticated ".
func statusBadge(s auth.Status) string {
	return statusStyle(s).Render(string(s))
}

// eventStyle returns the color for an activity entry.
func eventStyle(kind string) lipgloss.Style {
	if c, ok := eventColors[kind]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return dimStyle
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

// helpItemsFor lists the links offered for webURL.
func helpItemsFor(webURL string) []helpItem {
	if webURL == "" {
		return nil
	}
	host := strings.TrimPrefix(strings.TrimPrefix(webURL, "https://"), "http://")
	return []helpItem{
		{"Website", host, webURL},
		{"Sign in on the web", host + "/login", webURL + "/login"},
		{"Create an account", host + "/register", webURL + "/register"},
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("A U T H S Y N C")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"authsync", "Open the session console"},
		{"authsync login", "Sign in with email and password"},
		{"authsync register", "Create an account"},
		{"authsync whoami", "Show the signed-in user"},
		{"authsync logout", "End the session"},
		{"authsync --version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	if len(items) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
