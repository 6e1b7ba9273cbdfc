package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var anonymousHints = [...]string{
	"No session on this machine yet.",
	"The server doesn't know who you are. Yet.",
	"Your cookie jar is empty.",
	"Signed out, cleanly.",
	"Nobody home.",
}

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("A U T H S Y N C")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Session console for your account.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"authsync", "Open the session console (interactive TUI)"},
		{"authsync login [email]", "Sign in, then open the console"},
		{"authsync register [email]", "Create an account"},
		{"authsync whoami", "Show the signed-in user"},
		{"authsync logout", "End the session and forget the cookie"},
		{"authsync --version", "Show version"},
		{"authsync help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), descStyle.Render(c.desc))
	}

	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(
		"Environment: AUTHSYNC_API_URL, AUTHSYNC_WEB_URL, AUTHSYNC_COOKIE_FILE, AUTHSYNC_DEBUG, AUTHSYNC_LOG_FILE")
	fmt.Fprintf(out, "\n  %s\n\n", env)
}

func printAnonymous(out io.Writer) {
	msg := anonymousHints[rand.IntN(len(anonymousHints))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8890a0")).
		Bold(true).
		Render("Not signed in.")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To sign in: authsync login")

	fmt.Fprintf(out, "%s\n%s\n\n%s\n", title, quote, hint)
}
