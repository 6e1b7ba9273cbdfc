package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/authsync/pkg/auth"
)

type formKind int

const (
	formLogin formKind = iota
	formRegister
)

func (k formKind) title() string {
	if k == formRegister {
		return "Create an account"
	}
	return "Sign in"
}

// maxInputLen caps email and password fields.
const maxInputLen = 256

// submitMsg asks the App to run the form's store operation.
type submitMsg struct {
	kind     formKind
	email    string
	password string
}

// formModel is the email/password form shared by /login and /register.
type formModel struct {
	kind     formKind
	email    textinput.Model
	password textinput.Model
	focus    int // 0=email, 1=password
	problem  string
	width    int
}

func newFormModel(kind formKind) formModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = maxInputLen
	email.Focus()

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.Prompt = ""
	pw.CharLimit = maxInputLen
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	return formModel{kind: kind, email: email, password: pw}
}

// reset clears the password and moves focus back to the first field.
func (m formModel) reset() formModel {
	m.password.SetValue("")
	m.problem = ""
	m.focus = 0
	m.email.Focus()
	m.password.Blur()
	return m
}

func (m formModel) setFocus(i int) formModel {
	m.focus = i
	if i == 0 {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.password.Focus()
		m.email.Blur()
	}
	return m
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return m.setFocus(1 - m.focus), nil
		case "enter":
			if m.focus == 0 {
				return m.setFocus(1), nil
			}
			email := strings.TrimSpace(m.email.Value())
			pw := m.password.Value()
			if email == "" || pw == "" {
				m.problem = "Email and password are required."
				return m, nil
			}
			m.problem = ""
			kind := m.kind
			return m, func() tea.Msg { return submitMsg{kind: kind, email: email, password: pw} }
		}
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// View renders the form for the given session. Submission is shown as
// disabled while any store operation is in flight.
func (m formModel) View(s auth.Session) string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(m.kind.title()) + "\n\n")

	if s.Status == auth.StatusError && s.ErrorMessage != "" {
		b.WriteString(" " + alertStyle.Render(s.ErrorMessage) + "\n")
		b.WriteString(" " + metaStyle.Render("esc to dismiss") + "\n\n")
	}
	if m.problem != "" {
		b.WriteString(" " + errorStyle.Render(m.problem) + "\n\n")
	}

	b.WriteString(" " + m.fieldLabel("Email", 0) + m.email.View() + "\n")
	b.WriteString(" " + m.fieldLabel("Password", 1) + m.password.View() + "\n\n")

	switch {
	case s.InFlight:
		b.WriteString(" " + dimStyle.Render("working…"))
	case m.kind == formRegister:
		b.WriteString(" " + inputPromptStyle.Render("> ") + normalStyle.Render("enter to create account"))
	default:
		b.WriteString(" " + inputPromptStyle.Render("> ") + normalStyle.Render("enter to sign in"))
	}
	return b.String()
}

func (m formModel) fieldLabel(label string, idx int) string {
	if m.focus == idx {
		return accentStyle.Width(14).Render(label)
	}
	return labelStyle.Render(label)
}
