package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// SubmittedMsg carries completed credentials. Name is empty for a
// plain login and set when the user chose to create an account.
type SubmittedMsg struct {
	Signup   bool
	Name     string
	Email    string
	Password string
}

const (
	modeLogin  = "login"
	modeSignup = "signup"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	mode     string
	name     string
	email    string
	password string
}

// Model is the Bubble Tea model for the login / signup screen.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	errText string
	width   int
	height  int
}

// New creates a new login model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{mode: modeLogin},
		width:  width,
		height: height,
	}
}

// Start initializes a fresh login form. An optional error message from
// a previous attempt is shown above the form.
func (m *Model) Start(errText string) tea.Cmd {
	m.errText = errText
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the login form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the login screen.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("SwiftTrack · Sign In")
	if m.errText != "" {
		content += "\n" + theme.ErrorStyle.Render(m.errText)
	}
	content += "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fb := m.fb
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Action").
				Options(
					huh.NewOption("Log in", modeLogin),
					huh.NewOption("Create account", modeSignup),
				).
				Value(&fb.mode),
			huh.NewInput().
				Title("Name").
				Placeholder("Required for new accounts").
				Value(&fb.name).
				Validate(func(s string) error {
					if fb.mode == modeSignup && strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required to create an account")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&fb.email).
				Validate(validateRequired("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmittedMsg{
		Signup:   m.fb.mode == modeSignup,
		Name:     strings.TrimSpace(m.fb.name),
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
