package orderform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// OrderSubmittedMsg is dispatched when the user completes the form.
type OrderSubmittedMsg struct {
	Form model.OrderForm
}

// OrderFormCancelMsg is dispatched when the user cancels the form.
type OrderFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	clientName      string
	deliveryAddress string
	packageDetails  string
}

// Model is the Bubble Tea model for the new-order form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new order form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes a fresh form.
func (m *Model) Start() tea.Cmd {
	m.fb.clientName = ""
	m.fb.deliveryAddress = ""
	m.fb.packageDetails = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the order form.
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
		return m, func() tea.Msg { return OrderFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the order form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("New Shipment Order") + "\n" + m.form.View()

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
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Client").
				Placeholder("Who is this shipment for?").
				Value(&m.fb.clientName).
				Validate(validateRequired("Client")),
			huh.NewInput().
				Title("Delivery Address").
				Placeholder("Street, city").
				Value(&m.fb.deliveryAddress).
				Validate(validateRequired("Delivery address")),
			huh.NewText().
				Title("Package Details").
				Placeholder("Contents, weight, handling notes...").
				Value(&m.fb.packageDetails).
				Validate(validateRequired("Package details")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	form := model.OrderForm{
		ClientName:      strings.TrimSpace(m.fb.clientName),
		DeliveryAddress: strings.TrimSpace(m.fb.deliveryAddress),
		PackageDetails:  strings.TrimSpace(m.fb.packageDetails),
	}
	return func() tea.Msg { return OrderSubmittedMsg{Form: form} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
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
