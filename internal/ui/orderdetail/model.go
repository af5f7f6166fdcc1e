package orderdetail

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/keys"
	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/order"
	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// BackMsg is dispatched when the user leaves the detail view.
type BackMsg struct{}

// Model renders a single order with its middleware progress.
type Model struct {
	order   *model.Order
	keys    *keys.KeyMap
	loading bool
	width   int
	height  int
}

// New creates a new order detail model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetOrder sets the order to display.
func (m *Model) SetOrder(o *model.Order) {
	m.order = o
	m.loading = false
}

// SetLoading marks the view as waiting for data.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}
	return m, nil
}

// View renders the order detail panel.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return style.Render("Loading order...")
	}
	if m.order == nil {
		return style.Render("Order not found.")
	}

	o := m.order

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Order #%d", o.ID))

	statusBadge := theme.OrderStatusStyle(o.Status).Render(order.StatusLabel(o.Status))

	confirmed, total := order.Progress(*o)
	progress := theme.DimmedStyle.Render(
		fmt.Sprintf("middleware progress: %d/%d confirmed", confirmed, total),
	)

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, title, " ", statusBadge),
		"",
		m.field("Client", o.ClientName),
		m.field("Delivery", o.DeliveryAddress),
		m.field("Package", o.PackageDetails),
		"",
		m.step("Contracts (CMS)", o.CmsStatus),
		m.step("Warehouse (WMS)", o.WmsStatus),
		m.step("Routing   (ROS)", o.RosStatus),
		"",
		progress,
	}

	if !o.CreatedAt.IsZero() {
		lines = append(lines, m.field("Created", o.CreatedAt.Format("2006-01-02 15:04")))
	}

	panel := theme.PanelStyle.
		Width(m.panelWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return lipgloss.NewStyle().Padding(1, 2).Render(panel)
}

// field draws a label/value line.
func (m Model) field(label, value string) string {
	return fmt.Sprintf("%s %s", theme.DimmedStyle.Render(label+":"), value)
}

// step draws one middleware system's confirmation line.
func (m Model) step(label, status string) string {
	symbol := order.StepSymbol(status)
	styled := symbol
	switch status {
	case order.StepConfirmed:
		styled = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(symbol)
	case order.StepFailed:
		styled = lipgloss.NewStyle().Foreground(theme.ColorRed).Render(symbol)
	}
	return fmt.Sprintf("%s %s  %s", styled, label, theme.DimmedStyle.Render(status))
}

func (m Model) panelWidth() int {
	w := m.width - 8
	if w < 40 {
		w = 40
	}
	if w > 90 {
		w = 90
	}
	return w
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
