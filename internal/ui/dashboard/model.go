package dashboard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/notify"
	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// recentLimit is how many notifications the activity feed shows.
const recentLimit = 6

// Model is the dashboard view: order counters, stream health, and the
// latest notifications. It renders whatever the application pushes in.
type Model struct {
	stats    model.DashboardStats
	snapshot notify.Snapshot
	conn     notify.ChannelStatus
	width    int
	height   int
}

// New creates a new dashboard model.
func New(width, height int) Model {
	return Model{width: width, height: height}
}

// SetOrders recomputes the counters from the current order list.
func (m *Model) SetOrders(orders []model.Order) {
	m.stats = model.StatsFromOrders(orders)
}

// SetSnapshot updates the activity feed.
func (m *Model) SetSnapshot(snap notify.Snapshot) {
	m.snapshot = snap
}

// SetConnection updates the stream health line.
func (m *Model) SetConnection(status notify.ChannelStatus) {
	m.conn = status
}

// Init is a no-op; the application pushes state in.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the dashboard has no interactive elements.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	cards := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderCard("Total", m.stats.TotalOrders, theme.ColorBlue),
		m.renderCard("Processing", m.stats.SubmittedOrders, theme.ColorYellow),
		m.renderCard("Completed", m.stats.CompletedOrders, theme.ColorGreen),
		m.renderCard("Failed", m.stats.FailedOrders, theme.ColorRed),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		cards,
		m.renderStreamHealth(),
		m.renderActivity(),
	)
}

// renderCard draws a single counter card.
func (m Model) renderCard(label string, count int, color lipgloss.AdaptiveColor) string {
	countStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(color)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		countStyle.Render(fmt.Sprintf("%d", count)),
		theme.DimmedStyle.Render(label),
	)

	return theme.PanelStyle.
		Width(m.cardWidth()).
		Align(lipgloss.Center).
		Render(content)
}

// renderStreamHealth draws a one-line summary of the live channel.
func (m Model) renderStreamHealth() string {
	var text string
	style := theme.DimmedStyle

	switch m.conn.State {
	case notify.StateConnected:
		text = "live updates connected"
		style = lipgloss.NewStyle().Foreground(theme.ColorGreen)
	case notify.StateConnecting:
		text = "connecting to live updates..."
	case notify.StateReconnecting:
		text = fmt.Sprintf("reconnecting (attempt %d)...", m.conn.Attempt)
		style = lipgloss.NewStyle().Foreground(theme.ColorYellow)
	case notify.StateFailed:
		text = "live updates unavailable, press R to retry"
		style = theme.ErrorStyle
	default:
		text = "live updates off"
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(style.Render("⇅ " + text))
}

// renderActivity draws the latest notifications.
func (m Model) renderActivity() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render("Recent Activity")

	lines := []string{title}
	if len(m.snapshot.Notifications) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("Nothing yet."))
	}

	for i, n := range m.snapshot.Notifications {
		if i >= recentLimit {
			break
		}
		icon := theme.NotificationStyle(n.Type).Render(theme.NotificationIcon(n.Type))
		line := fmt.Sprintf("%s %s", icon, n.Message)
		if n.IsRead {
			line = theme.DimmedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// cardWidth splits the row into four equal cards.
func (m Model) cardWidth() int {
	w := (m.width - 8) / 4
	if w < 12 {
		w = 12
	}
	return w
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
