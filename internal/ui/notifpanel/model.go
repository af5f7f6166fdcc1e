package notifpanel

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/keys"
	"github.com/swiftlogistics/swifttrack/internal/notify"
	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// MarkReadMsg asks the application to mark one notification as read.
type MarkReadMsg struct {
	ID int64
}

// MarkAllReadMsg asks the application to mark every notification as read.
type MarkAllReadMsg struct{}

// OpenOrderMsg asks the application to open the order a notification
// refers to.
type OpenOrderMsg struct {
	OrderID string
}

// CloseMsg is dispatched when the user leaves the inbox.
type CloseMsg struct{}

// Model is the notification inbox view. It renders whatever snapshot
// the application last handed it; all mutations go back up as messages.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	snapshot    notify.Snapshot
	unreadOnly  bool
	width       int
	height      int
}

// New creates a new inbox model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetSnapshot replaces the rendered notifications with a new snapshot.
// The selection is preserved by index where possible.
func (m *Model) SetSnapshot(snap notify.Snapshot) tea.Cmd {
	m.snapshot = snap
	return m.rebuildItems()
}

// rebuildItems refreshes the list items from the current snapshot,
// honoring the unread-only filter.
func (m *Model) rebuildItems() tea.Cmd {
	var items []list.Item
	for _, n := range m.snapshot.Notifications {
		if m.unreadOnly && n.IsRead {
			continue
		}
		items = append(items, NotificationItem{Notification: n})
	}

	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return cmd
}

// Init is a no-op; the application pushes snapshots in.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }

		case key.Matches(msg, m.keys.ToggleUnread):
			m.unreadOnly = !m.unreadOnly
			return m, m.rebuildItems()

		case key.Matches(msg, m.keys.MarkRead):
			item, ok := m.list.SelectedItem().(NotificationItem)
			if !ok || item.Notification.IsRead {
				return m, nil
			}
			id := item.Notification.ID
			return m, func() tea.Msg { return MarkReadMsg{ID: id} }

		case key.Matches(msg, m.keys.MarkAllRead):
			if m.snapshot.UnreadCount == 0 {
				return m, nil
			}
			return m, func() tea.Msg { return MarkAllReadMsg{} }

		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(NotificationItem)
			if !ok {
				return m, nil
			}
			n := item.Notification

			// Opening a notification reads it.
			var cmds []tea.Cmd
			if !n.IsRead {
				id := n.ID
				cmds = append(cmds, func() tea.Msg { return MarkReadMsg{ID: id} })
			}
			if n.OrderID != "" {
				orderID := n.OrderID
				cmds = append(cmds, func() tea.Msg { return OpenOrderMsg{OrderID: orderID} })
			}
			return m, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox with a summary footer.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	footer := theme.HelpStyle.Render(m.footerText())
	return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), footer)
}

// footerText summarizes the unread count and the active filter.
func (m Model) footerText() string {
	text := fmt.Sprintf(" %d unread", m.snapshot.UnreadCount)
	if m.unreadOnly {
		text += " | showing unread only"
	}
	return text
}

// renderEmptyState shows guidance text when the inbox has nothing to show.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.unreadOnly && len(m.snapshot.Notifications) > 0 {
		return style.Render("All caught up.\nPress u to show read notifications.")
	}
	return style.Render("No notifications yet.")
}

// UnreadCount returns the unread count of the last snapshot.
func (m Model) UnreadCount() int {
	return m.snapshot.UnreadCount
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
