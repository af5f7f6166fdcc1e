package orderlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/keys"
	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/store"
	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// OrdersLoadedMsg is sent when orders have been loaded from the cache.
type OrdersLoadedMsg struct {
	Orders []model.Order
}

// SelectedOrderMsg is sent when a user selects an order to view details.
type SelectedOrderMsg struct {
	OrderID int64
}

// sortModes defines the available sort modes cycled by Tab.
var sortModes = []string{
	"created_at",
	"client_name",
	"status",
	"updated_at",
}

// Model is the order list view component. It reads from the local
// cache; the application refreshes the cache from the gateway.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	filter      store.OrderFilter
	sortIndex   int
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new order list model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Orders"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search orders..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:  l,
		store: s,
		keys:  k,
		filter: store.OrderFilter{
			SortBy:   "created_at",
			SortDesc: true,
		},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of orders.
func (m Model) Init() tea.Cmd {
	return m.LoadOrders()
}

// Update handles messages for the order list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OrdersLoadedMsg:
		items := make([]list.Item, len(msg.Orders))
		for i, o := range msg.Orders {
			items[i] = OrderItem{Order: o}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadOrders()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadOrders()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(OrderItem)
		if !ok {
			return m, nil
		}
		id := item.Order.ID
		return m, func() tea.Msg {
			return SelectedOrderMsg{OrderID: id}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.sortIndex = (m.sortIndex + 1) % len(sortModes)
		m.filter.SortBy = sortModes[m.sortIndex]
		return m, m.LoadOrders()
	}

	switch msg.String() {
	case "1":
		m.toggleStatusFilter(model.OrderStatusSubmitted)
		return m, m.LoadOrders()
	case "2":
		m.toggleStatusFilter(model.OrderStatusCompleted)
		return m, m.LoadOrders()
	case "3":
		m.toggleStatusFilter(model.OrderStatusFailed)
		return m, m.LoadOrders()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggleStatusFilter applies the status filter, or clears it when the
// same status is toggled twice.
func (m *Model) toggleStatusFilter(status string) {
	if m.filter.Status != nil && *m.filter.Status == status {
		m.filter.Status = nil
		return
	}
	m.filter.Status = &status
}

// View renders the order list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no orders are available.
func (m Model) renderEmptyState() string {
	hasFilters := m.filter.Status != nil || m.filter.Query != nil

	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if hasFilters {
		return style.Render("No matching orders.\nTry adjusting your filters.")
	}

	return style.Render("No orders yet.\n\nPress n to create one.")
}

// LoadOrders returns a tea.Cmd that queries the cache with the current
// filter.
func (m Model) LoadOrders() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		orders, err := s.GetOrders(context.Background(), filter)
		if err != nil {
			return OrdersLoadedMsg{Orders: nil}
		}
		return OrdersLoadedMsg{Orders: orders}
	}
}

// Searching reports whether the search input currently has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
