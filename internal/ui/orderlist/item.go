package orderlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/order"
	"github.com/swiftlogistics/swifttrack/internal/theme"
)

// OrderItem wraps a model.Order so it can be used in a bubbles/list.
type OrderItem struct {
	Order model.Order
}

// FilterValue returns the string used for fuzzy filtering.
func (i OrderItem) FilterValue() string { return i.Order.ClientName }

// ItemDelegate implements list.ItemDelegate for rendering order rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single order row: id, status badge, client, the
// CMS/WMS/ROS progress markers, and the destination.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	oi, ok := item.(OrderItem)
	if !ok {
		return
	}

	o := oi.Order
	isSelected := index == m.Index()

	statusBadge := theme.OrderStatusStyle(o.Status).Render(order.StatusLabel(o.Status))

	steps := lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		fmt.Sprintf("[%s%s%s]",
			order.StepSymbol(o.CmsStatus),
			order.StepSymbol(o.WmsStatus),
			order.StepSymbol(o.RosStatus),
		),
	)

	dest := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(o.DeliveryAddress)

	line := fmt.Sprintf("#%-5d %s %s %s  %s", o.ID, statusBadge, steps, o.ClientName, dest)

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
