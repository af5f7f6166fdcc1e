package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/swiftlogistics/swifttrack/internal/auth"
	"github.com/swiftlogistics/swifttrack/internal/keys"
	"github.com/swiftlogistics/swifttrack/internal/logging"
	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/notify"
	"github.com/swiftlogistics/swifttrack/internal/order"
	"github.com/swiftlogistics/swifttrack/internal/store"
	"github.com/swiftlogistics/swifttrack/internal/ui"
	"github.com/swiftlogistics/swifttrack/internal/ui/dashboard"
	"github.com/swiftlogistics/swifttrack/internal/ui/helpview"
	"github.com/swiftlogistics/swifttrack/internal/ui/login"
	"github.com/swiftlogistics/swifttrack/internal/ui/notifpanel"
	"github.com/swiftlogistics/swifttrack/internal/ui/orderdetail"
	"github.com/swiftlogistics/swifttrack/internal/ui/orderform"
	"github.com/swiftlogistics/swifttrack/internal/ui/orderlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewOrders
	ViewOrderDetail
	ViewOrderCreate
	ViewInbox
	ViewHelp
)

// requestTimeout bounds every gateway and store round trip issued from
// the UI.
const requestTimeout = 30 * time.Second

// snapshotMsg carries a new inbox snapshot from the notification center.
type snapshotMsg struct {
	snapshot notify.Snapshot
}

// notifyErrMsg carries a store or stream error from the notification
// center.
type notifyErrMsg struct {
	err error
}

// statusTickMsg refreshes the connection indicator in the header.
type statusTickMsg struct{}

// loginResultMsg carries the outcome of a login or signup attempt.
type loginResultMsg struct {
	user *model.User
	err  error
}

// ordersRefreshedMsg carries the outcome of a gateway order fetch.
type ordersRefreshedMsg struct {
	orders    []model.Order
	fromCache bool
	err       error
}

// orderCreatedMsg carries the gateway's acknowledgement of a new order.
type orderCreatedMsg struct {
	result *order.CreateResult
	err    error
}

// orderDetailMsg carries a single order loaded for the detail view.
type orderDetailMsg struct {
	order *model.Order
}

// Model is the root Bubble Tea model that manages view routing, layout,
// session state, and the bridge to the notification center.
type Model struct {
	cfg          *model.AppConfig
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	cache        store.Store
	keys         *keys.KeyMap

	user        *model.User
	orderClient *order.Client
	center      *notify.Center

	// snapshotCh and errCh bridge the center's callbacks onto the
	// Bubble Tea message loop.
	snapshotCh chan notify.Snapshot
	errCh      chan error
	unsubs     []func()

	loginView    login.Model
	dashView     dashboard.Model
	orderList    orderlist.Model
	orderDetail  orderdetail.Model
	orderForm    orderform.Model
	inboxView    notifpanel.Model
	helpView     helpview.Model

	orders        []model.Order
	unreadCount   int
	statusMessage string
	ready         bool
}

// New creates a new root application model. The session user may be
// nil, in which case the login screen is shown first.
func New(cfg *model.AppConfig, cache store.Store, user *model.User) Model {
	k := keys.DefaultKeyMap()

	m := Model{
		cfg:         cfg,
		currentView: ViewLogin,
		cache:       cache,
		keys:        k,
		snapshotCh:  make(chan notify.Snapshot, 16),
		errCh:       make(chan error, 16),
		loginView:   login.New(80, 24),
		dashView:    dashboard.New(80, 24),
		orderList:   orderlist.New(cache, k, 80, 24),
		orderDetail: orderdetail.New(k, 80, 24),
		orderForm:   orderform.New(80, 24),
		inboxView:   notifpanel.New(k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}

	if user != nil {
		m.establishSession(user)
		m.currentView = ViewDashboard
	}

	return m
}

// establishSession wires up the per-user clients and the notification
// center for an authenticated user.
func (m *Model) establishSession(user *model.User) {
	m.user = user
	m.orderClient = order.NewClient(m.cfg.Services.Orders, user.Token)

	storeClient := notify.NewClient(m.cfg.Services.Notifications)
	m.center = notify.NewCenter(storeClient, notify.ChannelConfig{
		URL:               m.cfg.Services.WebSocket,
		HeartbeatInterval: time.Duration(m.cfg.Notifications.HeartbeatIntervalMs) * time.Millisecond,
		ReconnectDelay:    time.Duration(m.cfg.Notifications.ReconnectDelayMs) * time.Millisecond,
	})

	snapshotCh := m.snapshotCh
	errCh := m.errCh
	m.unsubs = append(m.unsubs,
		m.center.Subscribe(func(snap notify.Snapshot) {
			select {
			case snapshotCh <- snap:
			default:
				// Drop when the UI is behind; the next snapshot
				// supersedes this one anyway.
			}
		}),
		m.center.SubscribeErrors(func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}),
	)

	m.center.Start()
	logging.L().Infow("session established", "user", user.ID)
}

// teardownSession stops the notification center and clears per-user
// state.
func (m *Model) teardownSession() {
	if m.center != nil {
		for _, unsub := range m.unsubs {
			unsub()
		}
		m.unsubs = nil
		m.center.Stop()
		m.center = nil
	}
	m.user = nil
	m.orderClient = nil
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.statusTick()}

	if m.user == nil {
		cmds = append(cmds, m.loginView.Start(""))
		return tea.Batch(cmds...)
	}

	cmds = append(cmds,
		m.orderList.Init(),
		m.refreshOrders(),
		m.refreshInbox(),
		m.waitForSnapshot(),
		m.waitForNotifyError(),
	)
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.dashView.SetSize(w, h)
		m.orderList.SetSize(w, h)
		m.orderDetail.SetSize(w, h)
		m.orderForm.SetSize(w, h)
		m.inboxView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to the active view so huh forms can lay out.
		return m.updateActiveView(msg)

	case statusTickMsg:
		// Re-render so the header connection indicator stays current.
		return m, m.statusTick()

	case snapshotMsg:
		m.unreadCount = msg.snapshot.UnreadCount
		m.dashView.SetSnapshot(msg.snapshot)
		cmd := m.inboxView.SetSnapshot(msg.snapshot)
		return m, tea.Batch(cmd, m.waitForSnapshot())

	case notifyErrMsg:
		m.statusMessage = fmt.Sprintf("notification store: %v", msg.err)
		logging.L().Warnw("notification store error", "err", msg.err)
		return m, m.waitForNotifyError()

	case login.SubmittedMsg:
		return m, m.attemptLogin(msg)

	case loginResultMsg:
		if msg.err != nil {
			errText := "Login failed. Check the auth service and try again."
			if auth.IsLoginError(msg.err) {
				errText = msg.err.Error()
			}
			return m, m.loginView.Start(errText)
		}
		if err := auth.SaveSession(msg.user); err != nil {
			logging.L().Warnw("saving session", "err", err)
		}
		m.establishSession(msg.user)
		m.currentView = ViewDashboard
		return m, tea.Batch(
			m.orderList.Init(),
			m.refreshOrders(),
			m.refreshInbox(),
			m.waitForSnapshot(),
			m.waitForNotifyError(),
		)

	case ordersRefreshedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("order gateway: %v", msg.err)
			if order.IsUnauthorized(msg.err) {
				m.statusMessage = "Session expired. Press ctrl+l to log in again."
			}
		} else if !msg.fromCache {
			m.statusMessage = ""
		}
		m.orders = msg.orders
		m.dashView.SetOrders(msg.orders)
		return m, m.orderList.LoadOrders()

	case orderlist.SelectedOrderMsg:
		m.previousView = m.currentView
		m.currentView = ViewOrderDetail
		m.orderDetail.SetLoading(true)
		return m, m.loadOrderDetail(msg.OrderID)

	case orderDetailMsg:
		m.orderDetail.SetOrder(msg.order)
		return m, nil

	case orderdetail.BackMsg:
		m.currentView = m.previousView
		if m.currentView == ViewOrderDetail {
			m.currentView = ViewOrders
		}
		return m, nil

	case orderform.OrderSubmittedMsg:
		m.currentView = ViewOrders
		return m, m.createOrder(msg.Form)

	case orderform.OrderFormCancelMsg:
		m.currentView = ViewOrders
		return m, nil

	case orderCreatedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("order gateway: %v", msg.err)
			return m, nil
		}
		m.statusMessage = msg.result.Message
		return m, m.refreshOrders()

	case notifpanel.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case notifpanel.MarkAllReadMsg:
		return m, m.markAllRead()

	case notifpanel.OpenOrderMsg:
		id, err := strconv.ParseInt(msg.OrderID, 10, 64)
		if err != nil {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewOrderDetail
		m.orderDetail.SetLoading(true)
		return m, m.loadOrderDetail(id)

	case notifpanel.CloseMsg:
		m.currentView = ViewDashboard
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the focused
// view. Text-entry views only honor ctrl+c so typing is not hijacked.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardownSession()
		return true, m, tea.Quit
	}

	inForm := m.currentView == ViewLogin ||
		m.currentView == ViewOrderCreate ||
		(m.currentView == ViewOrders && m.orderList.Searching())
	if inForm {
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewDashboard || m.currentView == ViewOrders {
			m.teardownSession()
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "d":
		if m.currentView == ViewOrders || m.currentView == ViewInbox {
			m.currentView = ViewDashboard
			return true, m, nil
		}

	case "o":
		if m.currentView == ViewDashboard || m.currentView == ViewInbox {
			m.currentView = ViewOrders
			return true, m, m.orderList.LoadOrders()
		}

	case "i":
		if m.currentView == ViewDashboard || m.currentView == ViewOrders {
			m.previousView = m.currentView
			m.currentView = ViewInbox
			return true, m, nil
		}

	case "n":
		if m.currentView == ViewDashboard || m.currentView == ViewOrders {
			m.previousView = m.currentView
			m.currentView = ViewOrderCreate
			return true, m, m.orderForm.Start()
		}

	case "r":
		if m.centerReady() {
			return true, m, tea.Batch(m.refreshOrders(), m.refreshInbox())
		}

	case "R":
		if m.centerReady() {
			m.center.Reconnect()
			return true, m, nil
		}

	case "ctrl+l":
		m.teardownSession()
		if err := auth.ClearSession(); err != nil {
			logging.L().Warnw("clearing session", "err", err)
		}
		m.currentView = ViewLogin
		m.statusMessage = ""
		return true, m, m.loginView.Start("")
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashView, cmd = m.dashView.Update(msg)
	case ViewOrders:
		m.orderList, cmd = m.orderList.Update(msg)
	case ViewOrderDetail:
		m.orderDetail, cmd = m.orderDetail.Update(msg)
	case ViewOrderCreate:
		m.orderForm, cmd = m.orderForm.Update(msg)
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.currentView == ViewLogin {
		return m.loginView.View()
	}

	headerTitle := "SwiftTrack"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("SwiftTrack [%d new]", m.unreadCount)
	}

	header := m.layout.RenderHeader(headerTitle, m.connStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		if m.centerReady() {
			m.dashView.SetConnection(m.center.ConnectionStatus())
		}
		return m.dashView.View()
	case ViewOrders:
		return m.orderList.View()
	case ViewOrderDetail:
		return m.orderDetail.View()
	case ViewOrderCreate:
		return m.orderForm.View()
	case ViewInbox:
		return m.inboxView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// connStatus summarizes the live channel for the header. Transient
// reconnects are deliberately quiet; only terminal failure is loud.
func (m Model) connStatus() string {
	if !m.centerReady() {
		return ""
	}

	switch m.center.ConnectionStatus().State {
	case notify.StateConnected:
		return "● live"
	case notify.StateConnecting, notify.StateReconnecting:
		return "○ connecting"
	case notify.StateFailed:
		return "✗ offline (R to retry)"
	default:
		return "○ idle"
	}
}

// statusLine returns the status bar text: a pending message when one
// exists, otherwise context-sensitive key hints.
func (m Model) statusLine() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewDashboard:
		return "o orders | i inbox | n new order | r refresh | ? help | q quit"
	case ViewOrders:
		return "enter detail | n new | / search | 1/2/3 filter | tab sort | i inbox | q quit"
	case ViewOrderDetail:
		return "esc back"
	case ViewOrderCreate:
		return "enter submit | esc cancel"
	case ViewInbox:
		return "enter open | m mark read | M mark all | u unread only | esc back"
	case ViewHelp:
		return "? close help"
	default:
		return ""
	}
}

// centerReady reports whether a notification center is wired up.
func (m Model) centerReady() bool {
	return m.center != nil
}

// statusTick re-renders the UI every couple of seconds so the header
// reflects connection state changes that produce no messages.
func (m Model) statusTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

// waitForSnapshot returns a tea.Cmd that waits for the next inbox
// snapshot from the notification center.
func (m Model) waitForSnapshot() tea.Cmd {
	ch := m.snapshotCh
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snapshot: snap}
	}
}

// waitForNotifyError returns a tea.Cmd that waits for the next error
// from the notification center.
func (m Model) waitForNotifyError() tea.Cmd {
	ch := m.errCh
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return notifyErrMsg{err: err}
	}
}

// attemptLogin returns a tea.Cmd that calls the auth service.
func (m Model) attemptLogin(msg login.SubmittedMsg) tea.Cmd {
	client := auth.NewClient(m.cfg.Services.Auth)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			user *model.User
			err  error
		)
		if msg.Signup {
			user, err = client.Signup(ctx, msg.Name, msg.Email, msg.Password)
		} else {
			user, err = client.Login(ctx, msg.Email, msg.Password)
		}
		return loginResultMsg{user: user, err: err}
	}
}

// refreshInbox returns a tea.Cmd that reloads the notification
// snapshot from the backing store.
func (m Model) refreshInbox() tea.Cmd {
	c := m.center
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := c.Refresh(ctx); err != nil {
			logging.L().Warnw("inbox refresh", "err", err)
		}
		return nil
	}
}

// refreshOrders returns a tea.Cmd that fetches orders from the gateway
// and updates the local cache. On failure it falls back to the cache.
func (m Model) refreshOrders() tea.Cmd {
	client := m.orderClient
	cache := m.cache
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		orders, err := client.List(ctx)
		if err != nil {
			cached, cacheErr := cache.GetOrders(ctx, store.OrderFilter{
				SortBy:   "created_at",
				SortDesc: true,
			})
			if cacheErr != nil {
				logging.L().Warnw("order cache read", "err", cacheErr)
			}
			return ordersRefreshedMsg{orders: cached, fromCache: true, err: err}
		}

		if err := cache.UpsertOrders(ctx, orders); err != nil {
			logging.L().Warnw("order cache write", "err", err)
		}
		ids := make([]int64, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		if err := cache.DeleteOrdersNotIn(ctx, ids); err != nil {
			logging.L().Warnw("order cache prune", "err", err)
		}

		return ordersRefreshedMsg{orders: orders}
	}
}

// createOrder returns a tea.Cmd that submits a new order to the
// gateway.
func (m Model) createOrder(form model.OrderForm) tea.Cmd {
	client := m.orderClient
	if client == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := client.Create(ctx, form)
		return orderCreatedMsg{result: result, err: err}
	}
}

// loadOrderDetail returns a tea.Cmd that loads one order, preferring
// the cache and falling back to the gateway.
func (m Model) loadOrderDetail(id int64) tea.Cmd {
	client := m.orderClient
	cache := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if o, err := cache.GetOrderByID(ctx, id); err == nil && o != nil {
			return orderDetailMsg{order: o}
		}
		if client == nil {
			return orderDetailMsg{order: nil}
		}
		o, err := client.Get(ctx, id)
		if err != nil {
			logging.L().Warnw("order detail fetch", "id", id, "err", err)
			return orderDetailMsg{order: nil}
		}
		return orderDetailMsg{order: o}
	}
}

// markRead optimistically marks one notification as read.
func (m Model) markRead(id int64) tea.Cmd {
	c := m.center
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c.RequestMarkRead(ctx, id)
		return nil
	}
}

// markAllRead optimistically marks every notification as read.
func (m Model) markAllRead() tea.Cmd {
	c := m.center
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c.RequestMarkAllRead(ctx)
		return nil
	}
}
