package notify

import (
	"context"
	"sync"

	"github.com/swiftlogistics/swifttrack/internal/logging"
	"github.com/swiftlogistics/swifttrack/internal/model"
)

// Store is the subset of the notification store client the center needs.
// *Client satisfies it; tests substitute fakes.
type Store interface {
	FetchAll(ctx context.Context) ([]model.Notification, error)
	FetchUnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context) error
}

// liveChannel is the lifecycle surface of the push channel. *Channel
// satisfies it; tests substitute scripted fakes.
type liveChannel interface {
	Connect()
	Disconnect()
	Status() ChannelStatus
}

// channelFactory builds the live channel with the center's callbacks
// wired in. Overridden in tests.
type channelFactory func(ChannelConfig, ChannelCallbacks) liveChannel

// Center is the presentation adapter for the notification subsystem. It
// owns the inbox, feeds it from both the store and the live channel, and
// exposes a subscribe/action contract any UI toolkit can bind to.
//
// User actions mutate the inbox optimistically before the matching store
// call goes out; a store failure is surfaced through the error listener
// but the local change is not reverted; the next snapshot reload is the
// reconciliation point.
type Center struct {
	store      Store
	inbox      *Inbox
	channel    liveChannel
	newChannel channelFactory
	chanCfg    ChannelConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	nextSub   int
	listeners map[int]func(Snapshot)
	errorFns  map[int]func(error)
}

// NewCenter creates a notification center over the given store client
// and channel configuration. Call Start to connect and load the first
// snapshot.
func NewCenter(store Store, chanCfg ChannelConfig) *Center {
	ctx, cancel := context.WithCancel(context.Background())
	return &Center{
		store:   store,
		inbox:   NewInbox(),
		chanCfg: chanCfg,
		newChannel: func(cfg ChannelConfig, cb ChannelCallbacks) liveChannel {
			return NewChannel(cfg, cb)
		},
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[int]func(Snapshot)),
		errorFns:  make(map[int]func(error)),
	}
}

// Subscribe registers a listener invoked with a fresh inbox snapshot on
// every mutation. The returned function cancels the subscription.
func (c *Center) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// SubscribeErrors registers a listener for store-call failures and
// channel errors. The returned function cancels the subscription.
func (c *Center) SubscribeErrors(fn func(error)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.errorFns[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.errorFns, id)
	}
}

// Start connects the live channel and kicks off the initial snapshot
// load. It is a no-op when already started.
func (c *Center) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.channel = c.newChannel(c.chanCfg, ChannelCallbacks{
		OnNotification: c.handlePush,
		OnUnreadCount:  c.handleCountUpdate,
		OnConnect:      c.handleConnect,
		OnError:        c.publishError,
	})
	c.mu.Unlock()

	c.channel.Connect()
}

// Stop tears the center down: it disconnects the channel, cancels any
// in-flight store calls, and waits for internal goroutines. Results of
// store calls that complete after Stop are discarded, never applied.
func (c *Center) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	channel := c.channel
	c.mu.Unlock()

	c.cancel()
	if channel != nil {
		channel.Disconnect()
	}
	c.wg.Wait()
}

// Snapshot returns the current inbox state.
func (c *Center) Snapshot() Snapshot {
	return c.inbox.Snapshot()
}

// ConnectionStatus returns the live channel's current status.
func (c *Center) ConnectionStatus() ChannelStatus {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel == nil {
		return ChannelStatus{State: StateDisconnected}
	}
	return channel.Status()
}

// Reconnect manually restarts the channel, e.g. to leave StateFailed.
func (c *Center) Reconnect() {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	if channel != nil {
		channel.Connect()
	}
}

// Refresh fetches the authoritative notification list and unread count
// and swaps them into the inbox. A push racing the fetch is harmless:
// ingest dedup makes both interleavings converge.
func (c *Center) Refresh(ctx context.Context) error {
	notifications, err := c.store.FetchAll(ctx)
	if err != nil {
		c.publishError(err)
		return err
	}
	count, err := c.store.FetchUnreadCount(ctx)
	if err != nil {
		c.publishError(err)
		return err
	}

	if c.teardownStarted() {
		return context.Canceled
	}
	snap := c.inbox.LoadSnapshot(notifications, count)
	c.publish(snap)
	return nil
}

// RequestMarkRead marks a notification read locally, publishes the
// optimistic state, then mirrors the change to the store. The inbox
// lock is never held across the remote call.
func (c *Center) RequestMarkRead(ctx context.Context, id int64) {
	snap, changed := c.inbox.MarkRead(id)
	if changed {
		c.publish(snap)
	}

	if _, err := c.store.MarkRead(ctx, id); err != nil {
		logging.L().Warnw("mark-read failed", "id", id, "error", err)
		c.publishError(err)
	}
}

// RequestMarkAllRead marks every notification read locally, publishes
// the optimistic state, then mirrors the change to the store.
func (c *Center) RequestMarkAllRead(ctx context.Context) {
	snap, changed := c.inbox.MarkAllRead()
	if changed {
		c.publish(snap)
	}

	if err := c.store.MarkAllRead(ctx); err != nil {
		logging.L().Warnw("mark-all-read failed", "error", err)
		c.publishError(err)
	}
}

// handlePush ingests a live-pushed notification. Duplicate deliveries
// are dropped silently.
func (c *Center) handlePush(n model.Notification) {
	if c.teardownStarted() {
		return
	}
	snap, changed := c.inbox.IngestPush(n)
	if changed {
		c.publish(snap)
	}
}

// handleCountUpdate applies an advisory unread count from the push
// channel.
func (c *Center) handleCountUpdate(count int) {
	if c.teardownStarted() {
		return
	}
	c.publish(c.inbox.ApplyCountUpdate(count))
}

// handleConnect reloads the snapshot in the background on every
// (re)connect, reconciling anything missed while the channel was down.
func (c *Center) handleConnect() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.Refresh(c.ctx)
	}()
}

// teardownStarted reports whether Stop has begun.
func (c *Center) teardownStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// publish delivers a snapshot to every listener. Nothing is delivered
// once teardown has started.
func (c *Center) publish(snap Snapshot) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// publishError delivers an error to every error listener.
func (c *Center) publishError(err error) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	fns := make([]func(error), 0, len(c.errorFns))
	for _, fn := range c.errorFns {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}
