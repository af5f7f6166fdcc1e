package notify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/swiftlogistics/swifttrack/internal/logging"
	"github.com/swiftlogistics/swifttrack/internal/model"
)

// Topics the channel subscribes to on every (re)connect.
const (
	topicNotifications = "/topic/notifications"
	topicUnreadCount   = "/topic/notifications/count"
)

// ConnectionState describes the live channel's lifecycle state.
type ConnectionState int

const (
	// StateDisconnected: no connection and none pending. The initial
	// state, and the state after an explicit Disconnect.
	StateDisconnected ConnectionState = iota

	// StateConnecting: dialing and handshaking.
	StateConnecting

	// StateConnected: handshake complete, subscriptions active, frames
	// flowing.
	StateConnected

	// StateReconnecting: the transport dropped; a reconnect attempt is
	// scheduled after a fixed delay.
	StateReconnecting

	// StateFailed: the handshake was rejected outright. No automatic
	// retry; a manual Connect is required to leave this state.
	StateFailed
)

// String returns a human-readable state name.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChannelStatus is a point-in-time snapshot of the channel state,
// including reconnect progress while in StateReconnecting.
type ChannelStatus struct {
	State     ConnectionState
	Attempt   int
	NextDelay time.Duration
}

// ChannelCallbacks are the handlers the channel invokes for inbound
// frames and state transitions. Nil handlers are skipped. No handler is
// ever invoked after Disconnect returns.
type ChannelCallbacks struct {
	OnNotification func(model.Notification)
	OnUnreadCount  func(int)
	OnConnect      func()
	OnDisconnect   func()
	OnError        func(error)
}

// ChannelConfig configures the live channel.
type ChannelConfig struct {
	// URL is the websocket endpoint of the notification service
	// (e.g., ws://localhost:8083/ws).
	URL string

	// HeartbeatInterval is the heartbeat cadence offered in each
	// direction. Defaults to 4 seconds.
	HeartbeatInterval time.Duration

	// ReconnectDelay is the fixed delay between reconnect attempts.
	// Defaults to 5 seconds.
	ReconnectDelay time.Duration
}

// Default channel tuning, matching the backend broker's expectations.
const (
	defaultHeartbeatInterval = 4 * time.Second
	defaultReconnectDelay    = 5 * time.Second
	handshakeTimeout         = 10 * time.Second
	writeTimeout             = 10 * time.Second

	// The watchdog tolerates missing this many heartbeat intervals of
	// inbound traffic before declaring the transport dead.
	heartbeatGrace = 2.5
)

// Channel maintains exactly one logical subscription to the notification
// service's streaming endpoint. It owns the websocket connection, the
// STOMP session on top of it, the heartbeat watchdog, and a fixed-delay
// reconnect loop for transport failures.
type Channel struct {
	cfg       ChannelConfig
	callbacks ChannelCallbacks
	dialer    *websocket.Dialer
	clientID  string

	mu        sync.Mutex
	state     ConnectionState
	attempt   int
	gen       uint64 // session generation; bumped by Connect/Disconnect
	conn      *websocket.Conn
	retry     *time.Timer
	wg        sync.WaitGroup
}

// NewChannel creates a live channel for the given endpoint and handlers.
// The channel starts disconnected; call Connect to bring it up.
func NewChannel(cfg ChannelConfig, callbacks ChannelCallbacks) *Channel {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	return &Channel{
		cfg:       cfg,
		callbacks: callbacks,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
		clientID: uuid.NewString(),
		state:    StateDisconnected,
	}
}

// Status returns the current connection status.
func (c *Channel) Status() ChannelStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := ChannelStatus{State: c.state}
	if c.state == StateReconnecting {
		st.Attempt = c.attempt
		st.NextDelay = c.cfg.ReconnectDelay
	}
	return st
}

// Connect starts a new session. It is a no-op while a session is already
// connecting or connected; from any other state (including StateFailed)
// it begins a fresh attempt.
func (c *Channel) Connect() {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return
	}
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.gen++
	gen := c.gen
	c.state = StateConnecting
	c.attempt = 0
	c.wg.Add(1)
	c.mu.Unlock()

	go c.runSession(gen)
}

// Disconnect tears the channel down deterministically: it cancels any
// pending reconnect timer, closes the active connection, and waits for
// the session goroutines to finish. No callback fires after it returns.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.gen++ // invalidate the running session
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.attempt = 0
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.wg.Wait()
}

// runSession dials, handshakes, and pumps frames until the connection
// dies or the session generation is invalidated. On recoverable failure
// it schedules the next attempt itself.
func (c *Channel) runSession(gen uint64) {
	defer c.wg.Done()

	conn, err := c.dial()
	if err != nil {
		c.sessionFailed(gen, err)
		return
	}

	sendEvery, expectWithin, err := c.handshake(gen, conn)
	if err != nil {
		_ = conn.Close()
		if IsAuthRejected(err) {
			c.handshakeRejected(gen, err)
			return
		}
		c.sessionFailed(gen, err)
		return
	}

	if !c.adopt(gen, conn) {
		_ = conn.Close()
		return
	}

	if err := c.subscribe(conn); err != nil {
		_ = conn.Close()
		c.connectionLost(gen, err)
		return
	}

	// Became Connected: reset the attempt counter and notify.
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.state = StateConnected
	c.attempt = 0
	c.mu.Unlock()
	logging.L().Infow("notification channel connected", "url", c.cfg.URL)
	c.deliver(gen, func(cb ChannelCallbacks) {
		if cb.OnConnect != nil {
			cb.OnConnect()
		}
	})

	var writeMu sync.Mutex
	stopHeartbeat := c.startHeartbeat(gen, conn, &writeMu, sendEvery)
	defer stopHeartbeat()

	c.readLoop(gen, conn, expectWithin)
}

// dial opens the websocket connection.
func (c *Channel) dial() (*websocket.Conn, error) {
	conn, _, err := c.dialer.Dial(c.cfg.URL, nil)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("dialing %s: %w", c.cfg.URL, err)}
	}
	return conn, nil
}

// handshake performs the STOMP CONNECT/CONNECTED exchange and negotiates
// heartbeats. It returns the effective outgoing heartbeat interval and
// the inbound liveness window.
func (c *Channel) handshake(gen uint64, conn *websocket.Conn) (sendEvery, expectWithin time.Duration, err error) {
	offerMs := int(c.cfg.HeartbeatInterval / time.Millisecond)
	connect := &frame{command: cmdConnect}
	connect.addHeader("accept-version", "1.2")
	connect.addHeader("heart-beat", fmt.Sprintf("%d,%d", offerMs, offerMs))
	connect.addHeader("client-id", c.clientID)

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, marshalFrame(connect)); err != nil {
		return 0, 0, &ConnectionError{Err: fmt.Errorf("sending CONNECT: %w", err)}
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	reply, err := c.readFrame(conn)
	if err != nil {
		return 0, 0, &ConnectionError{Err: fmt.Errorf("awaiting CONNECTED: %w", err)}
	}

	switch reply.command {
	case cmdConnected:
		// Negotiated heartbeat: send at the slower of what we offered
		// and what the server expects; expect traffic at the slower of
		// what we asked for and what the server sends.
		sendEvery = c.cfg.HeartbeatInterval
		expectWithin = c.cfg.HeartbeatInterval
		if hb, ok := reply.header("heart-beat"); ok {
			serverSendMs, serverExpectMs, err := parseHeartbeat(hb)
			if err != nil {
				return 0, 0, &ConnectionError{Err: err}
			}
			sendEvery = negotiateInterval(offerMs, serverExpectMs)
			expectWithin = negotiateInterval(offerMs, serverSendMs)
		}
		return sendEvery, expectWithin, nil

	case cmdError:
		reason, _ := reply.header("message")
		if reason == "" {
			reason = strings.TrimSpace(string(reply.body))
		}
		return 0, 0, &AuthRejectedError{Reason: reason}

	default:
		return 0, 0, &ConnectionError{
			Err: fmt.Errorf("unexpected %s frame during handshake", reply.command),
		}
	}
}

// negotiateInterval combines our offered interval with the peer's, both
// in milliseconds, taking the slower of the two. A zero on either side
// disables the direction.
func negotiateInterval(oursMs, theirsMs int) time.Duration {
	if oursMs == 0 || theirsMs == 0 {
		return 0
	}
	ms := oursMs
	if theirsMs > ms {
		ms = theirsMs
	}
	return time.Duration(ms) * time.Millisecond
}

// adopt records conn as the session's active connection unless the
// session was invalidated in the meantime.
func (c *Channel) adopt(gen uint64, conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.conn = conn
	return true
}

// subscribe registers the two topic subscriptions. Subscriptions are
// per-connection state on the broker side, so this runs exactly once
// per (re)connect.
func (c *Channel) subscribe(conn *websocket.Conn) error {
	for i, destination := range []string{topicNotifications, topicUnreadCount} {
		sub := &frame{command: cmdSubscribe}
		sub.addHeader("id", "sub-"+strconv.Itoa(i))
		sub.addHeader("destination", destination)
		sub.addHeader("ack", "auto")

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, marshalFrame(sub)); err != nil {
			return &ConnectionError{Err: fmt.Errorf("subscribing to %s: %w", destination, err)}
		}
	}
	return nil
}

// startHeartbeat launches the outgoing heartbeat ticker. The returned
// stop function is idempotent and safe to defer.
func (c *Channel) startHeartbeat(gen uint64, conn *websocket.Conn, writeMu *sync.Mutex, every time.Duration) func() {
	if every <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var once sync.Once
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				err := conn.WriteMessage(websocket.TextMessage, heartbeatFrame)
				writeMu.Unlock()
				if err != nil {
					// The read loop will observe the dead connection
					// and drive the reconnect.
					return
				}
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// readLoop pumps inbound frames until the connection dies. Every inbound
// websocket message, heartbeats included, feeds the liveness watchdog.
func (c *Channel) readLoop(gen uint64, conn *websocket.Conn, expectWithin time.Duration) {
	deadline := func() {
		if expectWithin > 0 {
			grace := time.Duration(float64(expectWithin) * heartbeatGrace)
			_ = conn.SetReadDeadline(time.Now().Add(grace))
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}
	}
	deadline()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			c.connectionLost(gen, &ConnectionError{Err: err})
			return
		}
		deadline()

		f, err := parseFrame(data)
		if err != nil {
			// One malformed frame never takes the connection down.
			c.reportError(gen, err)
			continue
		}
		if f == nil {
			continue // heartbeat
		}

		switch f.command {
		case cmdMessage:
			c.dispatchMessage(gen, f)
		case cmdError:
			// The broker closes the connection after an ERROR frame;
			// report it and let the read loop observe the close.
			reason, _ := f.header("message")
			c.reportError(gen, &ConnectionError{Err: fmt.Errorf("broker error: %s", reason)})
		case cmdReceipt:
			// Not requested; ignore.
		default:
			c.reportError(gen, &DecodeError{
				What: "stomp frame",
				Err:  fmt.Errorf("unexpected command %q", f.command),
			})
		}
	}
}

// dispatchMessage decodes a MESSAGE frame and invokes the matching
// callback. Decode failures are isolated: they are reported through
// OnError and the connection survives.
func (c *Channel) dispatchMessage(gen uint64, f *frame) {
	destination, _ := f.header("destination")
	switch destination {
	case topicNotifications:
		var n model.Notification
		if err := json.Unmarshal(f.body, &n); err != nil {
			c.reportError(gen, &DecodeError{What: "notification frame", Err: err})
			return
		}
		c.deliver(gen, func(cb ChannelCallbacks) {
			if cb.OnNotification != nil {
				cb.OnNotification(n)
			}
		})

	case topicUnreadCount:
		count, err := strconv.Atoi(strings.TrimSpace(string(f.body)))
		if err != nil {
			c.reportError(gen, &DecodeError{What: "unread count frame", Err: err})
			return
		}
		c.deliver(gen, func(cb ChannelCallbacks) {
			if cb.OnUnreadCount != nil {
				cb.OnUnreadCount(count)
			}
		})

	default:
		c.reportError(gen, &DecodeError{
			What: "message frame",
			Err:  fmt.Errorf("unknown destination %q", destination),
		})
	}
}

// connectionLost handles a transport-level failure of a connected
// session: it notifies, moves to StateReconnecting, and arms the fixed
// reconnect delay.
func (c *Channel) connectionLost(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		// Deliberate teardown; stay silent.
		c.mu.Unlock()
		return
	}
	wasConnected := c.state == StateConnected
	c.conn = nil
	c.state = StateReconnecting
	c.attempt++
	attempt := c.attempt
	c.armRetry(gen)
	c.mu.Unlock()

	logging.L().Warnw("notification channel lost", "error", cause, "attempt", attempt)
	c.deliver(gen, func(cb ChannelCallbacks) {
		if wasConnected && cb.OnDisconnect != nil {
			cb.OnDisconnect()
		}
		if cb.OnError != nil {
			cb.OnError(cause)
		}
	})
}

// sessionFailed handles a recoverable failure before the session ever
// connected (dial error, broken handshake). Same reconnect policy as a
// lost connection, without the OnDisconnect notification.
func (c *Channel) sessionFailed(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateReconnecting
	c.attempt++
	attempt := c.attempt
	c.armRetry(gen)
	c.mu.Unlock()

	logging.L().Warnw("notification channel connect failed", "error", cause, "attempt", attempt)
	c.reportError(gen, cause)
}

// handshakeRejected handles an unrecoverable handshake rejection: the
// channel moves to StateFailed and does not retry on its own. Retrying
// against a server that is actively rejecting us would be a silent
// storm; the user has to reconnect deliberately.
func (c *Channel) handshakeRejected(gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateFailed
	c.mu.Unlock()

	logging.L().Errorw("notification channel rejected", "error", cause)
	c.reportError(gen, cause)
}

// armRetry schedules the next connect attempt. Caller holds c.mu.
func (c *Channel) armRetry(gen uint64) {
	c.retry = time.AfterFunc(c.cfg.ReconnectDelay, func() {
		c.mu.Lock()
		if gen != c.gen || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		c.retry = nil
		c.state = StateConnecting
		c.wg.Add(1)
		c.mu.Unlock()
		go c.runSession(gen)
	})
}

// deliver invokes fn with the callbacks unless the session generation
// has been invalidated by Disconnect or a newer Connect.
func (c *Channel) deliver(gen uint64, fn func(ChannelCallbacks)) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	cb := c.callbacks
	c.mu.Unlock()
	fn(cb)
}

// reportError forwards an error to OnError, generation-gated.
func (c *Channel) reportError(gen uint64, err error) {
	c.deliver(gen, func(cb ChannelCallbacks) {
		if cb.OnError != nil {
			cb.OnError(err)
		}
	})
}

// readFrame reads one websocket message and parses it as a STOMP frame,
// skipping interleaved heartbeats.
func (c *Channel) readFrame(conn *websocket.Conn) (*frame, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		f, err := parseFrame(data)
		if err != nil {
			return nil, err
		}
		if f != nil {
			return f, nil
		}
	}
}
