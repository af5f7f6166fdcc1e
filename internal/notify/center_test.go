package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

// fakeStore is a scripted notification store.
type fakeStore struct {
	mu            sync.Mutex
	notifications []model.Notification
	markReadErr   error
	markAllErr    error
	markedRead    []int64
	markedAll     int
}

func (s *fakeStore) FetchAll(ctx context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out, nil
}

func (s *fakeStore) FetchUnreadCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markReadErr != nil {
		return nil, s.markReadErr
	}
	s.markedRead = append(s.markedRead, id)
	n := makeNotification(id, true)
	return &n, nil
}

func (s *fakeStore) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markAllErr != nil {
		return s.markAllErr
	}
	s.markedAll++
	return nil
}

// fakeChannel records lifecycle calls and hands the callbacks back to
// the test so it can play the broker.
type fakeChannel struct {
	mu          sync.Mutex
	callbacks   ChannelCallbacks
	connects    int
	disconnects int
	state       ConnectionState
}

func (f *fakeChannel) Connect() {
	f.mu.Lock()
	f.connects++
	f.state = StateConnected
	f.mu.Unlock()
}

func (f *fakeChannel) Disconnect() {
	f.mu.Lock()
	f.disconnects++
	f.state = StateDisconnected
	f.mu.Unlock()
}

func (f *fakeChannel) Status() ChannelStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ChannelStatus{State: f.state}
}

func (f *fakeChannel) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func (f *fakeChannel) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

// newTestCenter wires a center to a fake store and fake channel.
func newTestCenter(t *testing.T, store *fakeStore) (*Center, *fakeChannel) {
	t.Helper()
	fc := &fakeChannel{}
	c := NewCenter(store, ChannelConfig{URL: "ws://test"})
	c.newChannel = func(cfg ChannelConfig, cb ChannelCallbacks) liveChannel {
		fc.callbacks = cb
		return fc
	}
	t.Cleanup(c.Stop)
	return c, fc
}

func TestCenterRefreshLoadsSnapshot(t *testing.T) {
	store := &fakeStore{notifications: []model.Notification{
		makeNotification(1, false),
		makeNotification(2, true),
	}}
	c, _ := newTestCenter(t, store)

	var got []Snapshot
	c.Subscribe(func(s Snapshot) { got = append(got, s) })

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("published %d snapshots, want 1", len(got))
	}
	if got[0].UnreadCount != 1 || len(got[0].Notifications) != 2 {
		t.Fatalf("snapshot = %d entries, unread %d; want 2 entries, unread 1",
			len(got[0].Notifications), got[0].UnreadCount)
	}
}

func TestCenterOptimisticMarkRead(t *testing.T) {
	store := &fakeStore{notifications: []model.Notification{makeNotification(1, false)}}
	c, _ := newTestCenter(t, store)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	var published []Snapshot
	c.Subscribe(func(s Snapshot) { published = append(published, s) })

	c.RequestMarkRead(context.Background(), 1)

	if len(published) != 1 {
		t.Fatalf("published %d snapshots, want 1", len(published))
	}
	if published[0].UnreadCount != 0 {
		t.Fatalf("optimistic unread = %d, want 0", published[0].UnreadCount)
	}
	if len(store.markedRead) != 1 || store.markedRead[0] != 1 {
		t.Fatalf("store received mark-read calls %v, want [1]", store.markedRead)
	}
}

func TestCenterMarkReadFailureKeepsOptimisticState(t *testing.T) {
	store := &fakeStore{notifications: []model.Notification{makeNotification(1, false)}}
	store.markReadErr = errors.New("store down")
	c, _ := newTestCenter(t, store)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	var errs []error
	c.SubscribeErrors(func(err error) { errs = append(errs, err) })

	c.RequestMarkRead(context.Background(), 1)

	// The error surfaced, but the optimistic flip stays: reconciliation
	// happens on the next snapshot reload, not by reverting.
	if len(errs) != 1 {
		t.Fatalf("surfaced %d errors, want 1", len(errs))
	}
	if got := c.Snapshot().UnreadCount; got != 0 {
		t.Fatalf("unread = %d after failed mark-read, want 0 (not reverted)", got)
	}
}

func TestCenterMarkAllRead(t *testing.T) {
	store := &fakeStore{notifications: []model.Notification{
		makeNotification(1, false),
		makeNotification(2, false),
	}}
	c, _ := newTestCenter(t, store)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	c.RequestMarkAllRead(context.Background())

	snap := c.Snapshot()
	if snap.UnreadCount != 0 {
		t.Fatalf("unread = %d, want 0", snap.UnreadCount)
	}
	if store.markedAll != 1 {
		t.Fatalf("store received %d mark-all calls, want 1", store.markedAll)
	}
}

func TestCenterPushThroughChannel(t *testing.T) {
	store := &fakeStore{}
	c, fc := newTestCenter(t, store)
	c.Start()

	if fc.connectCount() != 1 {
		t.Fatalf("channel connected %d times, want 1", fc.connectCount())
	}

	snaps := make(chan Snapshot, 4)
	c.Subscribe(func(s Snapshot) { snaps <- s })

	fc.callbacks.OnNotification(makeNotification(5, false))
	snap := waitFor(t, snaps, "push snapshot")
	if len(snap.Notifications) != 1 || snap.UnreadCount != 1 {
		t.Fatalf("snapshot = %d entries, unread %d; want 1, 1",
			len(snap.Notifications), snap.UnreadCount)
	}

	// Duplicate delivery publishes nothing.
	fc.callbacks.OnNotification(makeNotification(5, false))
	select {
	case s := <-snaps:
		t.Fatalf("duplicate push published a snapshot: %+v", s)
	default:
	}

	// Advisory count update flows straight through.
	fc.callbacks.OnUnreadCount(9)
	if snap := waitFor(t, snaps, "count snapshot"); snap.UnreadCount != 9 {
		t.Fatalf("unread = %d, want 9", snap.UnreadCount)
	}
}

func TestCenterConnectTriggersRefresh(t *testing.T) {
	store := &fakeStore{notifications: []model.Notification{makeNotification(1, false)}}
	c, fc := newTestCenter(t, store)
	c.Start()

	snaps := make(chan Snapshot, 4)
	c.Subscribe(func(s Snapshot) { snaps <- s })

	fc.callbacks.OnConnect()
	snap := waitFor(t, snaps, "reconnect snapshot")
	if len(snap.Notifications) != 1 {
		t.Fatalf("snapshot has %d entries, want 1", len(snap.Notifications))
	}
}

func TestCenterStopSilencesListeners(t *testing.T) {
	store := &fakeStore{}
	c, fc := newTestCenter(t, store)
	c.Start()

	var publishedAfterStop bool
	c.Subscribe(func(Snapshot) { publishedAfterStop = true })

	c.Stop()
	if fc.disconnectCount() != 1 {
		t.Fatalf("channel disconnected %d times, want 1", fc.disconnectCount())
	}

	// Stale deliveries after teardown are discarded, not applied.
	fc.callbacks.OnNotification(makeNotification(8, false))
	if publishedAfterStop {
		t.Fatal("listener invoked after Stop")
	}
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh after Stop succeeded, want discard")
	}
}
