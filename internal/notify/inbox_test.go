package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

func makeNotification(id int64, read bool) model.Notification {
	return model.Notification{
		ID:             id,
		OrderID:        fmt.Sprintf("order-%d", id),
		TrackingNumber: fmt.Sprintf("SL%06d", id),
		CustomerName:   "Test Customer",
		Message:        fmt.Sprintf("notification %d", id),
		Type:           model.NotificationOrderCreated,
		OrderStatus:    model.OrderPending,
		Timestamp:      time.Now(),
		IsRead:         read,
	}
}

// derivedUnread recomputes the unread count from the entries themselves.
func derivedUnread(snap Snapshot) int {
	count := 0
	for _, n := range snap.Notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func checkInvariant(t *testing.T, snap Snapshot) {
	t.Helper()
	if got, want := snap.UnreadCount, derivedUnread(snap); got != want {
		t.Fatalf("unread count %d diverges from derived count %d", got, want)
	}
}

func TestInboxLifecycle(t *testing.T) {
	in := NewInbox()

	snap := in.LoadSnapshot([]model.Notification{
		makeNotification(1, false),
		makeNotification(2, true),
	}, 1)
	if snap.UnreadCount != 1 {
		t.Fatalf("after snapshot load, unread = %d, want 1", snap.UnreadCount)
	}
	checkInvariant(t, snap)

	snap, changed := in.IngestPush(makeNotification(3, false))
	if !changed {
		t.Fatal("ingesting a new notification reported no change")
	}
	if snap.UnreadCount != 2 {
		t.Fatalf("after push, unread = %d, want 2", snap.UnreadCount)
	}
	wantOrder := []int64{3, 1, 2}
	for i, id := range wantOrder {
		if snap.Notifications[i].ID != id {
			t.Fatalf("position %d holds id %d, want %d", i, snap.Notifications[i].ID, id)
		}
	}
	checkInvariant(t, snap)

	// Duplicate delivery of id 1 must be discarded.
	snap, changed = in.IngestPush(makeNotification(1, false))
	if changed {
		t.Fatal("duplicate push reported a change")
	}
	if len(snap.Notifications) != 3 || snap.UnreadCount != 2 {
		t.Fatalf("after duplicate push: %d entries, unread %d; want 3 entries, unread 2",
			len(snap.Notifications), snap.UnreadCount)
	}
	checkInvariant(t, snap)

	snap, changed = in.MarkRead(3)
	if !changed {
		t.Fatal("marking unread entry reported no change")
	}
	if snap.UnreadCount != 1 {
		t.Fatalf("after mark-read, unread = %d, want 1", snap.UnreadCount)
	}
	checkInvariant(t, snap)

	snap, changed = in.MarkAllRead()
	if !changed {
		t.Fatal("mark-all-read reported no change")
	}
	if snap.UnreadCount != 0 {
		t.Fatalf("after mark-all-read, unread = %d, want 0", snap.UnreadCount)
	}
	for _, n := range snap.Notifications {
		if !n.IsRead {
			t.Fatalf("notification %d still unread after mark-all-read", n.ID)
		}
	}
	checkInvariant(t, snap)
}

func TestInboxDedupAcrossManyPushes(t *testing.T) {
	in := NewInbox()

	// Deliver every id twice, interleaved.
	for round := 0; round < 2; round++ {
		for id := int64(1); id <= 20; id++ {
			in.IngestPush(makeNotification(id, id%2 == 0))
		}
	}

	snap := in.Snapshot()
	if len(snap.Notifications) != 20 {
		t.Fatalf("inbox holds %d entries, want 20", len(snap.Notifications))
	}
	seen := make(map[int64]bool)
	for _, n := range snap.Notifications {
		if seen[n.ID] {
			t.Fatalf("id %d appears more than once", n.ID)
		}
		seen[n.ID] = true
	}
	checkInvariant(t, snap)
}

func TestMarkReadIdempotent(t *testing.T) {
	in := NewInbox()
	in.LoadSnapshot([]model.Notification{makeNotification(1, false)}, 1)

	first, changed := in.MarkRead(1)
	if !changed {
		t.Fatal("first mark-read reported no change")
	}
	second, changed := in.MarkRead(1)
	if changed {
		t.Fatal("second mark-read reported a change")
	}
	if first.UnreadCount != 0 || second.UnreadCount != 0 {
		t.Fatalf("unread counts %d/%d after repeated mark-read, want 0/0",
			first.UnreadCount, second.UnreadCount)
	}
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	in := NewInbox()
	in.LoadSnapshot([]model.Notification{makeNotification(1, false)}, 1)

	snap, changed := in.MarkRead(999)
	if changed {
		t.Fatal("unknown id reported a change")
	}
	if snap.UnreadCount != 1 {
		t.Fatalf("unread = %d after unknown-id mark-read, want 1", snap.UnreadCount)
	}
}

func TestMarkAllReadThenMarkReadIsNoop(t *testing.T) {
	in := NewInbox()
	in.LoadSnapshot([]model.Notification{
		makeNotification(1, false),
		makeNotification(2, false),
	}, 2)

	in.MarkAllRead()
	snap, changed := in.MarkRead(1)
	if changed {
		t.Fatal("mark-read after mark-all-read reported a change")
	}
	checkInvariant(t, snap)
	if snap.UnreadCount != 0 {
		t.Fatalf("unread = %d, want 0", snap.UnreadCount)
	}
}

func TestApplyCountUpdateIsAdvisory(t *testing.T) {
	in := NewInbox()
	in.LoadSnapshot([]model.Notification{makeNotification(1, false)}, 1)

	// The pushed value is applied verbatim, even when it disagrees with
	// the locally derived count.
	snap := in.ApplyCountUpdate(5)
	if snap.UnreadCount != 5 {
		t.Fatalf("unread = %d after count push, want 5", snap.UnreadCount)
	}

	// The next snapshot load re-establishes the derived value.
	snap = in.LoadSnapshot([]model.Notification{makeNotification(1, false)}, 1)
	if snap.UnreadCount != 1 {
		t.Fatalf("unread = %d after reload, want 1", snap.UnreadCount)
	}
	checkInvariant(t, snap)
}

func TestSnapshotIsACopy(t *testing.T) {
	in := NewInbox()
	in.LoadSnapshot([]model.Notification{makeNotification(1, false)}, 1)

	snap := in.Snapshot()
	snap.Notifications[0].IsRead = true

	if got := in.Snapshot().Notifications[0].IsRead; got {
		t.Fatal("mutating a snapshot leaked into the inbox")
	}
}

func TestInboxConcurrentMutation(t *testing.T) {
	in := NewInbox()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := int64(w*100 + i)
				in.IngestPush(makeNotification(id, false))
				if i%3 == 0 {
					in.MarkRead(id)
				}
				if i%17 == 0 {
					in.MarkAllRead()
				}
			}
		}(w)
	}
	wg.Wait()

	// However the operations interleaved, the count invariant holds and
	// no entry was counted twice.
	checkInvariant(t, in.Snapshot())
	if in.Len() != 400 {
		t.Fatalf("inbox holds %d entries, want 400", in.Len())
	}
}
