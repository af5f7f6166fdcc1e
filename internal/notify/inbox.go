package notify

import (
	"sync"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

// Inbox is the single authoritative in-memory view of the user's
// notifications. It is mutated from two sources, store snapshots and
// live-pushed events, and every mutation runs under one mutex so
// observers never see a partially applied state.
//
// Entries are ordered newest first by arrival, which tracks recency
// closely because push delivery is near-real-time. Entries are never
// deleted; only their read flag flips, and only from unread to read.
type Inbox struct {
	mu            sync.Mutex
	notifications []model.Notification
	byID          map[int64]int // id -> index in notifications
	unreadCount   int
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{
		byID: make(map[int64]int),
	}
}

// Snapshot is a complete, immutable copy of the inbox published to
// observers.
type Snapshot struct {
	Notifications []model.Notification
	UnreadCount   int
}

// Snapshot returns a copy of the current inbox state. The returned slice
// is owned by the caller.
func (in *Inbox) Snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.snapshotLocked()
}

// snapshotLocked copies the current state. Caller holds in.mu.
func (in *Inbox) snapshotLocked() Snapshot {
	notifications := make([]model.Notification, len(in.notifications))
	copy(notifications, in.notifications)
	return Snapshot{
		Notifications: notifications,
		UnreadCount:   in.unreadCount,
	}
}

// LoadSnapshot replaces the inbox contents wholesale with an
// authoritative list fetched from the store. The swap is atomic:
// observers see either the old list or the new one, never a mix.
func (in *Inbox) LoadSnapshot(notifications []model.Notification, unreadCount int) Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.notifications = make([]model.Notification, len(notifications))
	copy(in.notifications, notifications)
	in.byID = make(map[int64]int, len(notifications))
	for i, n := range in.notifications {
		in.byID[n.ID] = i
	}
	in.unreadCount = unreadCount
	return in.snapshotLocked()
}

// IngestPush merges a live-pushed notification. A notification whose id
// is already present is a duplicate delivery (the store is the id
// authority, and updates only ever arrive as read-state mutations) and
// the arrival is discarded. New notifications are prepended.
// It returns the resulting snapshot and whether the inbox changed.
func (in *Inbox) IngestPush(n model.Notification) (Snapshot, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if _, exists := in.byID[n.ID]; exists {
		return in.snapshotLocked(), false
	}

	in.notifications = append([]model.Notification{n}, in.notifications...)
	in.byID = make(map[int64]int, len(in.notifications))
	for i, existing := range in.notifications {
		in.byID[existing.ID] = i
	}
	if !n.IsRead {
		in.unreadCount++
	}
	return in.snapshotLocked(), true
}

// ApplyCountUpdate sets the unread count from the push channel. The
// pushed value is advisory: the next snapshot load or local mutation
// recomputes it, and the locally derived count wins when they disagree.
func (in *Inbox) ApplyCountUpdate(count int) Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	if count < 0 {
		count = 0
	}
	in.unreadCount = count
	return in.snapshotLocked()
}

// MarkRead flips the matching entry to read and decrements the unread
// count by exactly one, if the entry exists and is currently unread.
// Anything else is a no-op: an unknown id is not an error, since the
// entry may simply not have arrived locally yet.
// It returns the resulting snapshot and whether anything changed.
func (in *Inbox) MarkRead(id int64) (Snapshot, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	i, ok := in.byID[id]
	if !ok || in.notifications[i].IsRead {
		return in.snapshotLocked(), false
	}

	in.notifications[i].IsRead = true
	in.unreadCount--
	if in.unreadCount < 0 {
		in.unreadCount = 0
	}
	return in.snapshotLocked(), true
}

// MarkAllRead flips every entry to read and zeroes the unread count.
// It returns the resulting snapshot and whether anything changed.
func (in *Inbox) MarkAllRead() (Snapshot, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	changed := false
	for i := range in.notifications {
		if !in.notifications[i].IsRead {
			in.notifications[i].IsRead = true
			changed = true
		}
	}
	changed = changed || in.unreadCount != 0
	in.unreadCount = 0
	return in.snapshotLocked(), changed
}

// UnreadCount returns the current unread count.
func (in *Inbox) UnreadCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.unreadCount
}

// Len returns the number of notifications in the inbox.
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.notifications)
}
