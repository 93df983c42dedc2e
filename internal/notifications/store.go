package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/agritechlabs/agroalert-backend/pkg/enums"
	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/pagination"
	"github.com/google/uuid"
)

const (
	// DefaultCapacity bounds the in-memory collection; the oldest entries are
	// dropped once the cap is exceeded.
	DefaultCapacity = 100
	// DefaultSnapshotSize bounds how many of the most recent entries are
	// persisted after each mutation.
	DefaultSnapshotSize = 50

	persistTimeout = 5 * time.Second
)

// QueryParams are AND-combined filters for Store.Query. Zero values mean "any".
type QueryParams struct {
	UserID   uuid.UUID
	Type     enums.NotificationType
	Category enums.NotificationCategory
	IsRead   *bool
	Limit    int
	Cursor   *pagination.Cursor
}

// StoreParams configure a Store.
type StoreParams struct {
	Logger       *logger.Logger
	Repo         SnapshotRepository
	Capacity     int
	SnapshotSize int
	// OnAppend is invoked with a copy of every appended notification, on the
	// appending goroutine. Subscribers must not block.
	OnAppend func(Notification)
	Now      func() time.Time
}

// Store is the authoritative in-memory home for notifications: bounded,
// newest-first, serialized behind a single mutation lock. Durable snapshots
// are best-effort; a failed write never surfaces to the mutating caller.
type Store struct {
	mu           sync.Mutex
	items        []Notification
	capacity     int
	snapshotSize int
	repo         SnapshotRepository
	logg         *logger.Logger
	onAppend     func(Notification)
	now          func() time.Time

	// persistMu serializes snapshot writes; persistDone tracks the newest
	// sequence that reached the repo so a delayed older write is dropped
	// instead of rolling the durable snapshot backwards.
	persistMu   sync.Mutex
	persistSeq  uint64
	persistDone uint64
}

// NewStore builds a store and restores any persisted snapshot into memory.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	capacity := params.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	snapshotSize := params.SnapshotSize
	if snapshotSize <= 0 {
		snapshotSize = DefaultSnapshotSize
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		capacity:     capacity,
		snapshotSize: snapshotSize,
		repo:         params.Repo,
		logg:         params.Logger,
		onAppend:     params.OnAppend,
		now:          now,
	}
	s.restore(ctx)
	return s, nil
}

// restore loads the persisted snapshot back into memory. Failures are logged;
// the store starts empty and stays authoritative from here on.
func (s *Store) restore(ctx context.Context) {
	if s.repo == nil {
		return
	}
	rows, err := s.repo.Load(ctx)
	if err != nil {
		s.logg.Error(ctx, "snapshot restore failed; starting empty", err)
		return
	}
	items, err := notificationsFromSnapshots(rows)
	if err != nil {
		s.logg.Error(ctx, "some snapshot rows could not be restored", err)
	}
	if len(items) > s.capacity {
		items = items[:s.capacity]
	}
	s.items = items
}

// Append inserts at the head, truncates to capacity and persists the snapshot.
func (s *Store) Append(n Notification) {
	s.mu.Lock()
	s.items = append([]Notification{n}, s.items...)
	if len(s.items) > s.capacity {
		s.items = s.items[:s.capacity]
	}
	s.persistLocked()
	s.mu.Unlock()

	if s.onAppend != nil {
		s.onAppend(n.Clone())
	}
}

// Query returns fresh copies matching the AND-combined filters, newest first,
// plus a cursor when more items remain beyond the limit.
func (s *Store) Query(params QueryParams) ([]Notification, *pagination.Cursor) {
	limit := pagination.NormalizeLimit(params.Limit)

	s.mu.Lock()
	defer s.mu.Unlock()

	cursor := params.Cursor
	skipping := cursor != nil
	out := make([]Notification, 0, limit)
	var next *pagination.Cursor
	for _, item := range s.items {
		if skipping {
			if item.ID == cursor.ID {
				skipping = false
				continue
			}
			// The anchor row may have been deleted or evicted since the
			// cursor was issued; resume at the first strictly older item.
			if !item.Timestamp.Before(cursor.Timestamp) {
				continue
			}
			skipping = false
		}
		if !matches(item, params) {
			continue
		}
		if len(out) == limit {
			last := out[len(out)-1]
			next = &pagination.Cursor{Timestamp: last.Timestamp, ID: last.ID}
			break
		}
		out = append(out, item.Clone())
	}
	return out, next
}

func matches(n Notification, params QueryParams) bool {
	if params.UserID != uuid.Nil && n.UserID != params.UserID {
		return false
	}
	if params.Type != "" && n.Type != params.Type {
		return false
	}
	if params.Category != "" && n.Category != params.Category {
		return false
	}
	if params.IsRead != nil && n.IsRead != *params.IsRead {
		return false
	}
	return true
}

// Snapshot returns a copy of the full collection, newest first. Used by the
// analytics aggregator so it can fold without holding the store lock.
func (s *Store) Snapshot() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// MarkRead flags the matching record as read. Missing ids are a no-op.
func (s *Store) MarkRead(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].IsRead {
				s.items[i].IsRead = true
				s.persistLocked()
			}
			return
		}
	}
}

// MarkAllRead flags every record owned by the user as read and returns how
// many records changed.
func (s *Store) MarkAllRead(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.items {
		if s.items[i].UserID != userID || s.items[i].IsRead {
			continue
		}
		s.items[i].IsRead = true
		changed++
	}
	if changed > 0 {
		s.persistLocked()
	}
	return changed
}

// Delete removes the matching record. Missing ids are a no-op.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// UnreadCount counts the user's unread records.
func (s *Store) UnreadCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		if item.UserID == userID && !item.IsRead {
			count++
		}
	}
	return count
}

// EvictExpired drops every record whose expiry has passed. Eviction only
// happens on this explicit call, never implicitly during reads.
func (s *Store) EvictExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if !item.Expired(now) {
			kept = append(kept, item)
		}
	}
	evicted := len(s.items) - len(kept)
	s.items = kept
	if evicted > 0 {
		s.persistLocked()
	}
	return evicted
}

// ApplyDeliveries overwrites the delivery entries of the matching record with
// the outcomes the dispatcher observed. Missing ids are a no-op; the record
// may have been evicted or deleted while dispatch was in flight.
func (s *Store) ApplyDeliveries(id uuid.UUID, channels []ChannelDelivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Channels = append([]ChannelDelivery(nil), channels...)
			s.persistLocked()
			return
		}
	}
}

// Len reports the current collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// persistLocked snapshots the most recent entries and hands them to the repo
// on a background goroutine. Callers hold the mutation lock; the rows are
// built here so the write sees a consistent view. Writes are serialized and
// tagged with a sequence number so the durable snapshot only ever moves
// forward, however the goroutines get scheduled.
func (s *Store) persistLocked() {
	if s.repo == nil {
		return
	}
	size := s.snapshotSize
	if size > len(s.items) {
		size = len(s.items)
	}
	rows, err := snapshotsFromNotifications(s.items[:size])
	if err != nil {
		s.logg.Error(context.Background(), "some notifications could not be encoded for snapshot", err)
	}
	s.persistSeq++
	seq := s.persistSeq
	go func() {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if seq <= s.persistDone {
			// A newer snapshot already landed.
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.repo.Replace(ctx, rows); err != nil {
			s.logg.Error(ctx, "snapshot persist failed; memory remains authoritative", err)
		}
		s.persistDone = seq
	}()
}
