// Package memory is an in-process notification backend seeded with demo data.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/google/uuid"
)

// SeedNotifications returns a fresh copy of the demo dataset, addressed to the demo employee.
func SeedNotifications() []*notification.Notification {
	return []*notification.Notification{
		{
			ID:        "notif1",
			Recipient: "john@example.com",
			Subject:   "Leave Approved",
			Message:   "Your leave from 2023-06-01 to 2023-06-05 has been approved.",
			CreatedAt: time.Date(2023, 5, 22, 14, 45, 0, 0, time.UTC),
		},
		{
			ID:        "notif2",
			Recipient: "john@example.com",
			Subject:   "New Policy",
			Message:   "Please review the updated company policy.",
			Read:      true,
			CreatedAt: time.Date(2023, 7, 1, 10, 20, 0, 0, time.UTC),
		},
	}
}

type NotificationStore struct {
	mu            sync.RWMutex
	notifications []*notification.Notification
	now           func() time.Time
}

func NewNotificationStore(seed []*notification.Notification) *NotificationStore {
	notifications := make([]*notification.Notification, 0, len(seed))
	for _, n := range seed {
		notifications = append(notifications, n.Clone())
	}
	return &NotificationStore{
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func NewSeededNotificationStore() *NotificationStore {
	return NewNotificationStore(SeedNotifications())
}

// WithClock replaces the time source used for new notifications.
func (s *NotificationStore) WithClock(now func() time.Time) *NotificationStore {
	s.now = now
	return s
}

func (s *NotificationStore) ListByRecipient(_ context.Context, recipient string) ([]*notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*notification.Notification, 0)
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, n.Clone())
		}
	}
	return out, nil
}

func (s *NotificationStore) Send(_ context.Context, dto notification.SendNotificationDTO) (*notification.Notification, error) {
	n := notification.NewNotification("notif-"+uuid.NewString(), dto, s.now())

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	return n.Clone(), nil
}

func (s *NotificationStore) MarkAsRead(_ context.Context, id string) (*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.ID == id {
			n.Read = true
			return n.Clone(), nil
		}
	}
	return nil, internal.ErrNotificationNotFound
}

func (s *NotificationStore) UnreadCount(_ context.Context, recipient string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.Recipient == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}
