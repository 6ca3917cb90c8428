package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/frahmantamala/leave-management/internal"
	"golang.org/x/sync/singleflight"
)

// State caches notifications together with a per-recipient unread counter. The counter is
// recomputed from the collection on every refresh and only adjusted incrementally in between.
type State struct {
	service ServiceAPI
	logger  *slog.Logger

	mu            sync.RWMutex
	notifications []*Notification
	unread        map[string]int
	inflight      int
	lastErr       string

	refreshGroup singleflight.Group
}

func NewState(service ServiceAPI, logger *slog.Logger) *State {
	return &State{
		service:       service,
		logger:        logger,
		notifications: []*Notification{},
		unread:        make(map[string]int),
	}
}

// Refresh replaces the collection with the recipient's notifications and recomputes the
// recipient's unread counter. Concurrent calls for one recipient share a fetch; a caller whose
// ctx is done discards the result.
func (s *State) Refresh(ctx context.Context, recipient string) error {
	s.begin()
	flight := s.refreshGroup.DoChan(recipient, func() (interface{}, error) {
		return s.service.ListByRecipient(context.WithoutCancel(ctx), recipient)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		s.end("")
		return ctx.Err()
	case res = <-flight:
	}
	if ctx.Err() != nil {
		s.end("")
		return ctx.Err()
	}
	if res.Err != nil {
		s.end(messageOr(res.Err, "Failed to fetch notifications"))
		return res.Err
	}

	notifications, _ := res.Val.([]*Notification)
	count := 0
	for _, n := range notifications {
		if n.Recipient == recipient && !n.Read {
			count++
		}
	}

	s.mu.Lock()
	s.notifications = cloneAll(notifications)
	s.unread[recipient] = count
	s.mu.Unlock()
	s.end("")
	return nil
}

func (s *State) Send(ctx context.Context, dto SendNotificationDTO) (*Notification, error) {
	s.begin()
	created, err := s.service.Send(ctx, dto)
	if err != nil {
		s.end(messageOr(err, "Failed to send notification"))
		return nil, err
	}

	s.mu.Lock()
	s.notifications = append(s.notifications, created.Clone())
	if count, ok := s.unread[created.Recipient]; ok && !created.Read {
		s.unread[created.Recipient] = count + 1
	}
	s.mu.Unlock()
	s.end("")
	return created.Clone(), nil
}

// MarkAsRead decrements the counter only when the cached copy was still unread, so repeated
// calls cannot drive it below the real number of unread notifications.
func (s *State) MarkAsRead(ctx context.Context, id string) (*Notification, error) {
	s.begin()
	updated, err := s.service.MarkAsRead(ctx, id)
	if err != nil {
		s.end(messageOr(err, "Failed to mark notification as read"))
		return nil, err
	}

	s.mu.Lock()
	wasUnread := false
	for i, n := range s.notifications {
		if n.ID == id {
			wasUnread = !n.Read
			c := n.Clone()
			c.Read = true
			s.notifications[i] = c
			break
		}
	}
	if count, ok := s.unread[updated.Recipient]; ok && wasUnread && count > 0 {
		s.unread[updated.Recipient] = count - 1
	}
	s.mu.Unlock()
	s.end("")

	updated = updated.Clone()
	updated.Read = true
	return updated, nil
}

func (s *State) Notifications() []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.notifications)
}

func (s *State) UserNotifications(recipient string) []*Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Notification, 0)
	for _, n := range s.notifications {
		if n.Recipient == recipient {
			out = append(out, n.Clone())
		}
	}
	return out
}

// UnreadCount returns the cached counter, or 0 when the recipient was never refreshed.
func (s *State) UnreadCount(recipient string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread[recipient]
}

func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

func (s *State) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *State) begin() {
	s.mu.Lock()
	s.inflight++
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *State) end(errMsg string) {
	s.mu.Lock()
	s.inflight--
	if errMsg != "" {
		s.lastErr = errMsg
	}
	s.mu.Unlock()
}

func messageOr(err error, fallback string) string {
	if appErr, ok := internal.IsAppError(err); ok && appErr.GetDetailedMessage() != "" {
		return appErr.GetDetailedMessage()
	}
	return fallback
}

func cloneAll(notifications []*Notification) []*Notification {
	out := make([]*Notification, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, n.Clone())
	}
	return out
}
