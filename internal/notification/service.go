package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal"
)

// Backend is the storage or transport behind the notification service.
type Backend interface {
	ListByRecipient(ctx context.Context, recipient string) ([]*Notification, error)
	Send(ctx context.Context, dto SendNotificationDTO) (*Notification, error)
	MarkAsRead(ctx context.Context, id string) (*Notification, error)
	UnreadCount(ctx context.Context, recipient string) (int, error)
}

type ServiceAPI interface {
	Backend
}

type ServiceOption func(*Service)

// WithFallback answers from fb whenever the primary backend fails with a network or server error.
func WithFallback(fb Backend) ServiceOption {
	return func(s *Service) {
		s.fallback = fb
	}
}

// WithDegradedReads turns failed list reads into empty collections.
func WithDegradedReads() ServiceOption {
	return func(s *Service) {
		s.degradeReads = true
	}
}

type Service struct {
	backend      Backend
	fallback     Backend
	degradeReads bool
	logger       *slog.Logger
}

func NewService(backend Backend, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		backend: backend,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListByRecipient(ctx context.Context, recipient string) ([]*Notification, error) {
	notifications, err := s.backend.ListByRecipient(ctx, recipient)
	if err != nil && s.useFallback(ctx, "list notifications", err) {
		notifications, err = s.fallback.ListByRecipient(ctx, recipient)
	}
	if err != nil {
		if s.degradeReads && ctx.Err() == nil {
			s.logger.Error("read failed, returning empty collection", "operation", "list notifications", "error", err)
			return []*Notification{}, nil
		}
		s.logger.Error("failed to list notifications", "error", err, "recipient", recipient)
		return nil, err
	}
	if notifications == nil {
		notifications = []*Notification{}
	}
	return notifications, nil
}

func (s *Service) Send(ctx context.Context, dto SendNotificationDTO) (*Notification, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("notification validation failed", "error", err, "recipient", dto.Recipient)
		return nil, err
	}

	n, err := s.backend.Send(ctx, dto)
	if err != nil && s.useFallback(ctx, "send notification", err) {
		n, err = s.fallback.Send(ctx, dto)
	}
	if err != nil {
		s.logger.Error("failed to send notification", "error", err, "recipient", dto.Recipient)
		return nil, err
	}

	s.logger.Info("notification sent", "notification_id", n.ID, "recipient", n.Recipient)
	return n, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id string) (*Notification, error) {
	n, err := s.backend.MarkAsRead(ctx, id)
	if err != nil && s.useFallback(ctx, "mark notification as read", err) {
		n, err = s.fallback.MarkAsRead(ctx, id)
	}
	if err != nil {
		s.logger.Error("failed to mark notification as read", "error", err, "notification_id", id)
		return nil, err
	}
	if n == nil {
		return nil, internal.ErrNotificationNotFound
	}
	return n, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipient string) (int, error) {
	count, err := s.backend.UnreadCount(ctx, recipient)
	if err != nil && s.useFallback(ctx, "count unread notifications", err) {
		count, err = s.fallback.UnreadCount(ctx, recipient)
	}
	if err != nil {
		s.logger.Error("failed to count unread notifications", "error", err, "recipient", recipient)
		return 0, err
	}
	return count, nil
}

func (s *Service) useFallback(ctx context.Context, op string, err error) bool {
	if s.fallback == nil || ctx.Err() != nil || !internal.IsTransient(err) {
		return false
	}
	s.logger.Warn("backend unavailable, serving fallback data", "operation", op, "error", err)
	return true
}
