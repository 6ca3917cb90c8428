// Package rest talks to the notification endpoints of the backend through the gateway.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/notification"
)

// Doer is the gateway surface the adapter needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out interface{}) error
}

type NotificationClient struct {
	api Doer
}

func NewNotificationClient(api Doer) *NotificationClient {
	return &NotificationClient{api: api}
}

func (c *NotificationClient) ListByRecipient(ctx context.Context, recipient string) ([]*notification.Notification, error) {
	var out []*notification.Notification
	if err := c.api.Do(ctx, http.MethodGet, "/notifications?"+recipientQuery(recipient), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*notification.Notification{}
	}
	return out, nil
}

func (c *NotificationClient) Send(ctx context.Context, dto notification.SendNotificationDTO) (*notification.Notification, error) {
	var out notification.Notification
	if err := c.api.Do(ctx, http.MethodPost, "/notifications", dto, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NotificationClient) MarkAsRead(ctx context.Context, id string) (*notification.Notification, error) {
	var out notification.Notification
	if err := c.api.Do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, &out); err != nil {
		if internal.IsType(err, internal.ErrorTypeNotFound) {
			return nil, internal.ErrNotificationNotFound.WithCause(err)
		}
		return nil, err
	}
	return &out, nil
}

func (c *NotificationClient) UnreadCount(ctx context.Context, recipient string) (int, error) {
	var out notification.UnreadCountResponse
	if err := c.api.Do(ctx, http.MethodGet, "/notifications/unread-count?"+recipientQuery(recipient), nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func recipientQuery(recipient string) string {
	return url.Values{"recipient": []string{recipient}}.Encode()
}
