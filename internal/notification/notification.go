package notification

import (
	"time"

	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
)

// Notification is a message addressed to a recipient email. Only the read flag ever changes.
type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewNotification(id string, dto SendNotificationDTO, now time.Time) *Notification {
	return &Notification{
		ID:        id,
		Recipient: dto.Recipient,
		Subject:   dto.Subject,
		Message:   dto.Message,
		CreatedAt: now,
	}
}

func (n *Notification) Clone() *Notification {
	c := *n
	return &c
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModel(m *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        m.ID,
		Recipient: m.Recipient,
		Subject:   m.Subject,
		Message:   m.Message,
		Read:      m.Read,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
