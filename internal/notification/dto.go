package notification

import (
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type SendNotificationDTO struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

func (d SendNotificationDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("recipient", d.Recipient).Required().Email()
	validator.Field("subject", d.Subject).Required().MaxLength(255)
	validator.Field("message", d.Message).Required().MaxLength(2000)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// UnreadCountResponse is the body of the unread-count endpoint.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
