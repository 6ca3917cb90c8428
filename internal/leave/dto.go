package leave

import (
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type CreateLeaveRequestDTO struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Type         Type   `json:"type"`
	Reason       string `json:"reason"`
}

func (d CreateLeaveRequestDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("employeeId", d.EmployeeID).Required()
	validator.Field("type", string(d.Type)).
		Required().
		OneOf(internal.ErrCodeInvalidLeaveType, string(TypePaid), string(TypeUnpaid))
	validator.Field("reason", d.Reason).Required().MaxLength(1000)
	if err := validator.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateDateRange(d.StartDate, d.EndDate); err != nil {
		return err
	}
	return nil
}

type SupervisorData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
}

type UpdateStatusDTO struct {
	Status         Status         `json:"status"`
	Comment        string         `json:"comment"`
	SupervisorData *SupervisorData `json:"supervisorData,omitempty"`
}

func (d UpdateStatusDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("status", string(d.Status)).
		Required().
		OneOf(internal.ErrCodeInvalidLeaveStatus, string(StatusApproved), string(StatusRejected))
	validator.Field("comment", d.Comment).MaxLength(1000)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type SignatureDTO struct {
	Signature string `json:"signature"`
}

func (d SignatureDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("signature", d.Signature).Required()
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
