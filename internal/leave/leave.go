package leave

import (
	"time"

	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/events"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypePaid   Type = "paid"
	TypeUnpaid Type = "unpaid"
)

// LeaveRequest is the wire and domain shape of a leave request.
type LeaveRequest struct {
	ID                  string    `json:"id"`
	EmployeeID          string    `json:"employeeId"`
	EmployeeName        string    `json:"employeeName"`
	StartDate           string    `json:"startDate"`
	EndDate             string    `json:"endDate"`
	Type                Type      `json:"type"`
	Reason              string    `json:"reason"`
	Status              Status    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	SupervisorID        string    `json:"supervisorId,omitempty"`
	SupervisorName      string    `json:"supervisorName,omitempty"`
	SupervisorComment   string    `json:"supervisorComment,omitempty"`
	SupervisorSignature string    `json:"supervisorSignature,omitempty"`
	EmployeeSignature   string    `json:"employeeSignature,omitempty"`
}

// NewLeaveRequest builds a pending request from a validated DTO.
func NewLeaveRequest(id string, dto CreateLeaveRequestDTO, now time.Time) *LeaveRequest {
	return &LeaveRequest{
		ID:           id,
		EmployeeID:   dto.EmployeeID,
		EmployeeName: dto.EmployeeName,
		StartDate:    dto.StartDate,
		EndDate:      dto.EndDate,
		Type:         dto.Type,
		Reason:       dto.Reason,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (l *LeaveRequest) IsPending() bool {
	return l.Status == StatusPending
}

// IsDecided reports whether the request already reached a terminal status.
func (l *LeaveRequest) IsDecided() bool {
	return l.Status == StatusApproved || l.Status == StatusRejected
}

// ApplyStatus records a supervisor decision. An empty comment keeps the previous one and the
// supervisor fields change only when a descriptor is given.
func (l *LeaveRequest) ApplyStatus(dto UpdateStatusDTO, now time.Time) {
	l.Status = dto.Status
	if dto.Comment != "" {
		l.SupervisorComment = dto.Comment
	}
	if sup := dto.SupervisorData; sup != nil {
		l.SupervisorID = sup.ID
		l.SupervisorName = sup.Name
		l.SupervisorSignature = sup.Signature
	}
	l.UpdatedAt = now
}

func (l *LeaveRequest) ApplyEmployeeSignature(signature string, now time.Time) {
	l.EmployeeSignature = signature
	l.UpdatedAt = now
}

// Days returns the inclusive number of calendar days covered by the request.
func (l *LeaveRequest) Days() int {
	start, err := time.Parse(validation.DateLayout, l.StartDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse(validation.DateLayout, l.EndDate)
	if err != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func (l *LeaveRequest) Clone() *LeaveRequest {
	c := *l
	return &c
}

func (l *LeaveRequest) Snapshot() events.LeaveSnapshot {
	return events.LeaveSnapshot{
		LeaveID:           l.ID,
		EmployeeID:        l.EmployeeID,
		EmployeeName:      l.EmployeeName,
		Type:              string(l.Type),
		Status:            string(l.Status),
		StartDate:         l.StartDate,
		EndDate:           l.EndDate,
		SupervisorComment: l.SupervisorComment,
	}
}

func ToDataModel(l *LeaveRequest) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:                  l.ID,
		EmployeeID:          l.EmployeeID,
		EmployeeName:        l.EmployeeName,
		StartDate:           l.StartDate,
		EndDate:             l.EndDate,
		Type:                string(l.Type),
		Reason:              l.Reason,
		Status:              string(l.Status),
		SupervisorID:        l.SupervisorID,
		SupervisorName:      l.SupervisorName,
		SupervisorComment:   l.SupervisorComment,
		SupervisorSignature: l.SupervisorSignature,
		EmployeeSignature:   l.EmployeeSignature,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func FromDataModel(m *leaveDatamodel.LeaveRequest) *LeaveRequest {
	return &LeaveRequest{
		ID:                  m.ID,
		EmployeeID:          m.EmployeeID,
		EmployeeName:        m.EmployeeName,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Type:                Type(m.Type),
		Reason:              m.Reason,
		Status:              Status(m.Status),
		SupervisorID:        m.SupervisorID,
		SupervisorName:      m.SupervisorName,
		SupervisorComment:   m.SupervisorComment,
		SupervisorSignature: m.SupervisorSignature,
		EmployeeSignature:   m.EmployeeSignature,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}
