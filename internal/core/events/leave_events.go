package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveSubmitted     = "leave.submitted"
	EventTypeLeaveStatusChanged = "leave.status_changed"
)

// LeaveSnapshot carries the leave request fields that event handlers need.
type LeaveSnapshot struct {
	LeaveID           string `json:"leave_id"`
	EmployeeID        string `json:"employee_id"`
	EmployeeName      string `json:"employee_name"`
	Type              string `json:"type"`
	Status            string `json:"status"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	SupervisorComment string `json:"supervisor_comment,omitempty"`
}

func (s LeaveSnapshot) data() map[string]interface{} {
	return map[string]interface{}{
		"leave_id":           s.LeaveID,
		"employee_id":        s.EmployeeID,
		"employee_name":      s.EmployeeName,
		"type":               s.Type,
		"status":             s.Status,
		"start_date":         s.StartDate,
		"end_date":           s.EndDate,
		"supervisor_comment": s.SupervisorComment,
	}
}

type LeaveSubmittedEvent struct {
	BaseEvent
	Leave LeaveSnapshot `json:"leave"`
}

func NewLeaveSubmittedEvent(leave LeaveSnapshot) *LeaveSubmittedEvent {
	return &LeaveSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveSubmitted,
			Timestamp: time.Now(),
			Data:      leave.data(),
		},
		Leave: leave,
	}
}

type LeaveStatusChangedEvent struct {
	BaseEvent
	Leave          LeaveSnapshot `json:"leave"`
	PreviousStatus string        `json:"previous_status"`
	SupervisorID   string        `json:"supervisor_id"`
	SupervisorName string        `json:"supervisor_name"`
}

func NewLeaveStatusChangedEvent(leave LeaveSnapshot, previousStatus, supervisorID, supervisorName string) *LeaveStatusChangedEvent {
	data := leave.data()
	data["previous_status"] = previousStatus
	data["supervisor_id"] = supervisorID
	data["supervisor_name"] = supervisorName

	return &LeaveStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveStatusChanged,
			Timestamp: time.Now(),
			Data:      data,
		},
		Leave:          leave,
		PreviousStatus: previousStatus,
		SupervisorID:   supervisorID,
		SupervisorName: supervisorName,
	}
}
