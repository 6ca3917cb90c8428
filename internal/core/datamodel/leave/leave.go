package leave

import "time"

type LeaveRequest struct {
	ID                  string    `gorm:"primaryKey;column:id"`
	EmployeeID          string    `gorm:"column:employee_id;not null;index"`
	EmployeeName        string    `gorm:"column:employee_name;not null"`
	StartDate           string    `gorm:"column:start_date;not null"`
	EndDate             string    `gorm:"column:end_date;not null"`
	Type                string    `gorm:"column:type;not null"`
	Reason              string    `gorm:"column:reason;not null"`
	Status              string    `gorm:"column:status;not null;default:pending;index"`
	SupervisorID        string    `gorm:"column:supervisor_id"`
	SupervisorName      string    `gorm:"column:supervisor_name"`
	SupervisorComment   string    `gorm:"column:supervisor_comment"`
	SupervisorSignature string    `gorm:"column:supervisor_signature"`
	EmployeeSignature   string    `gorm:"column:employee_signature"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
