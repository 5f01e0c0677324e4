package leave

import (
	"time"
)

type LeaveRequest struct {
	RequestID  int64     `gorm:"column:request_id;primaryKey;autoIncrement"`
	EmployeeID int64     `gorm:"column:employee_id;not null;index:idx_leave_requests_employee_dates"`
	LeaveType  string    `gorm:"column:leave_type;type:varchar(30);not null;default:'Casual'"`
	StartDate  time.Time `gorm:"column:start_date;type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate    time.Time `gorm:"column:end_date;type:date;not null;index:idx_leave_requests_employee_dates"`
	Days       int       `gorm:"column:days;not null"`
	Status     string    `gorm:"column:status;type:varchar(20);not null;default:'Pending';index"`
	AppliedOn  time.Time `gorm:"column:applied_on;autoCreateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
