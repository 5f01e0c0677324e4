package events

import "time"

const EmployeeCreatedTopic = "leave.employee.lifecycle.v1"

type EmployeeCreatedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	EmployeeID   int64     `json:"employee_id"`
	Name         string    `json:"name"`
	LeaveBalance int       `json:"total_leave_balance"`
	OccurredAt   time.Time `json:"occurred_at"`
}
