package events

import "time"

const LeaveStatusChangedTopic = "leave.request.status.v1"

// LeaveStatusChangedEvent diterbitkan setiap kali sebuah pengajuan cuti
// benar-benar berpindah status (transisi no-op tidak menghasilkan event).
type LeaveStatusChangedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID int64     `json:"leave_request_id"`
	EmployeeID     int64     `json:"employee_id"`
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
	Days           int       `json:"days"`
	OccurredAt     time.Time `json:"occurred_at"`
}
