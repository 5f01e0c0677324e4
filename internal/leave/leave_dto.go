package leave

type ApplyLeaveRequest struct {
	EmployeeID int64  `json:"employee_id" binding:"required,min=1"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type LeaveResponse struct {
	RequestID  int64  `json:"request_id"`
	EmployeeID int64  `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Days       int    `json:"days"`
	Status     string `json:"status"`
	AppliedOn  string `json:"applied_on"`
}

type StatusUpdateResponse struct {
	RequestID int64  `json:"request_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"` // "no_change" pada transisi idempoten
}
