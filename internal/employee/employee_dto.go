package employee

type CreateEmployeeRequest struct {
	Name              string `json:"name" binding:"required"`
	TotalLeaveBalance *int   `json:"total_leave_balance" binding:"omitempty,min=0"`
}

type EmployeeResponse struct {
	EmployeeID        int64  `json:"employee_id"`
	Name              string `json:"name"`
	TotalLeaveBalance int    `json:"total_leave_balance"`
}
