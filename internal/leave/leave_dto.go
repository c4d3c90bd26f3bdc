package leave

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=CASUAL SICK ANNUAL MATERNITY PATERNITY"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason" binding:"omitempty,max=500"`
}

// SetStatusRequest accepts PENDING so the transition table can refuse it with
// the proper invalid-transition error rather than a generic validation one.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
}

type LeaveResponse struct {
	ID            string  `json:"id"`
	RequestNumber string  `json:"request_number"`
	EmployeeID    string  `json:"employee_id"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Reason        string  `json:"reason,omitempty"`
	Status        string  `json:"status"`
	AppliedAt     string  `json:"applied_at"`
	DecidedBy     *string `json:"decided_by,omitempty"`
	DecidedAt     *string `json:"decided_at,omitempty"`
}

type LeaveOverviewResponse struct {
	ID            string  `json:"id"`
	RequestNumber string  `json:"request_number"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	Department    string  `json:"department"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Reason        string  `json:"reason,omitempty"`
	Status        string  `json:"status"`
	AppliedAt     string  `json:"applied_at"`
	DecidedBy     *string `json:"decided_by,omitempty"`
	DecidedAt     *string `json:"decided_at,omitempty"`
}
