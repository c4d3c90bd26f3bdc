package employee

type CreateEmployeeRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Department     string `json:"department" binding:"required"`
	Role           string `json:"role" binding:"required,oneof=Employee Manager"`
	TotalLeaveDays *int   `json:"total_leave_days" binding:"omitempty,gte=0"`
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employee_number"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Department     string `json:"department"`
	Role           string `json:"role"`
	TotalLeaveDays int    `json:"total_leave_days"`
	UsedLeaveDays  int    `json:"used_leave_days"`
}

type BalanceResponse struct {
	EmployeeID         string `json:"employee_id"`
	TotalLeaveDays     int    `json:"total_leave_days"`
	UsedLeaveDays      int    `json:"used_leave_days"`
	AvailableLeaveDays int    `json:"available_leave_days"`
}
