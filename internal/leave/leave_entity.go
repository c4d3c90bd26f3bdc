package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeaveTypeCasual    = "CASUAL"
	LeaveTypeSick      = "SICK"
	LeaveTypeAnnual    = "ANNUAL"
	LeaveTypeMaternity = "MATERNITY"
	LeaveTypePaternity = "PATERNITY"
)

type Leave struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestNumber string     `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_request_number"`
	EmployeeID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_leaves_employee_applied,priority:1"`
	LeaveType     string     `gorm:"type:varchar(30);not null"`
	StartDate     time.Time  `gorm:"type:date;not null"`
	EndDate       time.Time  `gorm:"type:date;not null"`
	TotalDays     int        `gorm:"type:int;not null"`
	Reason        string     `gorm:"type:text"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_status"`
	AppliedAt     time.Time  `gorm:"not null;index:idx_leaves_employee_applied,priority:2,sort:desc"`
	DecidedBy     *uuid.UUID `gorm:"type:uuid"`
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Leave) TableName() string {
	return "leave_requests"
}

// LeaveWithEmployee is the read model for the manager overview listing,
// joining the request with the requester's master data.
type LeaveWithEmployee struct {
	ID            uuid.UUID
	RequestNumber string
	EmployeeID    uuid.UUID
	EmployeeName  string
	Department    string
	LeaveType     string
	StartDate     time.Time
	EndDate       time.Time
	TotalDays     int
	Reason        string
	Status        string
	AppliedAt     time.Time
	DecidedBy     *uuid.UUID
	DecidedAt     *time.Time
}
