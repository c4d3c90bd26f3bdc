package employee

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
)

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_employee_number"`
	FullName       string    `gorm:"type:varchar(120);not null"`
	Email          string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_employee_email"`
	Password       string    `gorm:"type:varchar(120);not null"`
	Department     string    `gorm:"type:varchar(60);not null"`
	Role           string    `gorm:"type:varchar(20);not null;default:'Employee'"`

	TotalLeaveDays int `gorm:"type:int;not null;default:20"`
	UsedLeaveDays  int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Balance is the per-employee leave counter pair. Available days are always
// derived, never stored.
type Balance struct {
	TotalLeaveDays int
	UsedLeaveDays  int
}

func (b Balance) AvailableLeaveDays() int {
	return b.TotalLeaveDays - b.UsedLeaveDays
}
