package main

import (
	"log"
	"os"
	"time"

	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/shared/connection"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Tables written with raw SQL rather than through gorm models.
const infraDDL = `
CREATE TABLE IF NOT EXISTS number_sequences (
	counter_type VARCHAR(50) PRIMARY KEY,
	last_value   BIGINT NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS outbox_events (
	id             UUID PRIMARY KEY,
	request_id     VARCHAR(100),
	aggregate_type VARCHAR(50) NOT NULL,
	aggregate_id   UUID NOT NULL,
	event_type     VARCHAR(100) NOT NULL,
	topic          VARCHAR(200) NOT NULL,
	payload        JSONB NOT NULL,
	status         VARCHAR(20) NOT NULL DEFAULT 'pending',
	retry_count    INT NOT NULL DEFAULT 0,
	error_message  VARCHAR(500),
	next_retry_at  TIMESTAMPTZ,
	processed_at   TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_outbox_status_created
	ON outbox_events (status, created_at);
`

func main() {
	_ = godotenv.Load()

	db, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&employee.Employee{}, &leave.Leave{}); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	if err := db.Exec(infraDDL).Error; err != nil {
		log.Fatalf("infra DDL failed: %v", err)
	}

	var count int64
	if err := db.Model(&employee.Employee{}).Count(&count).Error; err != nil {
		log.Fatalf("count employees failed: %v", err)
	}
	if count > 0 {
		log.Println("employees already present, skipping seed")
		return
	}

	if err := seed(db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Println("✅ Seed data loaded")
}

func seed(db *gorm.DB) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	password := string(hashed)

	admin := newEmployee("EMP-000001", "Sarah Admin", "sarah.admin@example.com", password, "Human Resources", employee.RoleManager, 20)
	john := newEmployee("EMP-000002", "John Miller", "john.miller@example.com", password, "Engineering", employee.RoleEmployee, 20)
	bob := newEmployee("EMP-000003", "Bob Carter", "bob.carter@example.com", password, "Engineering", employee.RoleEmployee, 20)
	alice := newEmployee("EMP-000004", "Alice Wong", "alice.wong@example.com", password, "Finance", employee.RoleEmployee, 20)
	diana := newEmployee("EMP-000005", "Diana Reyes", "diana.reyes@example.com", password, "Marketing", employee.RoleEmployee, 20)

	// Used counters must equal the sum of approved days below.
	john.UsedLeaveDays = 3
	bob.UsedLeaveDays = 8
	alice.UsedLeaveDays = 2

	employees := []*employee.Employee{admin, john, bob, alice, diana}

	leaves := []*leave.Leave{
		approvedLeave("LR-000001", john, leave.LeaveTypeCasual, "2026-08-03", "2026-08-05", 3, "Family visit", admin.ID),
		approvedLeave("LR-000002", bob, leave.LeaveTypeAnnual, "2026-07-13", "2026-07-20", 8, "Summer vacation", admin.ID),
		approvedLeave("LR-000003", alice, leave.LeaveTypeSick, "2026-08-10", "2026-08-11", 2, "Flu", admin.ID),
		pendingLeave("LR-000004", john, leave.LeaveTypeSick, "2026-09-07", "2026-09-08", 2, "Dental surgery"),
		rejectedLeave("LR-000005", bob, leave.LeaveTypeCasual, "2026-09-14", "2026-09-18", 5, "Conference trip", admin.ID),
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range employees {
			if err := tx.Create(e).Error; err != nil {
				return err
			}
		}
		for _, l := range leaves {
			if err := tx.Create(l).Error; err != nil {
				return err
			}
		}
		// Keep the number generators ahead of the seeded rows.
		if err := tx.Exec(`
			INSERT INTO number_sequences (counter_type, last_value, updated_at)
			VALUES ('employee_number', ?, NOW()), ('leave_request_number', ?, NOW())
			ON CONFLICT (counter_type) DO NOTHING
		`, len(employees), len(leaves)).Error; err != nil {
			return err
		}
		return nil
	})
}

func newEmployee(number, name, email, password, department, role string, totalDays int) *employee.Employee {
	return &employee.Employee{
		ID:             uuid.New(),
		EmployeeNumber: number,
		FullName:       name,
		Email:          email,
		Password:       password,
		Department:     department,
		Role:           role,
		TotalLeaveDays: totalDays,
		UsedLeaveDays:  0,
	}
}

func baseLeave(number string, e *employee.Employee, leaveType, start, end string, days int, reason string) *leave.Leave {
	return &leave.Leave{
		ID:            uuid.New(),
		RequestNumber: number,
		EmployeeID:    e.ID,
		LeaveType:     leaveType,
		StartDate:     mustDate(start),
		EndDate:       mustDate(end),
		TotalDays:     days,
		Reason:        reason,
		Status:        leave.StatusPending,
		AppliedAt:     mustDate(start).AddDate(0, 0, -7),
	}
}

func approvedLeave(number string, e *employee.Employee, leaveType, start, end string, days int, reason string, approver uuid.UUID) *leave.Leave {
	l := baseLeave(number, e, leaveType, start, end, days, reason)
	l.Status = leave.StatusApproved
	decidedAt := l.AppliedAt.AddDate(0, 0, 1)
	l.DecidedBy = &approver
	l.DecidedAt = &decidedAt
	return l
}

func pendingLeave(number string, e *employee.Employee, leaveType, start, end string, days int, reason string) *leave.Leave {
	return baseLeave(number, e, leaveType, start, end, days, reason)
}

func rejectedLeave(number string, e *employee.Employee, leaveType, start, end string, days int, reason string, approver uuid.UUID) *leave.Leave {
	l := baseLeave(number, e, leaveType, start, end, days, reason)
	l.Status = leave.StatusRejected
	decidedAt := l.AppliedAt.AddDate(0, 0, 2)
	l.DecidedBy = &approver
	l.DecidedAt = &decidedAt
	return l
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Fatalf("bad seed date %q: %v", s, err)
	}
	return t
}
