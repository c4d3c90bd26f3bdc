package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveRequestedEventType = "leave.requested"
	LeaveDecidedEventType   = "leave.decided"
)

type LeaveRequestedEvent struct {
	EventType     string    `json:"event_type"`
	LeaveID       string    `json:"leave_id"`
	RequestNumber string    `json:"request_number"`
	EmployeeID    string    `json:"employee_id"`
	LeaveType     string    `json:"leave_type"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalDays     int       `json:"total_days"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type LeaveDecidedEvent struct {
	EventType     string    `json:"event_type"`
	LeaveID       string    `json:"leave_id"`
	RequestNumber string    `json:"request_number"`
	EmployeeID    string    `json:"employee_id"`
	Status        string    `json:"status"`
	TotalDays     int       `json:"total_days"`
	LedgerDelta   int       `json:"ledger_delta"`
	DecidedBy     string    `json:"decided_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}
