package leave

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Leave, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindAllWithEmployee(ctx context.Context) ([]LeaveWithEmployee, error)
	UpdateStatus(ctx context.Context, l *Leave) error
}

type repository struct {
	gdb *gorm.DB
	db  *sql.DB
	tx  *sql.Tx
}

func NewRepository(gdb *gorm.DB, db *sql.DB) Repository {
	return &repository{gdb: gdb, db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{gdb: r.gdb, db: r.db, tx: tx}
}

const createQuery = `
INSERT INTO leave_requests (
	id, request_number, employee_id, leave_type, start_date, end_date,
	total_days, reason, status, applied_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
`

func (r *repository) Create(ctx context.Context, l *Leave) error {
	_, err := r.execer().ExecContext(ctx, createQuery,
		l.ID, l.RequestNumber, l.EmployeeID, l.LeaveType,
		l.StartDate, l.EndDate, l.TotalDays, l.Reason,
		l.Status, l.AppliedAt,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	if err := r.gdb.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

const findForUpdateQuery = `
SELECT id, request_number, employee_id, leave_type, start_date, end_date,
       total_days, reason, status, applied_at, decided_by, decided_at
FROM leave_requests
WHERE id = $1
FOR UPDATE
`

// FindByIDForUpdate takes the row lock so concurrent decisions on the same
// request serialize instead of both reading the stale status.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	var (
		l         Leave
		decidedBy uuid.NullUUID
		decidedAt sql.NullTime
	)
	err := r.querier().QueryRowContext(ctx, findForUpdateQuery, id).Scan(
		&l.ID, &l.RequestNumber, &l.EmployeeID, &l.LeaveType,
		&l.StartDate, &l.EndDate, &l.TotalDays, &l.Reason,
		&l.Status, &l.AppliedAt, &decidedBy, &decidedAt,
	)
	if err != nil {
		return nil, err
	}
	if decidedBy.Valid {
		l.DecidedBy = &decidedBy.UUID
	}
	if decidedAt.Valid {
		l.DecidedAt = &decidedAt.Time
	}
	return &l, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.gdb.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("applied_at DESC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *repository) FindAllWithEmployee(ctx context.Context) ([]LeaveWithEmployee, error) {
	var rows []LeaveWithEmployee
	err := r.gdb.WithContext(ctx).
		Table("leave_requests AS lr").
		Select(`lr.id, lr.request_number, lr.employee_id,
			e.full_name AS employee_name, e.department,
			lr.leave_type, lr.start_date, lr.end_date, lr.total_days,
			lr.reason, lr.status, lr.applied_at, lr.decided_by, lr.decided_at`).
		Joins("JOIN employees e ON e.id = lr.employee_id").
		Order("lr.applied_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

const updateStatusQuery = `
UPDATE leave_requests
SET status = $1, decided_by = $2, decided_at = $3, updated_at = NOW()
WHERE id = $4
`

func (r *repository) UpdateStatus(ctx context.Context, l *Leave) error {
	_, err := r.execer().ExecContext(ctx, updateStatusQuery,
		l.Status, l.DecidedBy, l.DecidedAt, l.ID,
	)
	return err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
