package employee

import (
	"context"
	"database/sql"
	"errors"

	employeeerrors "go-leave/internal/employee/errors"
)

// LedgerRepository is the only write path for used_leave_days. Everything
// else reads the counters; mutations go through AdjustUsed so the
// 0 <= used <= total invariant is enforced in one place.
//
//go:generate mockgen -source=ledger_repo.go -destination=mock/ledger_repo_mock.go -package=mock
type LedgerRepository interface {
	WithTx(tx *sql.Tx) LedgerRepository
	GetBalance(ctx context.Context, employeeID string) (Balance, error)
	AdjustUsed(ctx context.Context, employeeID string, delta int) error
}

type ledgerRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewLedgerRepository(db *sql.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx *sql.Tx) LedgerRepository {
	return &ledgerRepository{db: r.db, tx: tx}
}

const getBalanceQuery = `
SELECT total_leave_days, used_leave_days
FROM employees
WHERE id = $1
`

func (r *ledgerRepository) GetBalance(ctx context.Context, employeeID string) (Balance, error) {
	var b Balance
	err := r.querier().QueryRowContext(ctx, getBalanceQuery, employeeID).
		Scan(&b.TotalLeaveDays, &b.UsedLeaveDays)
	if errors.Is(err, sql.ErrNoRows) {
		return Balance{}, employeeerrors.ErrEmployeeNotFound
	}
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

// The guard predicate keeps the update atomic: the row only changes when the
// adjusted counter stays within [0, total], and concurrent adjustments to the
// same employee serialize on the row lock. No in-process lock table needed.
const adjustUsedQuery = `
UPDATE employees
SET used_leave_days = used_leave_days + $1, updated_at = NOW()
WHERE id = $2
  AND used_leave_days + $1 BETWEEN 0 AND total_leave_days
`

func (r *ledgerRepository) AdjustUsed(ctx context.Context, employeeID string, delta int) error {
	res, err := r.execer().ExecContext(ctx, adjustUsedQuery, delta, employeeID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	// Zero rows: either the employee does not exist or the adjustment would
	// leave the allowed range. Probe to report the right error.
	if _, err := r.GetBalance(ctx, employeeID); err != nil {
		return err
	}
	return employeeerrors.ErrLeaveBalanceOutOfRange
}

func (r *ledgerRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *ledgerRepository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
