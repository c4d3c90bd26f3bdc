package employee_test

import (
	"context"
	"database/sql"
	"testing"

	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) (employee.LedgerRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return employee.NewLedgerRepository(db), mock
}

func TestLedgerGetBalance(t *testing.T) {
	empID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		ledger, mock := newLedger(t)
		mock.ExpectQuery("SELECT total_leave_days, used_leave_days").
			WithArgs(empID).
			WillReturnRows(sqlmock.NewRows([]string{"total_leave_days", "used_leave_days"}).AddRow(20, 8))

		b, err := ledger.GetBalance(context.Background(), empID)

		require.NoError(t, err)
		assert.Equal(t, 20, b.TotalLeaveDays)
		assert.Equal(t, 8, b.UsedLeaveDays)
		assert.Equal(t, 12, b.AvailableLeaveDays())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown employee", func(t *testing.T) {
		ledger, mock := newLedger(t)
		mock.ExpectQuery("SELECT total_leave_days, used_leave_days").
			WithArgs(empID).
			WillReturnError(sql.ErrNoRows)

		_, err := ledger.GetBalance(context.Background(), empID)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestLedgerAdjustUsed(t *testing.T) {
	empID := uuid.NewString()

	t.Run("adjustment within range applies", func(t *testing.T) {
		ledger, mock := newLedger(t)
		mock.ExpectExec("UPDATE employees").
			WithArgs(3, empID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.AdjustUsed(context.Background(), empID, 3)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refund within range applies", func(t *testing.T) {
		ledger, mock := newLedger(t)
		mock.ExpectExec("UPDATE employees").
			WithArgs(-3, empID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.AdjustUsed(context.Background(), empID, -3)

		require.NoError(t, err)
	})

	t.Run("adjustment past the entitlement refused", func(t *testing.T) {
		ledger, mock := newLedger(t)
		mock.ExpectExec("UPDATE employees").
			WithArgs(5, empID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		// Probe distinguishes an out-of-range adjustment from a missing row.
		mock.ExpectQuery("SELECT total_leave_days, used_leave_days").
			WithArgs(empID).
			WillReturnRows(sqlmock.NewRows([]string{"total_leave_days", "used_leave_days"}).AddRow(20, 18))

		err := ledger.AdjustUsed(context.Background(), empID, 5)

		assert.ErrorIs(t, err, employeeerrors.ErrLeaveBalanceOutOfRange)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing employee reported as not found", func(t *testing.T) {
		ledger, mock := newLedger(t)
		mock.ExpectExec("UPDATE employees").
			WithArgs(1, empID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT total_leave_days, used_leave_days").
			WithArgs(empID).
			WillReturnError(sql.ErrNoRows)

		err := ledger.AdjustUsed(context.Background(), empID, 1)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}
