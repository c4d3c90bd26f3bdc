package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/leave"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveRepo struct {
	createFn              func(ctx context.Context, l *leave.Leave) error
	findByIDFn            func(ctx context.Context, id string) (*leave.Leave, error)
	findByIDForUpdateFn   func(ctx context.Context, id string) (*leave.Leave, error)
	findAllByEmployeeFn   func(ctx context.Context, employeeID string) ([]leave.Leave, error)
	findAllWithEmployeeFn func(ctx context.Context) ([]leave.LeaveWithEmployee, error)
	updateStatusFn        func(ctx context.Context, l *leave.Leave) error
}

func (f *fakeLeaveRepo) WithTx(tx *sql.Tx) leave.Repository { return f }

func (f *fakeLeaveRepo) Create(ctx context.Context, l *leave.Leave) error {
	return f.createFn(ctx, l)
}

func (f *fakeLeaveRepo) FindByID(ctx context.Context, id string) (*leave.Leave, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeLeaveRepo) FindByIDForUpdate(ctx context.Context, id string) (*leave.Leave, error) {
	return f.findByIDForUpdateFn(ctx, id)
}

func (f *fakeLeaveRepo) FindAllByEmployee(ctx context.Context, employeeID string) ([]leave.Leave, error) {
	return f.findAllByEmployeeFn(ctx, employeeID)
}

func (f *fakeLeaveRepo) FindAllWithEmployee(ctx context.Context) ([]leave.LeaveWithEmployee, error) {
	return f.findAllWithEmployeeFn(ctx)
}

func (f *fakeLeaveRepo) UpdateStatus(ctx context.Context, l *leave.Leave) error {
	return f.updateStatusFn(ctx, l)
}

type fakeLedger struct {
	getBalanceFn func(ctx context.Context, employeeID string) (employee.Balance, error)
	adjustUsedFn func(ctx context.Context, employeeID string, delta int) error
}

func (f *fakeLedger) WithTx(tx *sql.Tx) employee.LedgerRepository { return f }

func (f *fakeLedger) GetBalance(ctx context.Context, employeeID string) (employee.Balance, error) {
	return f.getBalanceFn(ctx, employeeID)
}

func (f *fakeLedger) AdjustUsed(ctx context.Context, employeeID string, delta int) error {
	return f.adjustUsedFn(ctx, employeeID, delta)
}

type fakeCounter struct {
	next int64
}

func (f *fakeCounter) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func pendingLeave(employeeID uuid.UUID, days int) *leave.Leave {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	return &leave.Leave{
		ID:            uuid.New(),
		RequestNumber: "LR-000042",
		EmployeeID:    employeeID,
		LeaveType:     leave.LeaveTypeCasual,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, days-1),
		TotalDays:     days,
		Status:        leave.StatusPending,
		AppliedAt:     start.AddDate(0, 0, -7),
	}
}

func TestCreateLeave(t *testing.T) {
	empID := uuid.New()

	t.Run("success counts inclusive days", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var created *leave.Leave
		repo := &fakeLeaveRepo{
			createFn: func(ctx context.Context, l *leave.Leave) error {
				created = l
				return nil
			},
		}
		ledger := &fakeLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 0}, nil
			},
		}
		outbox := &fakeOutbox{}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, outbox, nil)

		resp, err := svc.Create(context.Background(), empID.String(), leave.CreateLeaveRequest{
			LeaveType: leave.LeaveTypeAnnual,
			StartDate: "2026-09-07",
			EndDate:   "2026-09-11",
			Reason:    "Vacation",
		})

		require.NoError(t, err)
		assert.Equal(t, 5, resp.TotalDays)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, "LR-000001", resp.RequestNumber)
		require.NotNil(t, created)
		assert.Equal(t, empID, created.EmployeeID)
		require.Len(t, outbox.created, 1)
		assert.Equal(t, "leave.requested", outbox.created[0].EventType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single day request counts one day", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		repo := &fakeLeaveRepo{
			createFn: func(ctx context.Context, l *leave.Leave) error { return nil },
		}
		ledger := &fakeLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 19}, nil
			},
		}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		resp, err := svc.Create(context.Background(), empID.String(), leave.CreateLeaveRequest{
			LeaveType: leave.LeaveTypeSick,
			StartDate: "2026-09-07",
			EndDate:   "2026-09-07",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("end before start refused", func(t *testing.T) {
		db, _ := newTestDB(t)
		svc := leave.NewService(db, &fakeLeaveRepo{}, &fakeLedger{}, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.Create(context.Background(), empID.String(), leave.CreateLeaveRequest{
			LeaveType: leave.LeaveTypeCasual,
			StartDate: "2026-09-11",
			EndDate:   "2026-09-07",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("malformed date refused", func(t *testing.T) {
		db, _ := newTestDB(t)
		svc := leave.NewService(db, &fakeLeaveRepo{}, &fakeLedger{}, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.Create(context.Background(), empID.String(), leave.CreateLeaveRequest{
			LeaveType: leave.LeaveTypeCasual,
			StartDate: "07-09-2026",
			EndDate:   "2026-09-11",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("insufficient balance reports available days", func(t *testing.T) {
		db, _ := newTestDB(t)
		ledger := &fakeLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 18}, nil
			},
		}
		svc := leave.NewService(db, &fakeLeaveRepo{}, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.Create(context.Background(), empID.String(), leave.CreateLeaveRequest{
			LeaveType: leave.LeaveTypeCasual,
			StartDate: "2026-09-07",
			EndDate:   "2026-09-09",
		})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
		assert.Contains(t, appErr.Message, "2 day(s)")
	})

	t.Run("request matching the remaining balance passes", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		repo := &fakeLeaveRepo{
			createFn: func(ctx context.Context, l *leave.Leave) error { return nil },
		}
		ledger := &fakeLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 15}, nil
			},
		}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		resp, err := svc.Create(context.Background(), empID.String(), leave.CreateLeaveRequest{
			LeaveType: leave.LeaveTypeAnnual,
			StartDate: "2026-09-07",
			EndDate:   "2026-09-11",
		})

		require.NoError(t, err)
		assert.Equal(t, 5, resp.TotalDays)
	})
}

func TestSetStatus(t *testing.T) {
	empID := uuid.New()
	managerID := uuid.New()

	t.Run("approve from pending consumes days", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		l := pendingLeave(empID, 3)
		var gotDelta int
		var updated *leave.Leave

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return l, nil
			},
			updateStatusFn: func(ctx context.Context, l *leave.Leave) error {
				updated = l
				return nil
			},
		}
		ledger := &fakeLedger{
			adjustUsedFn: func(ctx context.Context, employeeID string, delta int) error {
				gotDelta = delta
				return nil
			},
		}
		outbox := &fakeOutbox{}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, outbox, nil)

		resp, err := svc.Approve(context.Background(), l.ID.String(), managerID.String())

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, 3, gotDelta)
		require.NotNil(t, updated)
		require.NotNil(t, updated.DecidedBy)
		assert.Equal(t, managerID, *updated.DecidedBy)
		assert.NotNil(t, updated.DecidedAt)
		require.Len(t, outbox.created, 1)
		assert.Equal(t, "leave.decided", outbox.created[0].EventType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reject from pending leaves ledger alone", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		l := pendingLeave(empID, 3)
		adjustCalled := false

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return l, nil
			},
			updateStatusFn: func(ctx context.Context, l *leave.Leave) error { return nil },
		}
		ledger := &fakeLedger{
			adjustUsedFn: func(ctx context.Context, employeeID string, delta int) error {
				adjustCalled = true
				return nil
			},
		}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		resp, err := svc.Reject(context.Background(), l.ID.String(), managerID.String())

		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.False(t, adjustCalled)
	})

	t.Run("reversal of approval refunds days", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		l := pendingLeave(empID, 4)
		l.Status = leave.StatusApproved
		var gotDelta int

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return l, nil
			},
			updateStatusFn: func(ctx context.Context, l *leave.Leave) error { return nil },
		}
		ledger := &fakeLedger{
			adjustUsedFn: func(ctx context.Context, employeeID string, delta int) error {
				gotDelta = delta
				return nil
			},
		}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		resp, err := svc.Reject(context.Background(), l.ID.String(), managerID.String())

		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Equal(t, -4, gotDelta)
	})

	t.Run("repeated approval is idempotent", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		l := pendingLeave(empID, 4)
		l.Status = leave.StatusApproved
		adjustCalled := false

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return l, nil
			},
			updateStatusFn: func(ctx context.Context, l *leave.Leave) error { return nil },
		}
		ledger := &fakeLedger{
			adjustUsedFn: func(ctx context.Context, employeeID string, delta int) error {
				adjustCalled = true
				return nil
			},
		}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		resp, err := svc.Approve(context.Background(), l.ID.String(), managerID.String())

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.False(t, adjustCalled)
	})

	t.Run("moving back to pending refused", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		l := pendingLeave(empID, 4)
		l.Status = leave.StatusApproved

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return l, nil
			},
		}
		svc := leave.NewService(db, repo, &fakeLedger{}, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.SetStatus(context.Background(), l.ID.String(), leave.StatusPending, managerID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidStatusTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ledger refusal aborts the decision", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		l := pendingLeave(empID, 3)
		statusWritten := false

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return l, nil
			},
			updateStatusFn: func(ctx context.Context, l *leave.Leave) error {
				statusWritten = true
				return nil
			},
		}
		ledger := &fakeLedger{
			adjustUsedFn: func(ctx context.Context, employeeID string, delta int) error {
				return employeeerrors.ErrLeaveBalanceOutOfRange
			},
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 18}, nil
			},
		}
		svc := leave.NewService(db, repo, ledger, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.Approve(context.Background(), l.ID.String(), managerID.String())

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
		assert.Contains(t, appErr.Message, "2 day(s)")
		assert.False(t, statusWritten)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown request reported as not found", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		repo := &fakeLeaveRepo{
			findByIDForUpdateFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return nil, sql.ErrNoRows
			},
		}
		svc := leave.NewService(db, repo, &fakeLedger{}, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.Approve(context.Background(), uuid.NewString(), managerID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("malformed leave id refused before touching the database", func(t *testing.T) {
		db, _ := newTestDB(t)
		svc := leave.NewService(db, &fakeLeaveRepo{}, &fakeLedger{}, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.Approve(context.Background(), "not-a-uuid", managerID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidLeaveID)
	})
}

func TestGetByID(t *testing.T) {
	t.Run("unknown id mapped to not found", func(t *testing.T) {
		db, _ := newTestDB(t)
		repo := &fakeLeaveRepo{
			findByIDFn: func(ctx context.Context, id string) (*leave.Leave, error) {
				return nil, errors.New("record not found")
			},
		}
		svc := leave.NewService(db, repo, &fakeLedger{}, &fakeCounter{}, &fakeOutbox{}, nil)

		_, err := svc.GetByID(context.Background(), uuid.NewString())
		assert.Error(t, err)
	})
}
