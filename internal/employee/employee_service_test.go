package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeEmployeeRepo struct {
	createFn      func(ctx context.Context, e *employee.Employee) error
	findAllFn     func(ctx context.Context) ([]employee.Employee, error)
	findByIDFn    func(ctx context.Context, id string) (*employee.Employee, error)
	findByEmailFn func(ctx context.Context, email string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error {
	return f.createFn(ctx, e)
}

func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return f.findAllFn(ctx)
}

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeEmployeeRepo) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return f.findByEmailFn(ctx, email)
}

type fakeBalanceLedger struct {
	getBalanceFn func(ctx context.Context, employeeID string) (employee.Balance, error)
}

func (f *fakeBalanceLedger) WithTx(tx *sql.Tx) employee.LedgerRepository { return f }

func (f *fakeBalanceLedger) GetBalance(ctx context.Context, employeeID string) (employee.Balance, error) {
	return f.getBalanceFn(ctx, employeeID)
}

func (f *fakeBalanceLedger) AdjustUsed(ctx context.Context, employeeID string, delta int) error {
	return nil
}

type fakeSequence struct {
	value int64
}

func (f *fakeSequence) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.value++
	return f.value, nil
}

func TestCreateEmployee(t *testing.T) {
	t.Run("success assigns number and hashes password", func(t *testing.T) {
		var created *employee.Employee
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.Employee) error {
				created = e
				return nil
			},
		}
		svc := employee.NewService(repo, &fakeBalanceLedger{}, &fakeSequence{value: 6}, nil)

		resp, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			FullName:   "John Miller",
			Email:      "john.miller@example.com",
			Password:   "password123",
			Department: "Engineering",
			Role:       employee.RoleEmployee,
		})

		require.NoError(t, err)
		assert.Equal(t, "EMP-000007", resp.EmployeeNumber)
		assert.Equal(t, 20, resp.TotalLeaveDays)
		assert.Equal(t, 0, resp.UsedLeaveDays)
		require.NotNil(t, created)
		assert.NotEqual(t, "password123", created.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
	})

	t.Run("explicit entitlement overrides the default", func(t *testing.T) {
		repo := &fakeEmployeeRepo{
			createFn: func(ctx context.Context, e *employee.Employee) error { return nil },
		}
		svc := employee.NewService(repo, &fakeBalanceLedger{}, &fakeSequence{}, nil)

		days := 30
		resp, err := svc.Create(context.Background(), employee.CreateEmployeeRequest{
			FullName:       "Sarah Admin",
			Email:          "sarah.admin@example.com",
			Password:       "password123",
			Department:     "Human Resources",
			Role:           employee.RoleManager,
			TotalLeaveDays: &days,
		})

		require.NoError(t, err)
		assert.Equal(t, 30, resp.TotalLeaveDays)
	})
}

func TestGetEmployeeByID(t *testing.T) {
	t.Run("malformed id refused", func(t *testing.T) {
		svc := employee.NewService(&fakeEmployeeRepo{}, &fakeBalanceLedger{}, &fakeSequence{}, nil)

		_, err := svc.GetByID(context.Background(), "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})
}

func TestGetBalance(t *testing.T) {
	empID := uuid.NewString()

	t.Run("malformed id refused before cache and ledger", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		ledgerHit := false
		ledger := &fakeBalanceLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				ledgerHit = true
				return employee.Balance{}, nil
			},
		}
		svc := employee.NewService(&fakeEmployeeRepo{}, ledger, &fakeSequence{}, rdb)

		_, err := svc.GetBalance(context.Background(), "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
		assert.False(t, ledgerHit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss reads the ledger and caches", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		ledger := &fakeBalanceLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 7}, nil
			},
		}
		svc := employee.NewService(&fakeEmployeeRepo{}, ledger, &fakeSequence{}, rdb)

		expected := employee.BalanceResponse{
			EmployeeID:         empID,
			TotalLeaveDays:     20,
			UsedLeaveDays:      7,
			AvailableLeaveDays: 13,
		}
		payload, err := json.Marshal(expected)
		require.NoError(t, err)

		key := employee.GetBalanceCacheKey(empID)
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, payload, 5*time.Minute).SetVal("OK")

		resp, err := svc.GetBalance(context.Background(), empID)

		require.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hit skips the ledger", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		ledgerHit := false
		ledger := &fakeBalanceLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				ledgerHit = true
				return employee.Balance{}, nil
			},
		}
		svc := employee.NewService(&fakeEmployeeRepo{}, ledger, &fakeSequence{}, rdb)

		cached := employee.BalanceResponse{
			EmployeeID:         empID,
			TotalLeaveDays:     20,
			UsedLeaveDays:      3,
			AvailableLeaveDays: 17,
		}
		payload, err := json.Marshal(cached)
		require.NoError(t, err)
		mock.ExpectGet(employee.GetBalanceCacheKey(empID)).SetVal(string(payload))

		resp, err := svc.GetBalance(context.Background(), empID)

		require.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.False(t, ledgerHit)
	})

	t.Run("available days derived from counters", func(t *testing.T) {
		ledger := &fakeBalanceLedger{
			getBalanceFn: func(ctx context.Context, employeeID string) (employee.Balance, error) {
				return employee.Balance{TotalLeaveDays: 20, UsedLeaveDays: 20}, nil
			},
		}
		svc := employee.NewService(&fakeEmployeeRepo{}, ledger, &fakeSequence{}, nil)

		resp, err := svc.GetBalance(context.Background(), empID)

		require.NoError(t, err)
		assert.Equal(t, 0, resp.AvailableLeaveDays)
	})
}
