package auth_test

import (
	"context"
	"errors"
	"testing"

	"go-leave/internal/auth"
	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/employee"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeEmployeeRepo struct {
	byEmail map[string]*employee.Employee
	byID    map[string]*employee.Employee
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error { return nil }

func (f *fakeEmployeeRepo) FindAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, errors.New("record not found")
}

func (f *fakeEmployeeRepo) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	if e, ok := f.byEmail[email]; ok {
		return e, nil
	}
	return nil, errors.New("record not found")
}

func seedEmployee(t *testing.T, password string) *employee.Employee {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &employee.Employee{
		ID:             uuid.New(),
		EmployeeNumber: "EMP-000002",
		FullName:       "John Miller",
		Email:          "john.miller@example.com",
		Password:       string(hashed),
		Department:     "Engineering",
		Role:           employee.RoleEmployee,
		TotalLeaveDays: 20,
	}
}

func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	e := seedEmployee(t, "password123")
	repo := &fakeEmployeeRepo{
		byEmail: map[string]*employee.Employee{e.Email: e},
		byID:    map[string]*employee.Employee{e.ID.String(): e},
	}
	svc := auth.NewService(repo)

	t.Run("success issues both tokens", func(t *testing.T) {
		access, refresh, resp, err := svc.Login(context.Background(), e.Email, "password123")

		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, e.ID.String(), resp.EmployeeID)
		assert.Equal(t, employee.RoleEmployee, resp.Role)
	})

	t.Run("wrong password refused", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), e.Email, "wrong-password")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email refused with the same error", func(t *testing.T) {
		_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	e := seedEmployee(t, "password123")
	repo := &fakeEmployeeRepo{
		byEmail: map[string]*employee.Employee{e.Email: e},
		byID:    map[string]*employee.Employee{e.ID.String(): e},
	}
	svc := auth.NewService(repo)

	t.Run("round trip issues fresh tokens", func(t *testing.T) {
		_, refresh, _, err := svc.Login(context.Background(), e.Email, "password123")
		require.NoError(t, err)

		newAccess, newRefresh, resp, err := svc.RefreshToken(context.Background(), refresh)

		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)
		assert.Equal(t, e.ID.String(), resp.EmployeeID)
	})

	t.Run("garbage token refused", func(t *testing.T) {
		_, _, _, err := svc.RefreshToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, autherrors.ErrInvalidRefreshToken)
	})
}

func TestGetMe(t *testing.T) {
	e := seedEmployee(t, "password123")
	repo := &fakeEmployeeRepo{
		byID: map[string]*employee.Employee{e.ID.String(): e},
	}
	svc := auth.NewService(repo)

	resp, err := svc.GetMe(context.Background(), e.ID.String())

	require.NoError(t, err)
	assert.Equal(t, e.Email, resp.Email)
	assert.Equal(t, e.Department, resp.Department)
}
