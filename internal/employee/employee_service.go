package employee

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

const BalanceKeyPrefix = "employees:balance:"

// GetBalanceCacheKey is shared with the leave module, which invalidates the
// entry whenever a decision changes the used-leave counter.
func GetBalanceCacheKey(employeeID string) string {
	return BalanceKeyPrefix + employeeID
}

const balanceCacheTTL = 5 * time.Minute

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetBalance(ctx context.Context, id string) (BalanceResponse, error)
}

type service struct {
	repo    Repository
	ledger  LedgerRepository
	counter counter.Repository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(
	repo Repository,
	ledger LedgerRepository,
	counterRepo counter.Repository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		repo:    repo,
		ledger:  ledger,
		counter: counterRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("create employee requested",
		zap.String("email", req.Email),
		zap.String("department", req.Department),
		zap.String("role", req.Role),
	)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("create employee hash password failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	nextVal, err := s.counter.GetNextValue(ctx, "employee_number")
	if err != nil {
		s.logger.Error("create employee generate number failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	totalDays := 20
	if req.TotalLeaveDays != nil {
		totalDays = *req.TotalLeaveDays
	}

	e := &Employee{
		ID:             uuid.New(),
		EmployeeNumber: fmt.Sprintf("EMP-%06d", nextVal),
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       string(hashed),
		Department:     req.Department,
		Role:           req.Role,
		TotalLeaveDays: totalDays,
		UsedLeaveDays:  0,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create employee success",
		zap.String("employee_id", e.ID.String()),
		zap.String("employee_number", e.EmployeeNumber),
	)
	return mapToResponse(*e), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(employees), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*e), nil
}

func (s *service) GetBalance(ctx context.Context, id string) (BalanceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return BalanceResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	cacheKey := GetBalanceCacheKey(id)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp BalanceResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// singleflight so a cache miss under load hits the database once
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		b, err := s.ledger.GetBalance(ctx, id)
		if err != nil {
			return nil, err
		}

		resp := BalanceResponse{
			EmployeeID:         id,
			TotalLeaveDays:     b.TotalLeaveDays,
			UsedLeaveDays:      b.UsedLeaveDays,
			AvailableLeaveDays: b.AvailableLeaveDays(),
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, balanceCacheTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		return BalanceResponse{}, err
	}

	return v.(BalanceResponse), nil
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID.String(),
		EmployeeNumber: e.EmployeeNumber,
		FullName:       e.FullName,
		Email:          e.Email,
		Department:     e.Department,
		Role:           e.Role,
		TotalLeaveDays: e.TotalLeaveDays,
		UsedLeaveDays:  e.UsedLeaveDays,
	}
}

func mapToListResponse(employees []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp
}
