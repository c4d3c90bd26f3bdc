package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-leave/internal/employee"
	employeeerrors "go-leave/internal/employee/errors"
	"go-leave/internal/events"
	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAllByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveOverviewResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	SetStatus(ctx context.Context, id, targetStatus, deciderID string) (LeaveResponse, error)
	Approve(ctx context.Context, id, deciderID string) (LeaveResponse, error)
	Reject(ctx context.Context, id, deciderID string) (LeaveResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	ledger  employee.LedgerRepository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger employee.LedgerRepository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		ledger:  ledger,
		counter: counterRepo,
		outbox:  outboxRepo,
		rdb:     rdb,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("create leave requested",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", req.LeaveType),
	)

	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1

	// Advisory check only. The submission is not serialized against other
	// submissions, so two racing requests can both pass here; the approval
	// path re-validates under the ledger guard and is the one that counts.
	balance, err := s.ledger.GetBalance(ctx, employeeID)
	if err != nil {
		s.logger.Error("create leave read balance failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if totalDays > balance.AvailableLeaveDays() {
		s.logger.Warn("create leave insufficient balance",
			zap.String("employee_id", employeeID),
			zap.Int("requested_days", totalDays),
			zap.Int("available_days", balance.AvailableLeaveDays()),
		)
		return LeaveResponse{}, leaveerrors.InsufficientBalance(balance.AvailableLeaveDays())
	}

	nextVal, err := s.counter.GetNextValue(ctx, "leave_request_number")
	if err != nil {
		s.logger.Error("create leave generate number failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:            uuid.New(),
		RequestNumber: fmt.Sprintf("LR-%06d", nextVal),
		EmployeeID:    empID,
		LeaveType:     req.LeaveType,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     totalDays,
		Reason:        req.Reason,
		Status:        StatusPending,
		AppliedAt:     time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueueRequestedEvent(ctx, tx, l); err != nil {
		s.logger.Error("create leave enqueue event failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("request_number", l.RequestNumber),
		zap.String("employee_id", employeeID),
		zap.Int("total_days", totalDays),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAllByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	leaves, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp, nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveOverviewResponse, error) {
	rows, err := s.repo.FindAllWithEmployee(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveOverviewResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToOverviewResponse(row)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) Approve(ctx context.Context, id, deciderID string) (LeaveResponse, error) {
	return s.SetStatus(ctx, id, StatusApproved, deciderID)
}

func (s *service) Reject(ctx context.Context, id, deciderID string) (LeaveResponse, error) {
	return s.SetStatus(ctx, id, StatusRejected, deciderID)
}

// SetStatus applies one row of the transition table. The status write and the
// used-leave adjustment share a transaction, so a decision either fully lands
// or leaves no trace.
func (s *service) SetStatus(ctx context.Context, id, targetStatus, deciderID string) (LeaveResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	decider, err := uuid.Parse(deciderID)
	if err != nil {
		return LeaveResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("set status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("set status load request failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	delta, ok := transitionDelta(l.Status, targetStatus, l.TotalDays)
	if !ok {
		s.logger.Warn("set status transition refused",
			zap.String("leave_id", id),
			zap.String("from", l.Status),
			zap.String("to", targetStatus),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if delta != 0 {
		ledgerTx := s.ledger.WithTx(tx)
		if err := ledgerTx.AdjustUsed(ctx, l.EmployeeID.String(), delta); err != nil {
			if errors.Is(err, employeeerrors.ErrLeaveBalanceOutOfRange) {
				balance, balErr := ledgerTx.GetBalance(ctx, l.EmployeeID.String())
				if balErr != nil {
					return LeaveResponse{}, balErr
				}
				s.logger.Warn("set status refused by ledger",
					zap.String("leave_id", id),
					zap.Int("delta", delta),
					zap.Int("available_days", balance.AvailableLeaveDays()),
				)
				return LeaveResponse{}, leaveerrors.InsufficientBalance(balance.AvailableLeaveDays())
			}
			s.logger.Error("set status adjust ledger failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	now := time.Now().UTC()
	l.Status = targetStatus
	l.DecidedBy = &decider
	l.DecidedAt = &now

	if err := qtx.UpdateStatus(ctx, l); err != nil {
		s.logger.Error("set status persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := s.enqueueDecidedEvent(ctx, tx, l, delta); err != nil {
		s.logger.Error("set status enqueue event failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("set status commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.invalidateBalanceCache(ctx, l.EmployeeID.String())

	s.logger.Info("set status success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
		zap.Int("ledger_delta", delta),
		zap.String("decided_by", deciderID),
	)
	return mapToResponse(*l), nil
}

func (s *service) enqueueRequestedEvent(ctx context.Context, tx *sql.Tx, l *Leave) error {
	payload, err := json.Marshal(events.LeaveRequestedEvent{
		EventType:     events.LeaveRequestedEventType,
		LeaveID:       l.ID.String(),
		RequestNumber: l.RequestNumber,
		EmployeeID:    l.EmployeeID.String(),
		LeaveType:     l.LeaveType,
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		TotalDays:     l.TotalDays,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     events.LeaveRequestedEventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) enqueueDecidedEvent(ctx context.Context, tx *sql.Tx, l *Leave, delta int) error {
	decidedBy := ""
	if l.DecidedBy != nil {
		decidedBy = l.DecidedBy.String()
	}
	payload, err := json.Marshal(events.LeaveDecidedEvent{
		EventType:     events.LeaveDecidedEventType,
		LeaveID:       l.ID.String(),
		RequestNumber: l.RequestNumber,
		EmployeeID:    l.EmployeeID.String(),
		Status:        l.Status,
		TotalDays:     l.TotalDays,
		LedgerDelta:   delta,
		DecidedBy:     decidedBy,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     events.LeaveDecidedEventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) invalidateBalanceCache(ctx context.Context, employeeID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, employee.GetBalanceCacheKey(employeeID)).Err(); err != nil {
		s.logger.Warn("invalidate balance cache failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID.String(),
		RequestNumber: l.RequestNumber,
		EmployeeID:    l.EmployeeID.String(),
		LeaveType:     l.LeaveType,
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		TotalDays:     l.TotalDays,
		Reason:        l.Reason,
		Status:        l.Status,
		AppliedAt:     l.AppliedAt.Format(time.RFC3339),
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func mapToOverviewResponse(row LeaveWithEmployee) LeaveOverviewResponse {
	resp := LeaveOverviewResponse{
		ID:            row.ID.String(),
		RequestNumber: row.RequestNumber,
		EmployeeID:    row.EmployeeID.String(),
		EmployeeName:  row.EmployeeName,
		Department:    row.Department,
		LeaveType:     row.LeaveType,
		StartDate:     row.StartDate.Format(dateLayout),
		EndDate:       row.EndDate.Format(dateLayout),
		TotalDays:     row.TotalDays,
		Reason:        row.Reason,
		Status:        row.Status,
		AppliedAt:     row.AppliedAt.Format(time.RFC3339),
	}
	if row.DecidedBy != nil {
		v := row.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if row.DecidedAt != nil {
		v := row.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}
