package leave

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"go-leavedesk/internal/employee"
	"go-leavedesk/internal/events"
	leaveerrors "go-leavedesk/internal/leave/errors"
	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// DefaultLeaveType dipakai jika pengaju tidak menyebut jenis cuti.
const DefaultLeaveType = "Casual"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	UpdateStatus(ctx context.Context, requestID int64, status string) (StatusUpdateResponse, error)
	MonthlySummary(ctx context.Context, employeeID int64, month, year int) ([]LeaveResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, rdb: rdb, logger: l}
}

func (s *service) Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("apply leave requested",
		zap.String("request_id", rid),
		zap.Int64("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	startDate, endDate, days, err := validateDateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("apply leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	leaveType := strings.TrimSpace(req.LeaveType)
	if leaveType == "" {
		leaveType = DefaultLeaveType
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("apply leave begin tx failed", zap.Error(tx.Error))
		return LeaveResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Kunci baris employee sampai commit: cek saldo, cek overlap, dan insert
	// harus atomik terhadap pengajuan paralel untuk employee yang sama.
	balance, err := qtx.GetEmployeeBalanceForUpdate(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		s.logger.Error("apply leave balance lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if days > balance {
		s.logger.Warn("apply leave insufficient balance",
			zap.Int64("employee_id", req.EmployeeID),
			zap.Int("days", days),
			zap.Int("balance", balance),
		)
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	overlap, err := qtx.HasApprovedOverlap(ctx, req.EmployeeID, startDate, endDate)
	if err != nil {
		s.logger.Error("apply leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("apply leave overlap detected",
			zap.Int64("employee_id", req.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &LeaveRequest{
		EmployeeID: req.EmployeeID,
		LeaveType:  leaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Days:       days,
		Status:     StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	s.logger.Info("apply leave success",
		zap.String("request_id", rid),
		zap.Int64("leave_request_id", l.RequestID),
		zap.Int64("employee_id", l.EmployeeID),
		zap.Int("days", l.Days),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) UpdateStatus(ctx context.Context, requestID int64, status string) (StatusUpdateResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	target, err := normalizeStatus(status)
	if err != nil {
		s.logger.Warn("update leave status invalid target",
			zap.Int64("leave_request_id", requestID),
			zap.String("status", status),
		)
		return StatusUpdateResponse{}, err
	}

	s.logger.Debug("update leave status requested",
		zap.String("request_id", rid),
		zap.Int64("leave_request_id", requestID),
		zap.String("target_status", target),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("update leave status begin tx failed", zap.Error(tx.Error))
		return StatusUpdateResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusUpdateResponse{}, leaveerrors.ErrRequestNotFound
		}
		s.logger.Error("update leave status fetch failed", zap.Error(err))
		return StatusUpdateResponse{}, err
	}

	// Transisi idempoten: status sama berarti no-op, tanpa mutasi apa pun.
	if l.Status == target {
		return StatusUpdateResponse{
			RequestID: l.RequestID,
			Status:    l.Status,
			Message:   "no_change",
		}, nil
	}

	// Approved dan Rejected adalah status terminal.
	if l.Status != StatusPending {
		s.logger.Warn("update leave status transition blocked",
			zap.Int64("leave_request_id", requestID),
			zap.String("from_status", l.Status),
			zap.String("to_status", target),
		)
		return StatusUpdateResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if target == StatusApproved {
		// Saldo bisa berubah sejak pengajuan; cek ulang di dalam kunci.
		balance, err := qtx.GetEmployeeBalanceForUpdate(ctx, l.EmployeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return StatusUpdateResponse{}, leaveerrors.ErrEmployeeNotFound
			}
			s.logger.Error("update leave status balance lookup failed", zap.Error(err))
			return StatusUpdateResponse{}, err
		}
		if l.Days > balance {
			s.logger.Warn("update leave status insufficient balance at approval",
				zap.Int64("leave_request_id", requestID),
				zap.Int("days", l.Days),
				zap.Int("balance", balance),
			)
			return StatusUpdateResponse{}, leaveerrors.ErrInsufficientBalanceAtApproval
		}

		if err := qtx.UpdateStatus(ctx, requestID, StatusApproved); err != nil {
			s.logger.Error("update leave status persist failed", zap.Error(err))
			return StatusUpdateResponse{}, err
		}
		if err := qtx.DeductEmployeeBalance(ctx, l.EmployeeID, l.Days); err != nil {
			s.logger.Error("update leave status deduct failed", zap.Error(err))
			return StatusUpdateResponse{}, err
		}
	} else {
		if err := qtx.UpdateStatus(ctx, requestID, StatusRejected); err != nil {
			s.logger.Error("update leave status persist failed", zap.Error(err))
			return StatusUpdateResponse{}, err
		}
	}

	if s.outbox != nil {
		event := events.LeaveStatusChangedEvent{
			EventType:      "leave_status_changed",
			RequestID:      rid,
			LeaveRequestID: l.RequestID,
			EmployeeID:     l.EmployeeID,
			OldStatus:      l.Status,
			NewStatus:      target,
			Days:           l.Days,
			OccurredAt:     time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return StatusUpdateResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "leave_request",
			AggregateID:   strconv.FormatInt(l.RequestID, 10),
			EventType:     event.EventType,
			Topic:         events.LeaveStatusChangedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("update leave status outbox persist failed", zap.Error(err))
			return StatusUpdateResponse{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("update leave status commit failed",
			zap.Int64("leave_request_id", requestID),
			zap.Error(err),
		)
		return StatusUpdateResponse{}, err
	}

	if target == StatusApproved {
		// Saldo employee berubah; listing yang di-cache ikut basi.
		employee.InvalidateListCache(ctx, s.rdb, s.logger)
	}

	s.logger.Info("update leave status success",
		zap.String("request_id", rid),
		zap.Int64("leave_request_id", requestID),
		zap.String("status", target),
	)

	return StatusUpdateResponse{RequestID: requestID, Status: target}, nil
}

func (s *service) MonthlySummary(ctx context.Context, employeeID int64, month, year int) ([]LeaveResponse, error) {
	if employeeID < 1 {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}
	if month < 1 || month > 12 {
		return nil, leaveerrors.ErrInvalidMonth
	}
	// year 0 berarti tidak dikirim; selain itu harus tahun yang valid
	if year < 0 {
		return nil, leaveerrors.ErrInvalidYear
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	rows, err := s.repo.FindByEmployeeAndMonth(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func validateDateRange(start, end string) (time.Time, time.Time, int, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, 0, err
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, 0, leaveerrors.ErrEndBeforeStart
	}

	// Hitungan hari inklusif: [start, end] = end - start + 1
	days := int(endDate.Sub(startDate).Hours()/24) + 1
	return startDate, endDate, days, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func normalizeStatus(status string) (string, error) {
	normalized := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(status)))
	switch normalized {
	case StatusApproved, StatusRejected:
		return normalized, nil
	default:
		return "", leaveerrors.ErrInvalidStatus
	}
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		RequestID:  l.RequestID,
		EmployeeID: l.EmployeeID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Days:       l.Days,
		Status:     l.Status,
	}
	if !l.AppliedOn.IsZero() {
		resp.AppliedOn = l.AppliedOn.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(rows []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(rows))
	for i, l := range rows {
		resp[i] = mapToResponse(l)
	}
	return resp
}
