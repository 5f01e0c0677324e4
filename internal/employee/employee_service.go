package employee

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	employeeerrors "go-leavedesk/internal/employee/errors"
	"go-leavedesk/internal/events"
	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// DefaultLeaveBalance dipakai jika pembuat employee tidak mengirim saldo awal.
const DefaultLeaveBalance = 20

const ListCacheKey = "employees:list"

const listCacheTTL = 5 * time.Minute

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id int64) (EmployeeResponse, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
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
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("name", req.Name),
	)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.logger.Warn("create employee empty name", zap.String("request_id", rid))
		return EmployeeResponse{}, employeeerrors.ErrNameRequired
	}

	balance := DefaultLeaveBalance
	if req.TotalLeaveBalance != nil {
		if *req.TotalLeaveBalance < 0 {
			return EmployeeResponse{}, employeeerrors.ErrNegativeBalance
		}
		balance = *req.TotalLeaveBalance
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(tx.Error))
		return EmployeeResponse{}, tx.Error
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl := &Employee{
		Name:              name,
		TotalLeaveBalance: balance,
	}
	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.EmployeeCreatedEvent{
			EventType:    "employee_created",
			RequestID:    rid,
			EmployeeID:   empl.EmployeeID,
			Name:         empl.Name,
			LeaveBalance: empl.TotalLeaveBalance,
			OccurredAt:   time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "employee",
			AggregateID:   formatID(empl.EmployeeID),
			EventType:     event.EventType,
			Topic:         events.EmployeeCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.Int64("employee_id", empl.EmployeeID),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	InvalidateListCache(ctx, s.rdb, s.logger)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.Int64("employee_id", empl.EmployeeID),
		zap.Int("total_leave_balance", empl.TotalLeaveBalance),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, ListCacheKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight agar cache-miss serentak hanya membebani DB satu kali
	v, err, _ := s.sf.Do(ListCacheKey, func() (interface{}, error) {
		emps, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(emps)

		// 3. Simpan ke Redis dengan TTL pendek; saldo berubah saat approval
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, ListCacheKey, jsonData, listCacheTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id int64) (EmployeeResponse, error) {
	if id < 1 {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*e), nil
}

// InvalidateListCache menghapus cache daftar employee. Dipanggil oleh modul
// lain yang memutasi saldo (approval cuti) agar listing tidak basi.
func InvalidateListCache(ctx context.Context, rdb *redis.Client, logger *zap.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, ListCacheKey).Err(); err != nil && logger != nil {
		logger.Error("failed to invalidate employee list cache",
			zap.Error(err),
			zap.String("key", ListCacheKey),
		)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func mapToResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		EmployeeID:        e.EmployeeID,
		Name:              e.Name,
		TotalLeaveBalance: e.TotalLeaveBalance,
	}
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		resp[i] = mapToResponse(e)
	}
	return resp
}
