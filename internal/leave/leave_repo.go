package leave

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*LeaveRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	GetEmployeeBalanceForUpdate(ctx context.Context, employeeID int64) (int, error)
	DeductEmployeeBalance(ctx context.Context, employeeID int64, days int) error
	HasApprovedOverlap(ctx context.Context, employeeID int64, startDate, endDate time.Time) (bool, error)
	FindByEmployeeAndMonth(ctx context.Context, employeeID int64, month, year int) ([]LeaveRequest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("applied_on DESC").
		Find(&rows).Error
	return rows, err
}

// FindByIDForUpdate mengunci baris request selama transaksi berjalan
// agar dua approval paralel tidak saling mendahului.
func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "request_id = ?", id).Error
	return &l, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("request_id = ?", id).
		Update("status", status).Error
}

// GetEmployeeBalanceForUpdate membaca saldo dengan SELECT ... FOR UPDATE.
// Baris employee adalah satu-satunya resource yang diperebutkan; saldo
// hanya boleh dibaca-lalu-dikurangi di dalam kunci ini.
func (r *repository) GetEmployeeBalanceForUpdate(ctx context.Context, employeeID int64) (int, error) {
	var row struct {
		TotalLeaveBalance int
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("total_leave_balance").
		Where("employee_id = ?", employeeID).
		Take(&row).Error
	return row.TotalLeaveBalance, err
}

func (r *repository) DeductEmployeeBalance(ctx context.Context, employeeID int64, days int) error {
	res := r.db.WithContext(ctx).
		Table("employees").
		Where("employee_id = ?", employeeID).
		UpdateColumn("total_leave_balance", gorm.Expr("total_leave_balance - ?", days))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) HasApprovedOverlap(ctx context.Context, employeeID int64, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindByEmployeeAndMonth(ctx context.Context, employeeID int64, month, year int) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("EXTRACT(MONTH FROM applied_on) = ?", month).
		Where("EXTRACT(YEAR FROM applied_on) = ?", year).
		Order("applied_on DESC").
		Find(&rows).Error
	return rows, err
}
