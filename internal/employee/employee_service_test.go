package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-leavedesk/internal/employee"
	employeeerrors "go-leavedesk/internal/employee/errors"
	"go-leavedesk/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	withTxFn   func(tx *gorm.DB) employee.Repository
	createFn   func(ctx context.Context, e *employee.Employee) error
	findAllFn  func(ctx context.Context) ([]employee.Employee, error)
	findByIDFn func(ctx context.Context, id int64) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *gorm.DB) employee.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindAll(ctx context.Context) ([]employee.Employee, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *gorm.DB) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type employeeServiceDeps struct {
	sqlMock   sqlmock.Sqlmock
	redisMock redismock.ClientMock
	service   employee.Service
	repo      *fakeEmployeeRepository
	outbox    *fakeOutboxRepository
	closeFn   func() error
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeEmployeeRepository{}
	outbox := &fakeOutboxRepository{}
	svc := employee.NewServiceWithOutbox(gdb, repo, outbox, rdb)

	return &employeeServiceDeps{
		sqlMock:   sqlMock,
		redisMock: redisMock,
		service:   svc,
		repo:      repo,
		outbox:    outbox,
		closeFn:   db.Close,
	}
}

func expectEmployeeTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func intPtr(v int) *int { return &v }

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success with default balance", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		expectEmployeeTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(employee.ListCacheKey).SetVal(1)

		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, "Alice", e.Name)
			assert.Equal(t, employee.DefaultLeaveBalance, e.TotalLeaveBalance)
			e.EmployeeID = 1
			return nil
		}

		var published kafka.OutboxEvent
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			published = event
			return nil
		}

		resp, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{Name: "Alice"})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), resp.EmployeeID)
		assert.Equal(t, "Alice", resp.Name)
		assert.Equal(t, 20, resp.TotalLeaveBalance)

		assert.Equal(t, "employee_created", published.EventType)
		assert.Equal(t, "employee", published.AggregateType)
		assert.Equal(t, "1", published.AggregateID)
		assert.NoError(t, kafka.ValidateOutboxEvent(published))

		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("success with explicit balance", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		expectEmployeeTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(employee.ListCacheKey).SetVal(1)

		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, 12, e.TotalLeaveBalance)
			e.EmployeeID = 2
			return nil
		}

		resp, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			Name:              "Bob",
			TotalLeaveBalance: intPtr(12),
		})

		assert.NoError(t, err)
		assert.Equal(t, 12, resp.TotalLeaveBalance)
	})

	t.Run("success with explicit zero balance", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		expectEmployeeTx(t, deps.sqlMock, true)
		deps.redisMock.ExpectDel(employee.ListCacheKey).SetVal(1)

		// 0 eksplisit bukan "tidak dikirim": tidak boleh jatuh ke default 20
		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			assert.Equal(t, 0, e.TotalLeaveBalance)
			e.EmployeeID = 3
			return nil
		}

		resp, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			Name:              "Zed",
			TotalLeaveBalance: intPtr(0),
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, resp.TotalLeaveBalance)
	})

	t.Run("negative empty name", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		created := false
		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			created = true
			return nil
		}

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{Name: "   "})

		assert.ErrorIs(t, err, employeeerrors.ErrNameRequired)
		assert.False(t, created)
	})

	t.Run("negative balance below zero", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			Name:              "Carol",
			TotalLeaveBalance: intPtr(-1),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrNegativeBalance)
	})

	t.Run("negative repo error rolls back", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		expectEmployeeTx(t, deps.sqlMock, false)
		deps.repo.createFn = func(ctx context.Context, e *employee.Employee) error {
			return errors.New("db error")
		}

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{Name: "Dave"})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative outbox error rolls back", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		expectEmployeeTx(t, deps.sqlMock, false)
		deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
			return errors.New("outbox insert failed")
		}

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{Name: "Erin"})

		assert.Error(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			assert.Equal(t, int64(1), id)
			return &employee.Employee{EmployeeID: 1, Name: "Alice", TotalLeaveBalance: 15}, nil
		}

		resp, err := deps.service.GetByID(ctx, 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), resp.EmployeeID)
		assert.Equal(t, 15, resp.TotalLeaveBalance)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.GetByID(ctx, 99)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		queried := false
		deps.repo.findByIDFn = func(ctx context.Context, id int64) (*employee.Employee, error) {
			queried = true
			return nil, nil
		}

		_, err := deps.service.GetByID(ctx, 0)

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
		assert.False(t, queried)
	})
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss hits repo and fills cache", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		rows := []employee.Employee{
			{EmployeeID: 1, Name: "Alice", TotalLeaveBalance: 20, CreatedAt: time.Now(), UpdatedAt: time.Now()},
			{EmployeeID: 2, Name: "Bob", TotalLeaveBalance: 12},
		}
		deps.repo.findAllFn = func(ctx context.Context) ([]employee.Employee, error) {
			return rows, nil
		}

		expected := []employee.EmployeeResponse{
			{EmployeeID: 1, Name: "Alice", TotalLeaveBalance: 20},
			{EmployeeID: 2, Name: "Bob", TotalLeaveBalance: 12},
		}
		jsonData, err := json.Marshal(expected)
		assert.NoError(t, err)

		deps.redisMock.ExpectGet(employee.ListCacheKey).RedisNil()
		deps.redisMock.ExpectSet(employee.ListCacheKey, jsonData, 5*time.Minute).SetVal("OK")

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("cache hit skips repo", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		queried := false
		deps.repo.findAllFn = func(ctx context.Context) ([]employee.Employee, error) {
			queried = true
			return nil, nil
		}

		cached := []employee.EmployeeResponse{{EmployeeID: 1, Name: "Alice", TotalLeaveBalance: 15}}
		jsonData, err := json.Marshal(cached)
		assert.NoError(t, err)
		deps.redisMock.ExpectGet(employee.ListCacheKey).SetVal(string(jsonData))

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.False(t, queried)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		deps.redisMock.ExpectGet(employee.ListCacheKey).RedisNil()
		deps.repo.findAllFn = func(ctx context.Context) ([]employee.Employee, error) {
			return nil, errors.New("db error")
		}

		resp, err := deps.service.GetAll(ctx)

		assert.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("redis down falls back to repo", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)
		defer deps.closeFn()

		deps.redisMock.ExpectGet(employee.ListCacheKey).SetErr(errors.New("connection refused"))
		deps.redisMock.ExpectSet(employee.ListCacheKey, []byte(`[{"employee_id":3,"name":"Cleo","total_leave_balance":20}]`), 5*time.Minute).SetVal("OK")

		deps.repo.findAllFn = func(ctx context.Context) ([]employee.Employee, error) {
			return []employee.Employee{{EmployeeID: 3, Name: "Cleo", TotalLeaveBalance: 20}}, nil
		}

		resp, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Cleo", resp[0].Name)
	})
}
