package kafka_test

import (
	"context"
	"testing"
	"time"

	"go-leavedesk/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupOutboxRepoTest(t *testing.T) (kafka.OutboxRepository, sqlmock.Sqlmock, func() error) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	assert.NoError(t, err)

	return kafka.NewOutboxRepository(gdb), mock, db.Close
}

func TestOutboxRepository_Create(t *testing.T) {
	repo, mock, closeFn := setupOutboxRepoTest(t)
	defer closeFn()

	event := kafka.OutboxEvent{
		ID:            "4f0c40ee-6a86-4f9e-9b3f-0df8e8a9c001",
		RequestID:     "req-1",
		AggregateType: "employee",
		AggregateID:   "1",
		EventType:     "employee_created",
		Topic:         "leave.employee.lifecycle.v1",
		Payload:       []byte(`{"employee_id":1}`),
		Status:        kafka.OutboxStatusPending,
	}

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(
			event.ID, event.RequestID, event.AggregateType,
			event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), event)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	repo, mock, closeFn := setupOutboxRepoTest(t)
	defer closeFn()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow(
		"evt-1", "leave_request", "7", "leave_status_changed",
		"leave.request.status.v1", []byte(`{}`), kafka.OutboxStatusPending, 0, now,
	)

	mock.ExpectQuery("FROM outbox_events").
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
		WillReturnRows(rows)

	events, err := repo.ListPending(context.Background(), 50)

	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "evt-1", events[0].ID)
	assert.Equal(t, "leave_status_changed", events[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	repo, mock, closeFn := setupOutboxRepoTest(t)
	defer closeFn()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(kafka.OutboxStatusSent, "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkSent(context.Background(), "evt-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	repo, mock, closeFn := setupOutboxRepoTest(t)
	defer closeFn()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(kafka.OutboxStatusFailed, "broker unreachable", "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFailed(context.Background(), "evt-1", "broker unreachable")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{
		ID:      "evt-1",
		Topic:   "leave.request.status.v1",
		Payload: []byte(`{}`),
		Status:  kafka.OutboxStatusPending,
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, kafka.ValidateOutboxEvent(valid))
	})

	t.Run("missing id", func(t *testing.T) {
		e := valid
		e.ID = ""
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})

	t.Run("missing topic", func(t *testing.T) {
		e := valid
		e.Topic = ""
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})

	t.Run("empty payload", func(t *testing.T) {
		e := valid
		e.Payload = nil
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})

	t.Run("unknown status", func(t *testing.T) {
		e := valid
		e.Status = "queued"
		assert.Error(t, kafka.ValidateOutboxEvent(e))
	})
}
