package postgres

import (
	"context"
	"testing"
	"time"

	"buyback-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func outboxRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "dedup_key", "order_id", "recipient_email", "recipient_name",
		"template", "payload", "status", "attempts", "last_error", "created_on", "sent_on"})
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewOutboxRepository(db)
	ctx := context.Background()

	t.Run("IncludesFailedRowsWithAttemptsLeft", func(t *testing.T) {
		// A failed delivery goes back into the dispatch list until the
		// attempt cap, so one SMTP hiccup never dead-letters a message.
		orderID := int64(42)
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM notification_outbox").
			WithArgs(domain.OutboxStatusPending, domain.OutboxStatusFailed, maxSendAttempts, int32(50)).
			WillReturnRows(outboxRows().
				AddRow(1, "BB-11AA22BB:LABEL_ISSUED", orderID, "dana@example.com", "Dana",
					domain.TemplateLabelReady, []byte(`{"order_number":"BB-11AA22BB"}`),
					domain.OutboxStatusPending, 0, nil, now, nil).
				AddRow(2, "BB-11AA22BB:DELIVERY_SCAN", orderID, "dana@example.com", "Dana",
					domain.TemplateDeviceReceived, []byte(`{"order_number":"BB-11AA22BB"}`),
					domain.OutboxStatusFailed, 2, "smtp timeout", now, nil))

		msgs, err := repo.ListPending(ctx, 50)
		assert.NoError(t, err)
		assert.Len(t, msgs, 2)
		assert.Equal(t, domain.OutboxStatusFailed, msgs[1].Status)
		assert.Equal(t, int32(2), msgs[1].Attempts)
		assert.Equal(t, "smtp timeout", msgs[1].LastError)
		assert.Equal(t, "BB-11AA22BB", msgs[0].Payload["order_number"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewOutboxRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE notification_outbox SET status").
		WithArgs(domain.OutboxStatusFailed, "smtp timeout", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkFailed(ctx, 2, "smtp timeout"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CountFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewOutboxRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT count\(\*\) FROM notification_outbox`).
		WithArgs(domain.OutboxStatusFailed).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountFailed(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
