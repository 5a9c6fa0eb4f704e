package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"
)

type outboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

// maxSendAttempts caps delivery retries per message. A FAILED row below the
// cap is re-listed for dispatch; at the cap it stays dead and is surfaced
// through CountFailed.
const maxSendAttempts = 5

func (r *outboxRepository) Enqueue(ctx context.Context, msg *domain.OutboxMessage) error {
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return err
	}
	query := `INSERT INTO notification_outbox (dedup_key, order_id, recipient_email, recipient_name,
	            template, payload, status, attempts, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
	          ON CONFLICT (dedup_key) DO NOTHING`
	_, err = r.db.ExecContext(ctx, query, msg.DedupKey, msg.OrderID, msg.RecipientEmail, msg.RecipientName,
		msg.Template, payload, domain.OutboxStatusPending, time.Now())
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int32) ([]domain.OutboxMessage, error) {
	query := `SELECT id, dedup_key, order_id, recipient_email, recipient_name, template, payload,
	            status, attempts, last_error, created_on, sent_on
	          FROM notification_outbox
	          WHERE status = $1 OR (status = $2 AND attempts < $3)
	          ORDER BY created_on LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query, domain.OutboxStatusPending, domain.OutboxStatusFailed, maxSendAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.OutboxMessage
	for rows.Next() {
		var msg domain.OutboxMessage
		var payload []byte
		var lastError sql.NullString
		if err := rows.Scan(&msg.ID, &msg.DedupKey, &msg.OrderID, &msg.RecipientEmail, &msg.RecipientName,
			&msg.Template, &payload, &msg.Status, &msg.Attempts, &lastError, &msg.CreatedOn, &msg.SentOn); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &msg.Payload); err != nil {
				return nil, err
			}
		}
		msg.LastError = lastError.String
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE notification_outbox SET status = $1, sent_on = $2, attempts = attempts + 1 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, domain.OutboxStatusSent, at, id)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, sendErr string) error {
	query := `UPDATE notification_outbox SET status = $1, last_error = $2, attempts = attempts + 1 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, domain.OutboxStatusFailed, sendErr, id)
	return err
}

func (r *outboxRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notification_outbox WHERE status = $1`, domain.OutboxStatusPending).Scan(&count)
	return count, err
}

func (r *outboxRepository) CountFailed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM notification_outbox WHERE status = $1`, domain.OutboxStatusFailed).Scan(&count)
	return count, err
}
