package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"
)

type quoteRepository struct {
	db *sql.DB
}

func NewQuoteRepository(db *sql.DB) repository.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, q *domain.QuoteRequest) error {
	query := `INSERT INTO quote_requests (quote_number, customer_name, customer_email, status, total_offer_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, q.QuoteNumber, q.CustomerName, q.CustomerEmail, q.Status, q.TotalOfferCents, now, now).Scan(&q.ID)
}

func (r *quoteRepository) GetByID(ctx context.Context, id int64) (*domain.QuoteRequest, error) {
	q := &domain.QuoteRequest{}
	query := `SELECT id, quote_number, customer_name, customer_email, status, locked_until, total_offer_cents, created_on, updated_on
	          FROM quote_requests WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.QuoteNumber, &q.CustomerName, &q.CustomerEmail, &q.Status, &q.LockedUntil, &q.TotalOfferCents, &q.CreatedOn, &q.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quoteRepository) GetItems(ctx context.Context, quoteID int64) ([]domain.QuoteLineItem, error) {
	query := `SELECT id, quote_id, variant_id, condition_id,
	            is_financed, no_power, functional_issue, cracked_glass, activation_lock,
	            rule_id, base_price_cents, total_penalty_cents, offer_cents
	          FROM quote_line_items WHERE quote_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.QuoteLineItem
	for rows.Next() {
		var it domain.QuoteLineItem
		if err := rows.Scan(&it.ID, &it.QuoteID, &it.VariantID, &it.ConditionID,
			&it.ClaimedIssues.IsFinanced, &it.ClaimedIssues.NoPower, &it.ClaimedIssues.FunctionalIssue,
			&it.ClaimedIssues.CrackedGlass, &it.ClaimedIssues.ActivationLock,
			&it.RuleID, &it.BasePriceCents, &it.TotalPenaltyCents, &it.OfferCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem inserts the line and bumps the quote total in one transaction.
// The quote-total UPDATE carries the DRAFT guard so a concurrent lock-in
// cannot land between the two statements.
func (r *quoteRepository) AddItem(ctx context.Context, item *domain.QuoteLineItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE quote_requests SET total_offer_cents = total_offer_cents + $1, updated_on = $2
		 WHERE id = $3 AND status = $4`,
		item.OfferCents, time.Now(), item.QuoteID, domain.QuoteStatusDraft)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrQuoteAlreadyLocked
	}

	query := `INSERT INTO quote_line_items (quote_id, variant_id, condition_id,
	            is_financed, no_power, functional_issue, cracked_glass, activation_lock,
	            rule_id, base_price_cents, total_penalty_cents, offer_cents)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err = tx.QueryRowContext(ctx, query, item.QuoteID, item.VariantID, item.ConditionID,
		item.ClaimedIssues.IsFinanced, item.ClaimedIssues.NoPower, item.ClaimedIssues.FunctionalIssue,
		item.ClaimedIssues.CrackedGlass, item.ClaimedIssues.ActivationLock,
		item.RuleID, item.BasePriceCents, item.TotalPenaltyCents, item.OfferCents).Scan(&item.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *quoteRepository) Lock(ctx context.Context, quoteID int64, lockedUntil time.Time) error {
	query := `UPDATE quote_requests SET status = $1, locked_until = $2, updated_on = $3
	          WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, domain.QuoteStatusQuoted, lockedUntil, time.Now(), quoteID, domain.QuoteStatusDraft)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrQuoteAlreadyLocked
	}
	return nil
}

func (r *quoteRepository) Cancel(ctx context.Context, quoteID int64) error {
	query := `UPDATE quote_requests SET status = $1, updated_on = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, domain.QuoteStatusCancelled, time.Now(), quoteID)
	return err
}

func (r *quoteRepository) ExpireLocked(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE quote_requests SET status = $1, updated_on = $2
	          WHERE status = $3 AND locked_until <= $4`
	res, err := r.db.ExecContext(ctx, query, domain.QuoteStatusExpired, now, domain.QuoteStatusQuoted, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
