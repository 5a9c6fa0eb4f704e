package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"

	"github.com/lib/pq"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, quote_id, customer_name, customer_email, shipping_address,
	status, payout_status, total_original_offer_cents, total_final_offer_cents, decision_due_on,
	created_on, updated_on`

func scanOrder(row interface{ Scan(...any) error }) (*domain.SellOrder, error) {
	o := &domain.SellOrder{}
	err := row.Scan(&o.ID, &o.OrderNumber, &o.QuoteID, &o.CustomerName, &o.CustomerEmail, &o.ShippingAddress,
		&o.Status, &o.PayoutStatus, &o.TotalOriginalOfferCents, &o.TotalFinalOfferCents, &o.DecisionDueOn,
		&o.CreatedOn, &o.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.SellOrder, items []domain.SellOrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertOrder(ctx, tx, order, items); err != nil {
		return err
	}

	return tx.Commit()
}

// CreateFromQuote flips the quote to CONVERTED_TO_ORDER and inserts the
// order with its items in one transaction. The quote UPDATE carries the
// QUOTED guard and the lock-window check; zero rows means the window
// elapsed or another request already consumed the quote, and nothing is
// written. If any insert fails the whole conversion rolls back, so a quote
// can never end up converted without its order.
func (r *orderRepository) CreateFromQuote(ctx context.Context, quoteID int64, now time.Time, order *domain.SellOrder, items []domain.SellOrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE quote_requests SET status = $1, updated_on = $2
		 WHERE id = $3 AND status = $4 AND locked_until > $5`,
		domain.QuoteStatusConvertedToOrder, now, quoteID, domain.QuoteStatusQuoted, now)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrQuoteExpired
	}

	if err := insertOrder(ctx, tx, order, items); err != nil {
		return err
	}

	return tx.Commit()
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.SellOrder, items []domain.SellOrderItem) error {
	now := time.Now()
	query := `INSERT INTO sell_orders (order_number, quote_id, customer_name, customer_email, shipping_address,
	            status, payout_status, total_original_offer_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := tx.QueryRowContext(ctx, query, order.OrderNumber, order.QuoteID, order.CustomerName, order.CustomerEmail,
		order.ShippingAddress, order.Status, order.PayoutStatus, order.TotalOriginalOfferCents, now, now).Scan(&order.ID)
	if err != nil {
		return err
	}

	itemQuery := `INSERT INTO sell_order_items (order_id, variant_id, claimed_condition_id,
	                is_financed, no_power, functional_issue, cracked_glass, activation_lock,
	                rule_id, base_price_cents, total_penalty_cents, penalty_breakdown,
	                original_offer_cents, adjustment_reason, customer_decision)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	for i := range items {
		it := &items[i]
		it.OrderID = order.ID
		breakdown, err := json.Marshal(it.PenaltyBreakdown)
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, itemQuery, it.OrderID, it.VariantID, it.ClaimedConditionID,
			it.ClaimedIssues.IsFinanced, it.ClaimedIssues.NoPower, it.ClaimedIssues.FunctionalIssue,
			it.ClaimedIssues.CrackedGlass, it.ClaimedIssues.ActivationLock,
			it.RuleID, it.BasePriceCents, it.TotalPenaltyCents, breakdown,
			it.OriginalOfferCents, it.AdjustmentReason, it.CustomerDecision).Scan(&it.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.SellOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sell_orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.SellOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sell_orders WHERE order_number = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

const orderItemColumns = `id, order_id, variant_id, claimed_condition_id,
	is_financed, no_power, functional_issue, cracked_glass, activation_lock,
	inspected_condition_id, inspected_issues,
	rule_id, base_price_cents, total_penalty_cents, penalty_breakdown,
	original_offer_cents, final_offer_cents, adjustment_reason, customer_decision`

func scanOrderItem(row interface{ Scan(...any) error }) (*domain.SellOrderItem, error) {
	it := &domain.SellOrderItem{}
	var inspectedIssues, breakdown []byte
	err := row.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.ClaimedConditionID,
		&it.ClaimedIssues.IsFinanced, &it.ClaimedIssues.NoPower, &it.ClaimedIssues.FunctionalIssue,
		&it.ClaimedIssues.CrackedGlass, &it.ClaimedIssues.ActivationLock,
		&it.InspectedConditionID, &inspectedIssues,
		&it.RuleID, &it.BasePriceCents, &it.TotalPenaltyCents, &breakdown,
		&it.OriginalOfferCents, &it.FinalOfferCents, &it.AdjustmentReason, &it.CustomerDecision)
	if err != nil {
		return nil, err
	}
	if len(inspectedIssues) > 0 {
		issues := &domain.IssueSet{}
		if err := json.Unmarshal(inspectedIssues, issues); err != nil {
			return nil, err
		}
		it.InspectedIssues = issues
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &it.PenaltyBreakdown); err != nil {
			return nil, err
		}
	}
	return it, nil
}

func (r *orderRepository) GetItems(ctx context.Context, orderID int64) ([]domain.SellOrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM sell_order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SellOrderItem
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *orderRepository) GetItemByID(ctx context.Context, itemID int64) (*domain.SellOrderItem, error) {
	query := `SELECT ` + orderItemColumns + ` FROM sell_order_items WHERE id = $1`
	it, err := scanOrderItem(r.db.QueryRowContext(ctx, query, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// ApplyTransition is the single atomic read-check-write for order status.
// The status UPDATE carries the allowed-source guard; zero affected rows
// means another request already moved the order and nothing is written.
// Field updates, item inspection updates and outbox rows ride in the same
// transaction so the transition and its recorded side effects commit or
// roll back together.
func (r *orderRepository) ApplyTransition(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus, update domain.TransitionUpdate, effects []domain.OutboxMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE sell_orders SET status = $1, updated_on = $2 WHERE id = $3 AND status = ANY($4)`,
		to, now, orderID, pq.Array(sources))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvalidTransition
	}

	if update.PayoutStatus != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE sell_orders SET payout_status = $1 WHERE id = $2`, *update.PayoutStatus, orderID); err != nil {
			return err
		}
	}
	if update.TotalFinalOfferCents != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE sell_orders SET total_final_offer_cents = $1 WHERE id = $2`, *update.TotalFinalOfferCents, orderID); err != nil {
			return err
		}
	}
	if update.DecisionDueOn != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE sell_orders SET decision_due_on = $1 WHERE id = $2`, *update.DecisionDueOn, orderID); err != nil {
			return err
		}
	}

	itemQuery := `UPDATE sell_order_items SET inspected_condition_id = $1, inspected_issues = $2,
	                final_offer_cents = $3, adjustment_reason = $4
	              WHERE id = $5 AND order_id = $6`
	for _, it := range update.Items {
		var inspectedIssues []byte
		if it.InspectedIssues != nil {
			inspectedIssues, err = json.Marshal(it.InspectedIssues)
			if err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, itemQuery, it.InspectedConditionID, inspectedIssues,
			it.FinalOfferCents, it.AdjustmentReason, it.ID, orderID); err != nil {
			return err
		}
	}

	// ON CONFLICT on the dedup key keeps the per-transition notification
	// unique even if the same transition is replayed.
	outboxQuery := `INSERT INTO notification_outbox (dedup_key, order_id, recipient_email, recipient_name,
	                  template, payload, status, attempts, created_on)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
	                ON CONFLICT (dedup_key) DO NOTHING`
	for _, msg := range effects {
		payload, err := json.Marshal(msg.Payload)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, outboxQuery, msg.DedupKey, msg.OrderID, msg.RecipientEmail,
			msg.RecipientName, msg.Template, payload, domain.OutboxStatusPending, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepository) RecordItemDecision(ctx context.Context, itemID int64, decision domain.CustomerDecision) error {
	query := `UPDATE sell_order_items SET customer_decision = $1 WHERE id = $2 AND customer_decision = $3`
	res, err := r.db.ExecContext(ctx, query, decision, itemID, domain.DecisionPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing item from an already-decided one.
		var existing domain.CustomerDecision
		err := r.db.QueryRowContext(ctx, `SELECT customer_decision FROM sell_order_items WHERE id = $1`, itemID).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return domain.ErrDecisionAlreadyMade
	}
	return nil
}

func (r *orderRepository) ListPastDecisionDue(ctx context.Context, now time.Time) ([]domain.SellOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sell_orders
	          WHERE status = $1 AND decision_due_on <= $2 ORDER BY decision_due_on`
	rows, err := r.db.QueryContext(ctx, query, domain.OrderStatusCustomerDecisionPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.SellOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.SellOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sell_orders WHERE status = $1 ORDER BY updated_on`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.SellOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM sell_orders WHERE status = $1`, status).Scan(&count)
	return count, err
}
