package repository

import (
	"context"
	"time"

	"buyback-backend/internal/domain"
)

type CatalogRepository interface {
	CreateVariant(ctx context.Context, v *domain.DeviceVariant) error
	GetVariantByID(ctx context.Context, id int64) (*domain.DeviceVariant, error)
	ListVariants(ctx context.Context) ([]domain.DeviceVariant, error)

	CreateConditionProfile(ctx context.Context, c *domain.ConditionProfile) error
	GetConditionProfileByID(ctx context.Context, id int64) (*domain.ConditionProfile, error)
	ListConditionProfiles(ctx context.Context) ([]domain.ConditionProfile, error)

	CreatePricingRule(ctx context.Context, r *domain.PricingRule) error
	// GetActiveRule returns the single rule whose window contains the given
	// instant, or domain.ErrPricingUnavailable.
	GetActiveRule(ctx context.Context, variantID, conditionID int64, at time.Time) (*domain.PricingRule, error)
	ListRulesForPair(ctx context.Context, variantID, conditionID int64) ([]domain.PricingRule, error)
	// HasOverlappingRule reports whether any existing rule for the same pair
	// intersects the candidate's validity window.
	HasOverlappingRule(ctx context.Context, r *domain.PricingRule) (bool, error)
}

type QuoteRepository interface {
	Create(ctx context.Context, q *domain.QuoteRequest) error
	GetByID(ctx context.Context, id int64) (*domain.QuoteRequest, error)
	GetItems(ctx context.Context, quoteID int64) ([]domain.QuoteLineItem, error)
	// AddItem appends a priced line and bumps the quote total in one
	// transaction, guarded by status DRAFT. Returns
	// domain.ErrQuoteAlreadyLocked when the quote has left draft.
	AddItem(ctx context.Context, item *domain.QuoteLineItem) error
	// Lock atomically moves DRAFT -> QUOTED and sets locked_until in the
	// same statement. Returns domain.ErrQuoteAlreadyLocked when the quote is
	// no longer in draft.
	Lock(ctx context.Context, quoteID int64, lockedUntil time.Time) error
	Cancel(ctx context.Context, quoteID int64) error
	// ExpireLocked flips QUOTED quotes past their lock window to EXPIRED and
	// returns how many rows changed.
	ExpireLocked(ctx context.Context, now time.Time) (int64, error)
}

type OrderRepository interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, order *domain.SellOrder, items []domain.SellOrderItem) error
	// CreateFromQuote consumes a locked quote and persists the order in the
	// same transaction: the quote UPDATE is guarded by status QUOTED and
	// locked_until > now, and a zero-row match returns
	// domain.ErrQuoteExpired with nothing written. A failed order insert
	// rolls the conversion back, so the quote is never left converted
	// without its order.
	CreateFromQuote(ctx context.Context, quoteID int64, now time.Time, order *domain.SellOrder, items []domain.SellOrderItem) error
	GetByID(ctx context.Context, id int64) (*domain.SellOrder, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.SellOrder, error)
	GetItems(ctx context.Context, orderID int64) ([]domain.SellOrderItem, error)
	GetItemByID(ctx context.Context, itemID int64) (*domain.SellOrderItem, error)

	// ApplyTransition performs the atomic read-check-write for a status
	// change: the UPDATE is guarded by status = ANY(from), and the extra
	// field updates plus outbox rows commit in the same transaction. When
	// another request already advanced the status the guard matches zero
	// rows and ApplyTransition returns domain.ErrInvalidTransition with
	// nothing written.
	ApplyTransition(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus, update domain.TransitionUpdate, effects []domain.OutboxMessage) error

	// RecordItemDecision flips the item's customer_decision from PENDING,
	// guarded in the UPDATE itself. A second attempt returns
	// domain.ErrDecisionAlreadyMade and leaves the stored decision intact.
	RecordItemDecision(ctx context.Context, itemID int64, decision domain.CustomerDecision) error

	ListPastDecisionDue(ctx context.Context, now time.Time) ([]domain.SellOrder, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.SellOrder, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
}

type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) error
	GetByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error)
	UpdateTrackingStatus(ctx context.Context, id int64, status domain.TrackingStatus, checkedAt time.Time) error
	MarkVoided(ctx context.Context, id int64, at time.Time) error
	// ListAwaitingScan returns un-voided shipments whose order is still
	// waiting on a carrier scan (AWAITING_DEVICE or IN_TRANSIT).
	ListAwaitingScan(ctx context.Context) ([]domain.Shipment, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, msg *domain.OutboxMessage) error
	// ListPending returns messages eligible for dispatch: PENDING rows plus
	// FAILED rows that have attempts left.
	ListPending(ctx context.Context, limit int32) ([]domain.OutboxMessage, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, sendErr string) error
	CountPending(ctx context.Context) (int64, error)
	// CountFailed counts messages whose last delivery attempt failed.
	CountFailed(ctx context.Context) (int64, error)
}
