package service

import (
	"context"
	"fmt"

	"buyback-backend/internal/domain"
)

type CatalogService interface {
	CreateVariant(ctx context.Context, v *domain.DeviceVariant) error
	ListVariants(ctx context.Context) ([]domain.DeviceVariant, error)
	CreateConditionProfile(ctx context.Context, c *domain.ConditionProfile) error
	ListConditionProfiles(ctx context.Context) ([]domain.ConditionProfile, error)
	CreatePricingRule(ctx context.Context, r *domain.PricingRule) error
	ListRulesForPair(ctx context.Context, variantID, conditionID int64) ([]domain.PricingRule, error)
}

type QuoteService interface {
	CreateQuote(ctx context.Context, customerName, customerEmail string) (*domain.QuoteRequest, error)
	AddLineItem(ctx context.Context, quoteID, variantID, conditionID int64, issues domain.IssueSet) (*domain.QuoteLineItem, error)
	// LockIn freezes the quote for windowDays; windowDays <= 0 uses the
	// configured default.
	LockIn(ctx context.Context, quoteID int64, windowDays int32) (*domain.QuoteRequest, error)
	ConvertToOrder(ctx context.Context, quoteID int64, shippingAddress string) (*domain.SellOrder, error)
	GetQuote(ctx context.Context, quoteID int64) (*domain.QuoteRequest, []domain.QuoteLineItem, error)
}

// DirectOrderItem describes one device in a guest checkout, priced at order
// creation time.
type DirectOrderItem struct {
	VariantID   int64
	ConditionID int64
	Issues      domain.IssueSet
}

// InspectionFinding is the verified condition of one order item after
// physical inspection.
type InspectionFinding struct {
	ItemID      int64
	ConditionID int64
	Issues      domain.IssueSet
}

type OrderService interface {
	CreateDirectOrder(ctx context.Context, customerName, customerEmail, shippingAddress string, items []DirectOrderItem) (*domain.SellOrder, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.SellOrder, []domain.SellOrderItem, error)

	RequestLabel(ctx context.Context, orderID int64) (*domain.Shipment, error)
	RecordPickup(ctx context.Context, orderID int64) error
	RecordDelivery(ctx context.Context, orderID int64) error
	StartInspection(ctx context.Context, orderID int64) error
	ResolveInspection(ctx context.Context, orderID int64, findings []InspectionFinding) (*domain.SellOrder, error)
	// OpenDecisionWindow moves a proposed re-offer into the customer
	// decision window. Normally ResolveInspection does this immediately;
	// the sweep job calls it to resume orders parked in REOFFER_PENDING by
	// a crash between the two transitions.
	OpenDecisionWindow(ctx context.Context, orderID int64) error
	RecordDecision(ctx context.Context, itemID int64, decision domain.CustomerDecision) (*domain.SellOrder, error)
	ExpireDecisionWindow(ctx context.Context, orderID int64) error
	SettlePayout(ctx context.Context, orderID int64) error
	MarkPayoutFailed(ctx context.Context, orderID int64) error
	Cancel(ctx context.Context, orderID int64) error
}

type NotificationService interface {
	// DispatchPending delivers queued outbox messages, marking each sent or
	// failed. Delivery errors are recorded, never propagated into order
	// state.
	DispatchPending(ctx context.Context, limit int32) (sent, failed int, err error)
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
