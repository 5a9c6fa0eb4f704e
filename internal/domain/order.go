package domain

import "time"

type OrderStatus string

const (
	OrderStatusLabelPending            OrderStatus = "LABEL_PENDING"
	OrderStatusAwaitingDevice          OrderStatus = "AWAITING_DEVICE"
	OrderStatusInTransit               OrderStatus = "IN_TRANSIT"
	OrderStatusReceived                OrderStatus = "RECEIVED"
	OrderStatusUnderInspection         OrderStatus = "UNDER_INSPECTION"
	OrderStatusReofferPending          OrderStatus = "REOFFER_PENDING"
	OrderStatusCustomerDecisionPending OrderStatus = "CUSTOMER_DECISION_PENDING"
	OrderStatusPayoutPending           OrderStatus = "PAYOUT_PENDING"
	OrderStatusCompleted               OrderStatus = "COMPLETED"
	OrderStatusCancelled               OrderStatus = "CANCELLED"
	OrderStatusReturnedToCustomer      OrderStatus = "RETURNED_TO_CUSTOMER"
)

type PayoutStatus string

const (
	PayoutStatusNotStarted PayoutStatus = "NOT_STARTED"
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusPaid       PayoutStatus = "PAID"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

type AdjustmentReason string

const (
	AdjustmentReasonNone              AdjustmentReason = "NONE"
	AdjustmentReasonConditionMismatch AdjustmentReason = "CONDITION_MISMATCH"
	AdjustmentReasonBlacklisted       AdjustmentReason = "BLACKLISTED"
	AdjustmentReasonFinanced          AdjustmentReason = "FINANCED"
	AdjustmentReasonFunctionalIssue   AdjustmentReason = "FUNCTIONAL_ISSUE"
	AdjustmentReasonOther             AdjustmentReason = "OTHER"
)

type CustomerDecision string

const (
	DecisionPending  CustomerDecision = "PENDING"
	DecisionAccepted CustomerDecision = "ACCEPTED"
	DecisionRejected CustomerDecision = "REJECTED"
)

// OrderEvent names a lifecycle transition. Events are a closed set; the
// transition table below is the only path between statuses.
type OrderEvent string

const (
	EventLabelIssued          OrderEvent = "LABEL_ISSUED"
	EventPickupScan           OrderEvent = "PICKUP_SCAN"
	EventDeliveryScan         OrderEvent = "DELIVERY_SCAN"
	EventInspectionStarted    OrderEvent = "INSPECTION_STARTED"
	EventInspectionMatched    OrderEvent = "INSPECTION_MATCHED"
	EventReofferProposed      OrderEvent = "REOFFER_PROPOSED"
	EventDecisionWindowOpened OrderEvent = "DECISION_WINDOW_OPENED"
	EventReofferAccepted      OrderEvent = "REOFFER_ACCEPTED"
	EventReofferRejected      OrderEvent = "REOFFER_REJECTED"
	EventPayoutSettled        OrderEvent = "PAYOUT_SETTLED"
	EventCancelled            OrderEvent = "CANCELLED"
)

type transitionRule struct {
	from []OrderStatus
	to   OrderStatus
}

var transitions = map[OrderEvent]transitionRule{
	EventLabelIssued:          {from: []OrderStatus{OrderStatusLabelPending}, to: OrderStatusAwaitingDevice},
	EventPickupScan:           {from: []OrderStatus{OrderStatusAwaitingDevice}, to: OrderStatusInTransit},
	EventDeliveryScan:         {from: []OrderStatus{OrderStatusInTransit}, to: OrderStatusReceived},
	EventInspectionStarted:    {from: []OrderStatus{OrderStatusReceived}, to: OrderStatusUnderInspection},
	EventInspectionMatched:    {from: []OrderStatus{OrderStatusUnderInspection}, to: OrderStatusPayoutPending},
	EventReofferProposed:      {from: []OrderStatus{OrderStatusUnderInspection}, to: OrderStatusReofferPending},
	EventDecisionWindowOpened: {from: []OrderStatus{OrderStatusReofferPending}, to: OrderStatusCustomerDecisionPending},
	EventReofferAccepted:      {from: []OrderStatus{OrderStatusCustomerDecisionPending}, to: OrderStatusPayoutPending},
	EventReofferRejected:      {from: []OrderStatus{OrderStatusCustomerDecisionPending}, to: OrderStatusReturnedToCustomer},
	EventPayoutSettled:        {from: []OrderStatus{OrderStatusPayoutPending}, to: OrderStatusCompleted},
	EventCancelled: {from: []OrderStatus{
		OrderStatusLabelPending,
		OrderStatusAwaitingDevice,
		OrderStatusInTransit,
		OrderStatusReceived,
	}, to: OrderStatusCancelled},
}

// AllowedSources returns the source statuses from which the event may fire.
// The returned slice is a copy; callers may pass it to a repository guard.
func AllowedSources(event OrderEvent) []OrderStatus {
	rule, ok := transitions[event]
	if !ok {
		return nil
	}
	out := make([]OrderStatus, len(rule.from))
	copy(out, rule.from)
	return out
}

// NextStatus resolves the destination status for applying event at current.
// Returns ErrInvalidTransition when the event does not fire from current.
func NextStatus(current OrderStatus, event OrderEvent) (OrderStatus, error) {
	rule, ok := transitions[event]
	if !ok {
		return "", ErrInvalidTransition
	}
	for _, s := range rule.from {
		if s == current {
			return rule.to, nil
		}
	}
	return "", ErrInvalidTransition
}

// IsTerminal reports whether no event can leave the status.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusReturnedToCustomer:
		return true
	}
	return false
}

// SellOrder is the unit of fulfillment, created from a converted quote or
// directly from guest checkout.
type SellOrder struct {
	ID                      int64        `json:"id"`
	OrderNumber             string       `json:"order_number"`
	QuoteID                 *int64       `json:"quote_id,omitempty"`
	CustomerName            string       `json:"customer_name"`
	CustomerEmail           string       `json:"customer_email"`
	ShippingAddress         string       `json:"shipping_address"`
	Status                  OrderStatus  `json:"status"`
	PayoutStatus            PayoutStatus `json:"payout_status"`
	TotalOriginalOfferCents int64        `json:"total_original_offer_cents"`
	TotalFinalOfferCents    *int64       `json:"total_final_offer_cents,omitempty"`
	DecisionDueOn           *time.Time   `json:"decision_due_on,omitempty"`
	CreatedOn               time.Time    `json:"created_on"`
	UpdatedOn               time.Time    `json:"updated_on"`
}

// SellOrderItem is one device within an order. Claimed fields are the
// customer's self-report copied from the quote; inspected fields are filled
// after physical inspection. The offer breakdown is preserved for audit.
type SellOrderItem struct {
	ID                   int64            `json:"id"`
	OrderID              int64            `json:"order_id"`
	VariantID            int64            `json:"variant_id"`
	ClaimedConditionID   int64            `json:"claimed_condition_id"`
	ClaimedIssues        IssueSet         `json:"claimed_issues"`
	InspectedConditionID *int64           `json:"inspected_condition_id,omitempty"`
	InspectedIssues      *IssueSet        `json:"inspected_issues,omitempty"`
	RuleID               int64            `json:"rule_id"`
	BasePriceCents       int64            `json:"base_price_cents"`
	TotalPenaltyCents    int64            `json:"total_penalty_cents"`
	PenaltyBreakdown     map[string]int64 `json:"penalty_breakdown"`
	OriginalOfferCents   int64            `json:"original_offer_cents"`
	FinalOfferCents      *int64           `json:"final_offer_cents,omitempty"`
	AdjustmentReason     AdjustmentReason `json:"adjustment_reason"`
	CustomerDecision     CustomerDecision `json:"customer_decision"`
}

// TransitionUpdate carries the extra fields written together with a status
// change. Nil fields are left untouched; Items update inspection and offer
// columns for the listed item IDs in the same transaction.
type TransitionUpdate struct {
	PayoutStatus         *PayoutStatus
	TotalFinalOfferCents *int64
	DecisionDueOn        *time.Time
	Items                []SellOrderItem
}
