package domain

import "time"

type QuoteStatus string

const (
	QuoteStatusDraft            QuoteStatus = "DRAFT"
	QuoteStatusQuoted           QuoteStatus = "QUOTED"
	QuoteStatusExpired          QuoteStatus = "EXPIRED"
	QuoteStatusConvertedToOrder QuoteStatus = "CONVERTED_TO_ORDER"
	QuoteStatusCancelled        QuoteStatus = "CANCELLED"
)

// QuoteRequest is a cart-like draft of one or more priced line items. Once
// locked (QUOTED), the total offer is frozen until LockedUntil.
type QuoteRequest struct {
	ID              int64       `json:"id"`
	QuoteNumber     string      `json:"quote_number"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	Status          QuoteStatus `json:"status"`
	LockedUntil     *time.Time  `json:"locked_until,omitempty"`
	TotalOfferCents int64       `json:"total_offer_cents"`
	CreatedOn       time.Time   `json:"created_on"`
	UpdatedOn       time.Time   `json:"updated_on"`
}

// QuoteLineItem is one device within a quote. The offer fields are a price
// snapshot taken when the item was appended and are never recomputed.
type QuoteLineItem struct {
	ID                int64    `json:"id"`
	QuoteID           int64    `json:"quote_id"`
	VariantID         int64    `json:"variant_id"`
	ConditionID       int64    `json:"condition_id"`
	ClaimedIssues     IssueSet `json:"claimed_issues"`
	RuleID            int64    `json:"rule_id"`
	BasePriceCents    int64    `json:"base_price_cents"`
	TotalPenaltyCents int64    `json:"total_penalty_cents"`
	OfferCents        int64    `json:"offer_cents"`
}
