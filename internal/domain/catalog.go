package domain

import "time"

// DeviceVariant is a sellable SKU: model + storage + carrier lock + color.
// Variants are immutable once a pricing rule references them.
type DeviceVariant struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Model       string    `json:"model"`
	StorageGB   int32     `json:"storage_gb"`
	CarrierLock string    `json:"carrier_lock"`
	Color       string    `json:"color"`
	CreatedOn   time.Time `json:"created_on"`
}

// ConditionProfile is a graded condition tier (A/excellent .. D/broken).
type ConditionProfile struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Label    string `json:"label"`
	Grade    int32  `json:"grade"`
	IsBroken bool   `json:"is_broken"`
}

// PricingRule is the price contract for one (variant, condition) pair over a
// half-open validity window [EffectiveFrom, EffectiveTo). At most one rule
// may be active per pair at any instant; overlap is rejected at write time.
type PricingRule struct {
	ID                          int64     `json:"id"`
	VariantID                   int64     `json:"variant_id"`
	ConditionID                 int64     `json:"condition_id"`
	BasePriceCents              int64     `json:"base_price_cents"`
	FinancedDevicePenaltyCents  int64     `json:"financed_device_penalty_cents"`
	NoPowerPenaltyCents         int64     `json:"no_power_penalty_cents"`
	FunctionalIssuePenaltyCents int64     `json:"functional_issue_penalty_cents"`
	CrackedGlassPenaltyCents    int64     `json:"cracked_glass_penalty_cents"`
	ActivationLockPenaltyCents  int64     `json:"activation_lock_penalty_cents"`
	MinOfferCents               int64     `json:"min_offer_cents"`
	MaxOfferCents               *int64    `json:"max_offer_cents,omitempty"`
	EffectiveFrom               time.Time `json:"effective_from"`
	EffectiveTo                 time.Time `json:"effective_to"`
	CreatedOn                   time.Time `json:"created_on"`
}

// ActiveAt reports whether the rule's window contains the given instant.
func (r *PricingRule) ActiveAt(at time.Time) bool {
	return !at.Before(r.EffectiveFrom) && at.Before(r.EffectiveTo)
}

// Overlaps reports whether two half-open windows intersect.
func (r *PricingRule) Overlaps(other *PricingRule) bool {
	return r.EffectiveFrom.Before(other.EffectiveTo) && other.EffectiveFrom.Before(r.EffectiveTo)
}
