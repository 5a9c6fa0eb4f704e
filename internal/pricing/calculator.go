package pricing

import (
	"context"
	"fmt"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"
)

// Penalty keys used in the itemized breakdown. They match the rule's
// configured penalty fields one-to-one.
const (
	PenaltyFinanced        = "financed_device"
	PenaltyNoPower         = "no_power"
	PenaltyFunctionalIssue = "functional_issue"
	PenaltyCrackedGlass    = "cracked_glass"
	PenaltyActivationLock  = "activation_lock"
)

// OfferResult is the itemized outcome of pricing one device. It carries
// enough to reconstruct the number downstream (order item, re-offer, audit)
// without re-querying the catalog.
type OfferResult struct {
	RuleID            int64            `json:"rule_id"`
	BasePriceCents    int64            `json:"base_price_cents"`
	Penalties         map[string]int64 `json:"penalties"`
	TotalPenaltyCents int64            `json:"total_penalty_cents"`
	OfferCents        int64            `json:"offer_cents"`
}

// Calculator prices devices against the catalog. It is stateless and safe
// for concurrent use.
type Calculator struct {
	catalog repository.CatalogRepository
}

func NewCalculator(catalog repository.CatalogRepository) *Calculator {
	return &Calculator{catalog: catalog}
}

// CalculateOffer resolves the single pricing rule active at the given
// instant for (variantID, conditionID) and prices the claimed issues
// against it. Returns domain.ErrPricingUnavailable when no rule is active;
// callers must surface that, never default to zero.
func (c *Calculator) CalculateOffer(ctx context.Context, variantID, conditionID int64, issues domain.IssueSet, at time.Time) (*OfferResult, error) {
	rule, err := c.catalog.GetActiveRule(ctx, variantID, conditionID, at)
	if err != nil {
		return nil, fmt.Errorf("resolving pricing rule for variant %d condition %d: %w", variantID, conditionID, err)
	}
	return ComputeOffer(rule, issues), nil
}

// ComputeOffer applies the rule to the issue flags. Deterministic: identical
// inputs always yield an identical breakdown. Only flags that are set and
// carry a non-zero configured penalty appear in the itemized map.
//
// The clamp is unconditional: the offer never drops below MinOfferCents even
// when every penalty applies, and never exceeds MaxOfferCents when set.
func ComputeOffer(rule *domain.PricingRule, issues domain.IssueSet) *OfferResult {
	penalties := make(map[string]int64)
	if issues.IsFinanced && rule.FinancedDevicePenaltyCents != 0 {
		penalties[PenaltyFinanced] = rule.FinancedDevicePenaltyCents
	}
	if issues.NoPower && rule.NoPowerPenaltyCents != 0 {
		penalties[PenaltyNoPower] = rule.NoPowerPenaltyCents
	}
	if issues.FunctionalIssue && rule.FunctionalIssuePenaltyCents != 0 {
		penalties[PenaltyFunctionalIssue] = rule.FunctionalIssuePenaltyCents
	}
	if issues.CrackedGlass && rule.CrackedGlassPenaltyCents != 0 {
		penalties[PenaltyCrackedGlass] = rule.CrackedGlassPenaltyCents
	}
	if issues.ActivationLock && rule.ActivationLockPenaltyCents != 0 {
		penalties[PenaltyActivationLock] = rule.ActivationLockPenaltyCents
	}

	var total int64
	for _, p := range penalties {
		total += p
	}

	offer := rule.BasePriceCents - total
	if offer < rule.MinOfferCents {
		offer = rule.MinOfferCents
	}
	if rule.MaxOfferCents != nil && offer > *rule.MaxOfferCents {
		offer = *rule.MaxOfferCents
	}

	return &OfferResult{
		RuleID:            rule.ID,
		BasePriceCents:    rule.BasePriceCents,
		Penalties:         penalties,
		TotalPenaltyCents: total,
		OfferCents:        offer,
	}
}
