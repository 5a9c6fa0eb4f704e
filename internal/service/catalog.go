package service

import (
	"context"
	"errors"
	"fmt"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"
)

type catalogService struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

func (s *catalogService) CreateVariant(ctx context.Context, v *domain.DeviceVariant) error {
	if v.SKU == "" || v.Model == "" {
		return errors.New("sku and model are required")
	}
	return s.catalogRepo.CreateVariant(ctx, v)
}

func (s *catalogService) ListVariants(ctx context.Context) ([]domain.DeviceVariant, error) {
	return s.catalogRepo.ListVariants(ctx)
}

func (s *catalogService) CreateConditionProfile(ctx context.Context, c *domain.ConditionProfile) error {
	if c.Code == "" {
		return errors.New("condition code is required")
	}
	return s.catalogRepo.CreateConditionProfile(ctx, c)
}

func (s *catalogService) ListConditionProfiles(ctx context.Context) ([]domain.ConditionProfile, error) {
	return s.catalogRepo.ListConditionProfiles(ctx)
}

// CreatePricingRule validates the rule and rejects any window that overlaps
// an existing rule for the same (variant, condition) pair. Overlap is caught
// here, at write time: the calculator assumes at most one active rule per
// instant.
func (s *catalogService) CreatePricingRule(ctx context.Context, r *domain.PricingRule) error {
	if !r.EffectiveTo.After(r.EffectiveFrom) {
		return errors.New("effective_to must be after effective_from")
	}
	if r.BasePriceCents < 0 {
		return errors.New("base price must not be negative")
	}
	if r.MinOfferCents < 0 {
		return errors.New("min offer must not be negative")
	}
	// A negative penalty would raise the offer above the base price.
	penalties := []int64{
		r.FinancedDevicePenaltyCents,
		r.NoPowerPenaltyCents,
		r.FunctionalIssuePenaltyCents,
		r.CrackedGlassPenaltyCents,
		r.ActivationLockPenaltyCents,
	}
	for _, p := range penalties {
		if p < 0 {
			return errors.New("penalties must not be negative")
		}
	}
	if r.MaxOfferCents != nil && *r.MaxOfferCents < r.MinOfferCents {
		return errors.New("max offer must not be below min offer")
	}

	if _, err := s.catalogRepo.GetVariantByID(ctx, r.VariantID); err != nil {
		return fmt.Errorf("variant %d: %w", r.VariantID, err)
	}
	if _, err := s.catalogRepo.GetConditionProfileByID(ctx, r.ConditionID); err != nil {
		return fmt.Errorf("condition %d: %w", r.ConditionID, err)
	}

	overlaps, err := s.catalogRepo.HasOverlappingRule(ctx, r)
	if err != nil {
		return err
	}
	if overlaps {
		return domain.ErrOverlappingRule
	}

	return s.catalogRepo.CreatePricingRule(ctx, r)
}

func (s *catalogService) ListRulesForPair(ctx context.Context, variantID, conditionID int64) ([]domain.PricingRule, error) {
	return s.catalogRepo.ListRulesForPair(ctx, variantID, conditionID)
}
