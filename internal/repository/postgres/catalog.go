package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/repository"
)

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) CreateVariant(ctx context.Context, v *domain.DeviceVariant) error {
	query := `INSERT INTO device_variants (sku, model, storage_gb, carrier_lock, color, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, v.SKU, v.Model, v.StorageGB, v.CarrierLock, v.Color, time.Now()).Scan(&v.ID)
}

func (r *catalogRepository) GetVariantByID(ctx context.Context, id int64) (*domain.DeviceVariant, error) {
	v := &domain.DeviceVariant{}
	query := `SELECT id, sku, model, storage_gb, carrier_lock, color, created_on FROM device_variants WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.SKU, &v.Model, &v.StorageGB, &v.CarrierLock, &v.Color, &v.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *catalogRepository) ListVariants(ctx context.Context) ([]domain.DeviceVariant, error) {
	query := `SELECT id, sku, model, storage_gb, carrier_lock, color, created_on FROM device_variants ORDER BY model, storage_gb`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []domain.DeviceVariant
	for rows.Next() {
		var v domain.DeviceVariant
		if err := rows.Scan(&v.ID, &v.SKU, &v.Model, &v.StorageGB, &v.CarrierLock, &v.Color, &v.CreatedOn); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *catalogRepository) CreateConditionProfile(ctx context.Context, c *domain.ConditionProfile) error {
	query := `INSERT INTO condition_profiles (code, label, grade, is_broken) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, c.Code, c.Label, c.Grade, c.IsBroken).Scan(&c.ID)
}

func (r *catalogRepository) GetConditionProfileByID(ctx context.Context, id int64) (*domain.ConditionProfile, error) {
	c := &domain.ConditionProfile{}
	query := `SELECT id, code, label, grade, is_broken FROM condition_profiles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Code, &c.Label, &c.Grade, &c.IsBroken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *catalogRepository) ListConditionProfiles(ctx context.Context) ([]domain.ConditionProfile, error) {
	query := `SELECT id, code, label, grade, is_broken FROM condition_profiles ORDER BY grade`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.ConditionProfile
	for rows.Next() {
		var c domain.ConditionProfile
		if err := rows.Scan(&c.ID, &c.Code, &c.Label, &c.Grade, &c.IsBroken); err != nil {
			return nil, err
		}
		profiles = append(profiles, c)
	}
	return profiles, rows.Err()
}

func (r *catalogRepository) CreatePricingRule(ctx context.Context, rule *domain.PricingRule) error {
	query := `INSERT INTO pricing_rules (variant_id, condition_id, base_price_cents,
	            financed_device_penalty_cents, no_power_penalty_cents, functional_issue_penalty_cents,
	            cracked_glass_penalty_cents, activation_lock_penalty_cents,
	            min_offer_cents, max_offer_cents, effective_from, effective_to, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rule.VariantID, rule.ConditionID, rule.BasePriceCents,
		rule.FinancedDevicePenaltyCents, rule.NoPowerPenaltyCents, rule.FunctionalIssuePenaltyCents,
		rule.CrackedGlassPenaltyCents, rule.ActivationLockPenaltyCents,
		rule.MinOfferCents, rule.MaxOfferCents, rule.EffectiveFrom, rule.EffectiveTo, time.Now(),
	).Scan(&rule.ID)
}

const pricingRuleColumns = `id, variant_id, condition_id, base_price_cents,
	financed_device_penalty_cents, no_power_penalty_cents, functional_issue_penalty_cents,
	cracked_glass_penalty_cents, activation_lock_penalty_cents,
	min_offer_cents, max_offer_cents, effective_from, effective_to, created_on`

func scanPricingRule(row interface{ Scan(...any) error }) (*domain.PricingRule, error) {
	rule := &domain.PricingRule{}
	err := row.Scan(&rule.ID, &rule.VariantID, &rule.ConditionID, &rule.BasePriceCents,
		&rule.FinancedDevicePenaltyCents, &rule.NoPowerPenaltyCents, &rule.FunctionalIssuePenaltyCents,
		&rule.CrackedGlassPenaltyCents, &rule.ActivationLockPenaltyCents,
		&rule.MinOfferCents, &rule.MaxOfferCents, &rule.EffectiveFrom, &rule.EffectiveTo, &rule.CreatedOn)
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *catalogRepository) GetActiveRule(ctx context.Context, variantID, conditionID int64, at time.Time) (*domain.PricingRule, error) {
	query := `SELECT ` + pricingRuleColumns + ` FROM pricing_rules
	          WHERE variant_id = $1 AND condition_id = $2 AND effective_from <= $3 AND effective_to > $3`
	rule, err := scanPricingRule(r.db.QueryRowContext(ctx, query, variantID, conditionID, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPricingUnavailable
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (r *catalogRepository) ListRulesForPair(ctx context.Context, variantID, conditionID int64) ([]domain.PricingRule, error) {
	query := `SELECT ` + pricingRuleColumns + ` FROM pricing_rules
	          WHERE variant_id = $1 AND condition_id = $2 ORDER BY effective_from`
	rows, err := r.db.QueryContext(ctx, query, variantID, conditionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.PricingRule
	for rows.Next() {
		rule, err := scanPricingRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func (r *catalogRepository) HasOverlappingRule(ctx context.Context, rule *domain.PricingRule) (bool, error) {
	query := `SELECT count(*) FROM pricing_rules
	          WHERE variant_id = $1 AND condition_id = $2
	            AND effective_from < $4 AND effective_to > $3
	            AND id <> $5`
	var count int64
	err := r.db.QueryRowContext(ctx, query, rule.VariantID, rule.ConditionID, rule.EffectiveFrom, rule.EffectiveTo, rule.ID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
