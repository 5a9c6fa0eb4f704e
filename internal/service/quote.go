package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/pricing"
	"buyback-backend/internal/repository"

	"github.com/google/uuid"
)

type quoteService struct {
	quoteRepo      repository.QuoteRepository
	orderRepo      repository.OrderRepository
	calculator     *pricing.Calculator
	lockWindowDays int32
}

func NewQuoteService(quoteRepo repository.QuoteRepository, orderRepo repository.OrderRepository, calculator *pricing.Calculator, lockWindowDays int32) QuoteService {
	return &quoteService{
		quoteRepo:      quoteRepo,
		orderRepo:      orderRepo,
		calculator:     calculator,
		lockWindowDays: lockWindowDays,
	}
}

func shortRef(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

func (s *quoteService) CreateQuote(ctx context.Context, customerName, customerEmail string) (*domain.QuoteRequest, error) {
	if customerEmail == "" {
		return nil, errors.New("customer email is required")
	}
	q := &domain.QuoteRequest{
		QuoteNumber:   shortRef("Q"),
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Status:        domain.QuoteStatusDraft,
	}
	if err := s.quoteRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// AddLineItem prices the device now and appends the frozen snapshot. Quotes
// that have left draft reject the append with ErrQuoteAlreadyLocked so a
// customer cannot refresh a price after market movement.
func (s *quoteService) AddLineItem(ctx context.Context, quoteID, variantID, conditionID int64, issues domain.IssueSet) (*domain.QuoteLineItem, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusDraft {
		return nil, domain.ErrQuoteAlreadyLocked
	}

	offer, err := s.calculator.CalculateOffer(ctx, variantID, conditionID, issues, time.Now())
	if err != nil {
		return nil, err
	}

	item := &domain.QuoteLineItem{
		QuoteID:           quoteID,
		VariantID:         variantID,
		ConditionID:       conditionID,
		ClaimedIssues:     issues,
		RuleID:            offer.RuleID,
		BasePriceCents:    offer.BasePriceCents,
		TotalPenaltyCents: offer.TotalPenaltyCents,
		OfferCents:        offer.OfferCents,
	}
	if err := s.quoteRepo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *quoteService) LockIn(ctx context.Context, quoteID int64, windowDays int32) (*domain.QuoteRequest, error) {
	if windowDays <= 0 {
		windowDays = s.lockWindowDays
	}

	items, err := s.quoteRepo.GetItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("cannot lock an empty quote")
	}

	lockedUntil := time.Now().AddDate(0, 0, int(windowDays))
	if err := s.quoteRepo.Lock(ctx, quoteID, lockedUntil); err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	logger.Info("Quote locked", "quote", quote.QuoteNumber, "total_cents", quote.TotalOfferCents, "locked_until", lockedUntil)
	return quote, nil
}

// ConvertToOrder materializes a SellOrder from a locked quote. Offer fields
// are copied verbatim from the quote line items, never recomputed.
func (s *quoteService) ConvertToOrder(ctx context.Context, quoteID int64, shippingAddress string) (*domain.SellOrder, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	switch quote.Status {
	case domain.QuoteStatusQuoted:
		// proceed, the conversion CAS re-checks the window
	case domain.QuoteStatusExpired:
		return nil, domain.ErrQuoteExpired
	case domain.QuoteStatusDraft:
		return nil, errors.New("quote must be locked before conversion")
	default:
		return nil, fmt.Errorf("quote %s is %s and cannot be converted", quote.QuoteNumber, quote.Status)
	}

	items, err := s.quoteRepo.GetItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	var total int64
	orderItems := make([]domain.SellOrderItem, 0, len(items))
	for _, li := range items {
		total += li.OfferCents
		orderItems = append(orderItems, domain.SellOrderItem{
			VariantID:          li.VariantID,
			ClaimedConditionID: li.ConditionID,
			ClaimedIssues:      li.ClaimedIssues,
			RuleID:             li.RuleID,
			BasePriceCents:     li.BasePriceCents,
			TotalPenaltyCents:  li.TotalPenaltyCents,
			OriginalOfferCents: li.OfferCents,
			AdjustmentReason:   domain.AdjustmentReasonNone,
			CustomerDecision:   domain.DecisionPending,
		})
	}

	order := &domain.SellOrder{
		OrderNumber:             shortRef("BB"),
		QuoteID:                 &quote.ID,
		CustomerName:            quote.CustomerName,
		CustomerEmail:           quote.CustomerEmail,
		ShippingAddress:         shippingAddress,
		Status:                  domain.OrderStatusLabelPending,
		PayoutStatus:            domain.PayoutStatusNotStarted,
		TotalOriginalOfferCents: total,
	}
	// The quote flip and the order insert commit together; a failure on
	// either side leaves the quote QUOTED and retryable.
	if err := s.orderRepo.CreateFromQuote(ctx, quoteID, time.Now(), order, orderItems); err != nil {
		if errors.Is(err, domain.ErrQuoteExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("creating order from quote %s: %w", quote.QuoteNumber, err)
	}

	logger.Info("Quote converted to order", "quote", quote.QuoteNumber, "order", order.OrderNumber, "total_cents", total)
	return order, nil
}

func (s *quoteService) GetQuote(ctx context.Context, quoteID int64) (*domain.QuoteRequest, []domain.QuoteLineItem, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.quoteRepo.GetItems(ctx, quoteID)
	if err != nil {
		return nil, nil, err
	}
	return quote, items, nil
}
