package service

import (
	"context"
	"time"

	"buyback-backend/internal/carrier"
	"buyback-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockCatalogRepo
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) CreateVariant(ctx context.Context, v *domain.DeviceVariant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}
func (m *MockCatalogRepo) GetVariantByID(ctx context.Context, id int64) (*domain.DeviceVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeviceVariant), args.Error(1)
}
func (m *MockCatalogRepo) ListVariants(ctx context.Context) ([]domain.DeviceVariant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.DeviceVariant), args.Error(1)
}
func (m *MockCatalogRepo) CreateConditionProfile(ctx context.Context, c *domain.ConditionProfile) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockCatalogRepo) GetConditionProfileByID(ctx context.Context, id int64) (*domain.ConditionProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConditionProfile), args.Error(1)
}
func (m *MockCatalogRepo) ListConditionProfiles(ctx context.Context) ([]domain.ConditionProfile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ConditionProfile), args.Error(1)
}
func (m *MockCatalogRepo) CreatePricingRule(ctx context.Context, r *domain.PricingRule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockCatalogRepo) GetActiveRule(ctx context.Context, variantID, conditionID int64, at time.Time) (*domain.PricingRule, error) {
	args := m.Called(ctx, variantID, conditionID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRule), args.Error(1)
}
func (m *MockCatalogRepo) ListRulesForPair(ctx context.Context, variantID, conditionID int64) ([]domain.PricingRule, error) {
	args := m.Called(ctx, variantID, conditionID)
	return args.Get(0).([]domain.PricingRule), args.Error(1)
}
func (m *MockCatalogRepo) HasOverlappingRule(ctx context.Context, r *domain.PricingRule) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

// MockQuoteRepo
type MockQuoteRepo struct {
	mock.Mock
}

func (m *MockQuoteRepo) Create(ctx context.Context, q *domain.QuoteRequest) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}
func (m *MockQuoteRepo) GetByID(ctx context.Context, id int64) (*domain.QuoteRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuoteRequest), args.Error(1)
}
func (m *MockQuoteRepo) GetItems(ctx context.Context, quoteID int64) ([]domain.QuoteLineItem, error) {
	args := m.Called(ctx, quoteID)
	return args.Get(0).([]domain.QuoteLineItem), args.Error(1)
}
func (m *MockQuoteRepo) AddItem(ctx context.Context, item *domain.QuoteLineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockQuoteRepo) Lock(ctx context.Context, quoteID int64, lockedUntil time.Time) error {
	args := m.Called(ctx, quoteID, lockedUntil)
	return args.Error(0)
}
func (m *MockQuoteRepo) Cancel(ctx context.Context, quoteID int64) error {
	args := m.Called(ctx, quoteID)
	return args.Error(0)
}
func (m *MockQuoteRepo) ExpireLocked(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.SellOrder, items []domain.SellOrderItem) error {
	args := m.Called(ctx, order, items)
	return args.Error(0)
}
func (m *MockOrderRepo) CreateFromQuote(ctx context.Context, quoteID int64, now time.Time, order *domain.SellOrder, items []domain.SellOrderItem) error {
	args := m.Called(ctx, quoteID, now, order, items)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.SellOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellOrder), args.Error(1)
}
func (m *MockOrderRepo) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.SellOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellOrder), args.Error(1)
}
func (m *MockOrderRepo) GetItems(ctx context.Context, orderID int64) ([]domain.SellOrderItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.SellOrderItem), args.Error(1)
}
func (m *MockOrderRepo) GetItemByID(ctx context.Context, itemID int64) (*domain.SellOrderItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellOrderItem), args.Error(1)
}
func (m *MockOrderRepo) ApplyTransition(ctx context.Context, orderID int64, from []domain.OrderStatus, to domain.OrderStatus, update domain.TransitionUpdate, effects []domain.OutboxMessage) error {
	args := m.Called(ctx, orderID, from, to, update, effects)
	return args.Error(0)
}
func (m *MockOrderRepo) RecordItemDecision(ctx context.Context, itemID int64, decision domain.CustomerDecision) error {
	args := m.Called(ctx, itemID, decision)
	return args.Error(0)
}
func (m *MockOrderRepo) ListPastDecisionDue(ctx context.Context, now time.Time) ([]domain.SellOrder, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.SellOrder), args.Error(1)
}
func (m *MockOrderRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.SellOrder, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.SellOrder), args.Error(1)
}
func (m *MockOrderRepo) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockShipmentRepo
type MockShipmentRepo struct {
	mock.Mock
}

func (m *MockShipmentRepo) Create(ctx context.Context, s *domain.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockShipmentRepo) GetByOrderID(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}
func (m *MockShipmentRepo) UpdateTrackingStatus(ctx context.Context, id int64, status domain.TrackingStatus, checkedAt time.Time) error {
	args := m.Called(ctx, id, status, checkedAt)
	return args.Error(0)
}
func (m *MockShipmentRepo) MarkVoided(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockShipmentRepo) ListAwaitingScan(ctx context.Context) ([]domain.Shipment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Shipment), args.Error(1)
}

// MockOutboxRepo
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Enqueue(ctx context.Context, msg *domain.OutboxMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockOutboxRepo) ListPending(ctx context.Context, limit int32) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}
func (m *MockOutboxRepo) MarkSent(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
func (m *MockOutboxRepo) MarkFailed(ctx context.Context, id int64, sendErr string) error {
	args := m.Called(ctx, id, sendErr)
	return args.Error(0)
}
func (m *MockOutboxRepo) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockOutboxRepo) CountFailed(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockCarrierClient
type MockCarrierClient struct {
	mock.Mock
}

func (m *MockCarrierClient) PurchaseLabel(ctx context.Context, destinationAddress, orderRef string) (*carrier.Label, error) {
	args := m.Called(ctx, destinationAddress, orderRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carrier.Label), args.Error(1)
}
func (m *MockCarrierClient) Void(ctx context.Context, labelRef string) error {
	args := m.Called(ctx, labelRef)
	return args.Error(0)
}
func (m *MockCarrierClient) Track(ctx context.Context, trackingID string) (*carrier.TrackingUpdate, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carrier.TrackingUpdate), args.Error(1)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, toEmail, toName string, template domain.NotificationTemplate, payload map[string]string) error {
	args := m.Called(ctx, toEmail, toName, template, payload)
	return args.Error(0)
}
