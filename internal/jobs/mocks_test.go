package jobs

import (
	"context"
	"time"

	"buyback-backend/internal/carrier"
	"buyback-backend/internal/domain"
	"buyback-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

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

// MockOrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateDirectOrder(ctx context.Context, customerName, customerEmail, shippingAddress string, items []service.DirectOrderItem) (*domain.SellOrder, error) {
	args := m.Called(ctx, customerName, customerEmail, shippingAddress, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellOrder), args.Error(1)
}
func (m *MockOrderService) GetOrder(ctx context.Context, orderID int64) (*domain.SellOrder, []domain.SellOrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.SellOrder), args.Get(1).([]domain.SellOrderItem), args.Error(2)
}
func (m *MockOrderService) RequestLabel(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shipment), args.Error(1)
}
func (m *MockOrderService) RecordPickup(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) RecordDelivery(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) StartInspection(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) ResolveInspection(ctx context.Context, orderID int64, findings []service.InspectionFinding) (*domain.SellOrder, error) {
	args := m.Called(ctx, orderID, findings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellOrder), args.Error(1)
}
func (m *MockOrderService) OpenDecisionWindow(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) RecordDecision(ctx context.Context, itemID int64, decision domain.CustomerDecision) (*domain.SellOrder, error) {
	args := m.Called(ctx, itemID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SellOrder), args.Error(1)
}
func (m *MockOrderService) ExpireDecisionWindow(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) SettlePayout(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) MarkPayoutFailed(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
func (m *MockOrderService) Cancel(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) DispatchPending(ctx context.Context, limit int32) (int, int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Int(1), args.Error(2)
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
