package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buyback-backend/internal/carrier"
	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/pricing"
	"buyback-backend/internal/repository"
)

type orderService struct {
	orderRepo          repository.OrderRepository
	shipmentRepo       repository.ShipmentRepository
	calculator         *pricing.Calculator
	carrierClient      carrier.Client
	decisionWindowDays int32
	externalTimeout    time.Duration
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	calculator *pricing.Calculator,
	carrierClient carrier.Client,
	decisionWindowDays int32,
	externalTimeout time.Duration,
) OrderService {
	return &orderService{
		orderRepo:          orderRepo,
		shipmentRepo:       shipmentRepo,
		calculator:         calculator,
		carrierClient:      carrierClient,
		decisionWindowDays: decisionWindowDays,
		externalTimeout:    externalTimeout,
	}
}

// effect builds the outbox row for one transition. The dedup key ties the
// notification to (order, event) so each transition notifies exactly once.
func effect(order *domain.SellOrder, event domain.OrderEvent, template domain.NotificationTemplate, extra map[string]string) domain.OutboxMessage {
	payload := map[string]string{
		"order_number":  order.OrderNumber,
		"customer_name": order.CustomerName,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return domain.OutboxMessage{
		DedupKey:       order.OrderNumber + ":" + string(event),
		OrderID:        &order.ID,
		RecipientEmail: order.CustomerEmail,
		RecipientName:  order.CustomerName,
		Template:       template,
		Payload:        payload,
	}
}

// CreateDirectOrder prices each device now and creates the order without a
// quote (guest checkout).
func (s *orderService) CreateDirectOrder(ctx context.Context, customerName, customerEmail, shippingAddress string, items []DirectOrderItem) (*domain.SellOrder, error) {
	if customerEmail == "" {
		return nil, errors.New("customer email is required")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one device")
	}

	now := time.Now()
	var total int64
	orderItems := make([]domain.SellOrderItem, 0, len(items))
	for _, device := range items {
		offer, err := s.calculator.CalculateOffer(ctx, device.VariantID, device.ConditionID, device.Issues, now)
		if err != nil {
			return nil, err
		}
		total += offer.OfferCents
		orderItems = append(orderItems, domain.SellOrderItem{
			VariantID:          device.VariantID,
			ClaimedConditionID: device.ConditionID,
			ClaimedIssues:      device.Issues,
			RuleID:             offer.RuleID,
			BasePriceCents:     offer.BasePriceCents,
			TotalPenaltyCents:  offer.TotalPenaltyCents,
			PenaltyBreakdown:   offer.Penalties,
			OriginalOfferCents: offer.OfferCents,
			AdjustmentReason:   domain.AdjustmentReasonNone,
			CustomerDecision:   domain.DecisionPending,
		})
	}

	order := &domain.SellOrder{
		OrderNumber:             shortRef("BB"),
		CustomerName:            customerName,
		CustomerEmail:           customerEmail,
		ShippingAddress:         shippingAddress,
		Status:                  domain.OrderStatusLabelPending,
		PayoutStatus:            domain.PayoutStatusNotStarted,
		TotalOriginalOfferCents: total,
	}
	if err := s.orderRepo.Create(ctx, order, orderItems); err != nil {
		return nil, err
	}

	logger.Info("Order created", "order", order.OrderNumber, "devices", len(orderItems), "total_cents", total)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*domain.SellOrder, []domain.SellOrderItem, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// RequestLabel buys a carrier label, binds the shipment and advances the
// order to AWAITING_DEVICE. The label purchase happens before the
// transition: if the carrier fails, the order stays in LABEL_PENDING. If the
// transition loses to a concurrent cancel, the fresh label is voided
// best-effort.
func (s *orderService) RequestLabel(ctx context.Context, orderID int64) (*domain.Shipment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusLabelPending {
		return nil, domain.ErrInvalidTransition
	}

	callCtx, cancel := context.WithTimeout(ctx, s.externalTimeout)
	defer cancel()
	label, err := s.carrierClient.PurchaseLabel(callCtx, order.ShippingAddress, order.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("purchasing label for order %s: %w", order.OrderNumber, err)
	}

	shipment := &domain.Shipment{
		OrderID:        order.ID,
		Carrier:        label.Carrier,
		TrackingID:     label.TrackingID,
		LabelRef:       label.LabelRef,
		CostCents:      label.CostCents,
		TrackingStatus: domain.TrackingStatusPreTransit,
	}
	if err := s.shipmentRepo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	err = s.orderRepo.ApplyTransition(ctx, order.ID,
		domain.AllowedSources(domain.EventLabelIssued), domain.OrderStatusAwaitingDevice,
		domain.TransitionUpdate{},
		[]domain.OutboxMessage{effect(order, domain.EventLabelIssued, domain.TemplateLabelReady, map[string]string{
			"tracking_id": label.TrackingID,
			"offer":       formatCents(order.TotalOriginalOfferCents),
		})})
	if err != nil {
		s.voidShipment(context.Background(), shipment)
		return nil, err
	}
	return shipment, nil
}

func (s *orderService) RecordPickup(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	err = s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventPickupScan), domain.OrderStatusInTransit,
		domain.TransitionUpdate{}, nil)
	if err != nil {
		return err
	}
	s.updateTracking(ctx, order.ID, domain.TrackingStatusInTransit)
	return nil
}

func (s *orderService) RecordDelivery(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	err = s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventDeliveryScan), domain.OrderStatusReceived,
		domain.TransitionUpdate{},
		[]domain.OutboxMessage{effect(order, domain.EventDeliveryScan, domain.TemplateDeviceReceived, nil)})
	if err != nil {
		return err
	}
	s.updateTracking(ctx, order.ID, domain.TrackingStatusDelivered)
	return nil
}

func (s *orderService) StartInspection(ctx context.Context, orderID int64) error {
	return s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventInspectionStarted), domain.OrderStatusUnderInspection,
		domain.TransitionUpdate{}, nil)
}

// ResolveInspection records the verified condition of every item. When all
// items match the customer's claim the order goes straight to payout with
// the original offer; any mismatch opens the re-offer sub-protocol with
// revised pricing computed against the inspected state.
func (s *orderService) ResolveInspection(ctx context.Context, orderID int64, findings []InspectionFinding) (*domain.SellOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusUnderInspection {
		return nil, domain.ErrInvalidTransition
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64]InspectionFinding, len(findings))
	for _, f := range findings {
		byItem[f.ItemID] = f
	}

	now := time.Now()
	allMatch := true
	var finalTotal int64
	updates := make([]domain.SellOrderItem, 0, len(items))
	for _, item := range items {
		f, ok := byItem[item.ID]
		if !ok {
			return nil, fmt.Errorf("missing inspection finding for item %d", item.ID)
		}

		inspectedIssues := f.Issues
		item.InspectedConditionID = &f.ConditionID
		item.InspectedIssues = &inspectedIssues

		conditionMismatch := f.ConditionID != item.ClaimedConditionID
		if !conditionMismatch && inspectedIssues == item.ClaimedIssues {
			final := item.OriginalOfferCents
			item.FinalOfferCents = &final
			item.AdjustmentReason = domain.AdjustmentReasonNone
		} else {
			allMatch = false
			offer, err := s.calculator.CalculateOffer(ctx, item.VariantID, f.ConditionID, inspectedIssues, now)
			if err != nil {
				return nil, err
			}
			final := offer.OfferCents
			item.FinalOfferCents = &final
			item.AdjustmentReason = adjustmentReason(item.ClaimedIssues, inspectedIssues, conditionMismatch)
		}
		finalTotal += *item.FinalOfferCents
		updates = append(updates, item)
	}

	if allMatch {
		payout := domain.PayoutStatusPending
		err := s.orderRepo.ApplyTransition(ctx, orderID,
			domain.AllowedSources(domain.EventInspectionMatched), domain.OrderStatusPayoutPending,
			domain.TransitionUpdate{
				PayoutStatus:         &payout,
				TotalFinalOfferCents: &finalTotal,
				Items:                updates,
			}, nil)
		if err != nil {
			return nil, err
		}
		logger.Info("Inspection matched claim", "order", order.OrderNumber, "payout_cents", finalTotal)
		return s.orderRepo.GetByID(ctx, orderID)
	}

	decisionDue := now.AddDate(0, 0, int(s.decisionWindowDays))
	err = s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventReofferProposed), domain.OrderStatusReofferPending,
		domain.TransitionUpdate{
			TotalFinalOfferCents: &finalTotal,
			Items:                updates,
		},
		[]domain.OutboxMessage{effect(order, domain.EventReofferProposed, domain.TemplateReofferProposed, map[string]string{
			"original_offer": formatCents(order.TotalOriginalOfferCents),
			"revised_offer":  formatCents(finalTotal),
			"decision_due":   decisionDue.Format("2006-01-02"),
		})})
	if err != nil {
		return nil, err
	}

	// The decision window opens immediately after the re-offer is proposed.
	// If the process dies between the two transitions, the re-offer sweep
	// job picks the order up and opens the window instead.
	if err := s.openDecisionWindow(ctx, orderID, decisionDue); err != nil {
		return nil, err
	}

	logger.Info("Re-offer proposed", "order", order.OrderNumber,
		"original_cents", order.TotalOriginalOfferCents, "revised_cents", finalTotal, "decision_due", decisionDue)
	return s.orderRepo.GetByID(ctx, orderID)
}

// OpenDecisionWindow resumes an order left in REOFFER_PENDING: the re-offer
// was proposed but the process never opened the customer decision window.
// Idempotent through the transition guard, so racing with ResolveInspection
// is harmless.
func (s *orderService) OpenDecisionWindow(ctx context.Context, orderID int64) error {
	decisionDue := time.Now().AddDate(0, 0, int(s.decisionWindowDays))
	return s.openDecisionWindow(ctx, orderID, decisionDue)
}

func (s *orderService) openDecisionWindow(ctx context.Context, orderID int64, decisionDue time.Time) error {
	return s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventDecisionWindowOpened), domain.OrderStatusCustomerDecisionPending,
		domain.TransitionUpdate{DecisionDueOn: &decisionDue}, nil)
}

// adjustmentReason picks the first applicable cause in priority order:
// blacklisted > financed > condition_mismatch > functional_issue > other.
func adjustmentReason(claimed, inspected domain.IssueSet, conditionMismatch bool) domain.AdjustmentReason {
	switch {
	case inspected.ActivationLock && !claimed.ActivationLock:
		return domain.AdjustmentReasonBlacklisted
	case inspected.IsFinanced && !claimed.IsFinanced:
		return domain.AdjustmentReasonFinanced
	case conditionMismatch:
		return domain.AdjustmentReasonConditionMismatch
	case (inspected.FunctionalIssue && !claimed.FunctionalIssue) || (inspected.NoPower && !claimed.NoPower):
		return domain.AdjustmentReasonFunctionalIssue
	default:
		return domain.AdjustmentReasonOther
	}
}

// RecordDecision stores one item's accept/reject exactly once, then resolves
// the order when no item remains undecided: all accepted pays out the
// revised total, any rejection returns the whole order.
func (s *orderService) RecordDecision(ctx context.Context, itemID int64, decision domain.CustomerDecision) (*domain.SellOrder, error) {
	if decision != domain.DecisionAccepted && decision != domain.DecisionRejected {
		return nil, fmt.Errorf("decision must be %s or %s", domain.DecisionAccepted, domain.DecisionRejected)
	}

	item, err := s.orderRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusCustomerDecisionPending {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.orderRepo.RecordItemDecision(ctx, itemID, decision); err != nil {
		return nil, err
	}

	return s.resolveDecisions(ctx, order)
}

// resolveDecisions checks whether every item has been decided and, if so,
// applies the order-level outcome. Safe under concurrent decisions: the
// transition CAS lets only one caller resolve.
func (s *orderService) resolveDecisions(ctx context.Context, order *domain.SellOrder) (*domain.SellOrder, error) {
	items, err := s.orderRepo.GetItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	anyRejected := false
	var finalTotal int64
	for _, it := range items {
		switch it.CustomerDecision {
		case domain.DecisionPending:
			return s.orderRepo.GetByID(ctx, order.ID)
		case domain.DecisionRejected:
			anyRejected = true
		}
		if it.FinalOfferCents != nil {
			finalTotal += *it.FinalOfferCents
		}
	}

	if anyRejected {
		err := s.orderRepo.ApplyTransition(ctx, order.ID,
			domain.AllowedSources(domain.EventReofferRejected), domain.OrderStatusReturnedToCustomer,
			domain.TransitionUpdate{},
			[]domain.OutboxMessage{effect(order, domain.EventReofferRejected, domain.TemplateReturnInitiated, nil)})
		if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		logger.Info("Re-offer rejected, returning device", "order", order.OrderNumber)
	} else {
		payout := domain.PayoutStatusPending
		err := s.orderRepo.ApplyTransition(ctx, order.ID,
			domain.AllowedSources(domain.EventReofferAccepted), domain.OrderStatusPayoutPending,
			domain.TransitionUpdate{
				PayoutStatus:         &payout,
				TotalFinalOfferCents: &finalTotal,
			}, nil)
		if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return nil, err
		}
		logger.Info("Re-offer accepted", "order", order.OrderNumber, "payout_cents", finalTotal)
	}

	return s.orderRepo.GetByID(ctx, order.ID)
}

// ExpireDecisionWindow applies the timeout default for an order whose
// decision window elapsed: every still-pending item is auto-rejected and
// the device is returned. Auto-accepting on silence would pay the customer
// an amount they never agreed to, so the conservative default is return.
func (s *orderService) ExpireDecisionWindow(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusCustomerDecisionPending {
		return domain.ErrInvalidTransition
	}
	if order.DecisionDueOn == nil || time.Now().Before(*order.DecisionDueOn) {
		return fmt.Errorf("decision window for order %s has not elapsed", order.OrderNumber)
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.CustomerDecision != domain.DecisionPending {
			continue
		}
		err := s.orderRepo.RecordItemDecision(ctx, it.ID, domain.DecisionRejected)
		if err != nil && !errors.Is(err, domain.ErrDecisionAlreadyMade) {
			return err
		}
	}

	_, err = s.resolveDecisions(ctx, order)
	return err
}

// SettlePayout completes the order. The paid payout status commits in the
// same transaction as the COMPLETED status, which is the only way payout
// can reach paid.
func (s *orderService) SettlePayout(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	amount := order.TotalOriginalOfferCents
	if order.TotalFinalOfferCents != nil {
		amount = *order.TotalFinalOfferCents
	}

	paid := domain.PayoutStatusPaid
	return s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventPayoutSettled), domain.OrderStatusCompleted,
		domain.TransitionUpdate{PayoutStatus: &paid},
		[]domain.OutboxMessage{effect(order, domain.EventPayoutSettled, domain.TemplatePaymentConfirmation, map[string]string{
			"amount": formatCents(amount),
		})})
}

func (s *orderService) MarkPayoutFailed(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPayoutPending {
		return domain.ErrInvalidTransition
	}
	failed := domain.PayoutStatusFailed
	// The order stays in PAYOUT_PENDING; an admin retries the settle later.
	return s.orderRepo.ApplyTransition(ctx, orderID,
		[]domain.OrderStatus{domain.OrderStatusPayoutPending}, domain.OrderStatusPayoutPending,
		domain.TransitionUpdate{PayoutStatus: &failed}, nil)
}

// Cancel voids the order from any pre-inspection state. The shipment void
// with the carrier happens after the transition commits and is best-effort:
// a carrier failure leaves the order cancelled, never un-cancels it.
func (s *orderService) Cancel(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	err = s.orderRepo.ApplyTransition(ctx, orderID,
		domain.AllowedSources(domain.EventCancelled), domain.OrderStatusCancelled,
		domain.TransitionUpdate{},
		[]domain.OutboxMessage{effect(order, domain.EventCancelled, domain.TemplateOrderCancelled, nil)})
	if err != nil {
		return err
	}

	shipment, err := s.shipmentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Could not look up shipment after cancel", "order", order.OrderNumber, "error", err)
		}
		return nil
	}
	if shipment.Voidable() {
		s.voidShipment(ctx, shipment)
	}
	return nil
}

func (s *orderService) voidShipment(ctx context.Context, shipment *domain.Shipment) {
	callCtx, cancel := context.WithTimeout(ctx, s.externalTimeout)
	defer cancel()
	if err := s.carrierClient.Void(callCtx, shipment.LabelRef); err != nil {
		logger.Warn("Failed to void label with carrier", "label", shipment.LabelRef, "error", err)
		return
	}
	if err := s.shipmentRepo.MarkVoided(ctx, shipment.ID, time.Now()); err != nil {
		logger.Warn("Failed to record shipment void", "shipment_id", shipment.ID, "error", err)
	}
}

func (s *orderService) updateTracking(ctx context.Context, orderID int64, status domain.TrackingStatus) {
	shipment, err := s.shipmentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		logger.Warn("Could not look up shipment for tracking update", "order_id", orderID, "error", err)
		return
	}
	if err := s.shipmentRepo.UpdateTrackingStatus(ctx, shipment.ID, status, time.Now()); err != nil {
		logger.Warn("Failed to update shipment tracking status", "shipment_id", shipment.ID, "error", err)
	}
}
