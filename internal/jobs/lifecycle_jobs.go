package jobs

import (
	"context"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
)

// ExpireQuotes flips locked quotes whose window has elapsed to EXPIRED.
func (jr *JobRunner) ExpireQuotes() {
	jr.runWithRecovery("ExpireQuotes", func() {
		ctx := context.Background()

		count, err := jr.quoteRepo.ExpireLocked(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to expire quotes", "error", err)
			return
		}
		logger.Info("Expired locked quotes", "count", count)
	})
}

// ExpireDecisionWindows auto-rejects orders whose re-offer decision window
// elapsed without a customer response. The device goes back to the
// customer; silence never pays out. It first sweeps orders stuck in
// REOFFER_PENDING forward into the decision window, so a crash between the
// two re-offer transitions never parks an order permanently.
func (jr *JobRunner) ExpireDecisionWindows() {
	jr.runWithRecovery("ExpireDecisionWindows", func() {
		ctx := context.Background()

		stalled, err := jr.orderRepo.ListByStatus(ctx, domain.OrderStatusReofferPending)
		if err != nil {
			logger.Error("Failed to list stalled re-offers", "error", err)
			return
		}
		for _, order := range stalled {
			if err := jr.orderSvc.OpenDecisionWindow(ctx, order.ID); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
				logger.Error("Failed to open decision window", "order", order.OrderNumber, "error", err)
				continue
			}
			logger.Info("Resumed stalled re-offer", "order", order.OrderNumber)
		}

		orders, err := jr.orderRepo.ListPastDecisionDue(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to list orders past decision due", "error", err)
			return
		}

		expired := 0
		for _, order := range orders {
			if err := jr.orderSvc.ExpireDecisionWindow(ctx, order.ID); err != nil {
				// Lost to a concurrent customer decision; nothing to do.
				if errors.Is(err, domain.ErrInvalidTransition) {
					continue
				}
				logger.Error("Failed to expire decision window", "order", order.OrderNumber, "error", err)
				continue
			}
			expired++
			logger.Debug("Decision window expired, device returning", "order", order.OrderNumber, "due", order.DecisionDueOn)
		}
		logger.Info("Expired decision windows", "count", expired)
	})
}

// RefreshTracking polls the carrier for shipments still waiting on a scan
// and feeds pickup/delivery events through the order service. Status writes
// go through the state machine, never directly to the order row.
func (jr *JobRunner) RefreshTracking() {
	jr.runWithRecovery("RefreshTracking", func() {
		ctx := context.Background()

		shipments, err := jr.shipmentRepo.ListAwaitingScan(ctx)
		if err != nil {
			logger.Error("Failed to list shipments awaiting scan", "error", err)
			return
		}

		for _, shipment := range shipments {
			callCtx, cancel := context.WithTimeout(ctx, jr.config.ExternalTimeout())
			update, err := jr.carrier.Track(callCtx, shipment.TrackingID)
			cancel()
			if err != nil {
				logger.Warn("Tracking lookup failed", "tracking_id", shipment.TrackingID, "error", err)
				continue
			}

			switch update.Status {
			case domain.TrackingStatusInTransit:
				if err := jr.orderSvc.RecordPickup(ctx, shipment.OrderID); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
					logger.Error("Failed to record pickup", "order_id", shipment.OrderID, "error", err)
				}
			case domain.TrackingStatusDelivered:
				// A delivery scan may arrive before we ever saw the pickup;
				// walk through in-transit first so no state is skipped.
				if err := jr.orderSvc.RecordPickup(ctx, shipment.OrderID); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
					logger.Error("Failed to record pickup", "order_id", shipment.OrderID, "error", err)
					continue
				}
				if err := jr.orderSvc.RecordDelivery(ctx, shipment.OrderID); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
					logger.Error("Failed to record delivery", "order_id", shipment.OrderID, "error", err)
				}
			default:
				if err := jr.shipmentRepo.UpdateTrackingStatus(ctx, shipment.ID, update.Status, time.Now()); err != nil {
					logger.Warn("Failed to record tracking check", "shipment_id", shipment.ID, "error", err)
				}
			}
		}
		logger.Info("Tracking refresh finished", "shipments", len(shipments))
	})
}
