package jobs

import (
	"context"

	"buyback-backend/internal/logger"
)

// DispatchOutbox delivers queued notifications. Failures are recorded on
// the outbox row for a later retry and never touch order state.
func (jr *JobRunner) DispatchOutbox() {
	jr.runWithRecovery("DispatchOutbox", func() {
		ctx := context.Background()

		sent, failed, err := jr.noteSvc.DispatchPending(ctx, jr.config.Buyback.OutboxDispatchBatchSize)
		if err != nil {
			logger.Error("Failed to dispatch outbox", "error", err)
			return
		}
		if sent > 0 || failed > 0 {
			logger.Info("Outbox dispatched", "sent", sent, "failed", failed)
		}
	})
}
