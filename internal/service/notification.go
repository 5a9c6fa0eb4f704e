package service

import (
	"context"
	"time"

	"buyback-backend/internal/logger"
	"buyback-backend/internal/notify"
	"buyback-backend/internal/repository"
)

type notificationService struct {
	outboxRepo  repository.OutboxRepository
	sender      notify.Sender
	sendTimeout time.Duration
}

func NewNotificationService(outboxRepo repository.OutboxRepository, sender notify.Sender, sendTimeout time.Duration) NotificationService {
	return &notificationService{
		outboxRepo:  outboxRepo,
		sender:      sender,
		sendTimeout: sendTimeout,
	}
}

// DispatchPending is the delivery half of the outbox: transitions enqueue,
// this sends. A failed send marks the row failed and moves on; the row is
// re-listed on later runs until its attempt cap, and the status change
// that produced the message already committed and stays committed.
func (s *notificationService) DispatchPending(ctx context.Context, limit int32) (int, int, error) {
	msgs, err := s.outboxRepo.ListPending(ctx, limit)
	if err != nil {
		return 0, 0, err
	}

	sent, failed := 0, 0
	for _, msg := range msgs {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		err := s.sender.Send(sendCtx, msg.RecipientEmail, msg.RecipientName, msg.Template, msg.Payload)
		cancel()

		if err != nil {
			failed++
			logger.Warn("Notification delivery failed", "dedup_key", msg.DedupKey, "template", msg.Template, "error", err)
			if markErr := s.outboxRepo.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				logger.Error("Failed to mark outbox message failed", "id", msg.ID, "error", markErr)
			}
			continue
		}

		sent++
		if markErr := s.outboxRepo.MarkSent(ctx, msg.ID, time.Now()); markErr != nil {
			logger.Error("Failed to mark outbox message sent", "id", msg.ID, "error", markErr)
		}
	}
	return sent, failed, nil
}
