package notify

import (
	"context"

	"buyback-backend/internal/domain"
)

// Sender delivers one templated customer message. Implementations are
// external collaborators: delivery failure is recoverable and must never be
// allowed to affect order state.
type Sender interface {
	Send(ctx context.Context, toEmail, toName string, template domain.NotificationTemplate, payload map[string]string) error
}
