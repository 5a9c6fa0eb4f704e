package notify

import (
	"context"
	"sync"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
)

// SentMessage records one delivery made through the mock sender.
type SentMessage struct {
	ToEmail  string
	ToName   string
	Template domain.NotificationTemplate
	Payload  map[string]string
}

// MockSender logs messages instead of delivering them. Used for local
// development and tests.
type MockSender struct {
	mu   sync.Mutex
	sent []SentMessage
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, toEmail, toName string, template domain.NotificationTemplate, payload map[string]string) error {
	m.mu.Lock()
	m.sent = append(m.sent, SentMessage{ToEmail: toEmail, ToName: toName, Template: template, Payload: payload})
	m.mu.Unlock()

	logger.Info("Mock notification sent", "to", toEmail, "template", template)
	return nil
}

// Sent returns a copy of everything delivered so far.
func (m *MockSender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
