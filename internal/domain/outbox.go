package domain

import "time"

// NotificationTemplate enumerates the customer-facing messages the lifecycle
// can produce. One template per transition that notifies.
type NotificationTemplate string

const (
	TemplateLabelReady          NotificationTemplate = "LABEL_READY"
	TemplateDeviceReceived      NotificationTemplate = "DEVICE_RECEIVED"
	TemplateReofferProposed     NotificationTemplate = "REOFFER_PROPOSED"
	TemplatePaymentConfirmation NotificationTemplate = "PAYMENT_CONFIRMATION"
	TemplateOrderCancelled      NotificationTemplate = "ORDER_CANCELLED"
	TemplateReturnInitiated     NotificationTemplate = "RETURN_INITIATED"
)

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// OutboxMessage is a queued notification. Rows are inserted in the same
// transaction as the status change that produced them; delivery is a
// separate best-effort pass that can never roll the transition back.
// DedupKey (order number + event) keeps each transition's notification
// unique: never zero, never duplicated.
type OutboxMessage struct {
	ID             int64                `json:"id"`
	DedupKey       string               `json:"dedup_key"`
	OrderID        *int64               `json:"order_id,omitempty"`
	RecipientEmail string               `json:"recipient_email"`
	RecipientName  string               `json:"recipient_name"`
	Template       NotificationTemplate `json:"template"`
	Payload        map[string]string    `json:"payload"`
	Status         OutboxStatus         `json:"status"`
	Attempts       int32                `json:"attempts"`
	LastError      string               `json:"last_error"`
	CreatedOn      time.Time            `json:"created_on"`
	SentOn         *time.Time           `json:"sent_on,omitempty"`
}
