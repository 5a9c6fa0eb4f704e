package notify

import (
	"context"
	"fmt"

	"buyback-backend/internal/domain"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers lifecycle emails through SendGrid.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *SendGridSender) Send(ctx context.Context, toEmail, toName string, template domain.NotificationTemplate, payload map[string]string) error {
	subject, body, err := renderTemplate(template, payload)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func renderTemplate(template domain.NotificationTemplate, payload map[string]string) (subject, body string, err error) {
	orderNumber := payload["order_number"]
	name := payload["customer_name"]

	switch template {
	case domain.TemplateLabelReady:
		subject = fmt.Sprintf("Your shipping label for order %s", orderNumber)
		body = fmt.Sprintf("Hello %s,\n\nYour prepaid shipping label is ready. Tracking number: %s.\nPrint the label, pack your device, and drop it off with the carrier.\n\nYour guaranteed offer: %s.",
			name, payload["tracking_id"], payload["offer"])
	case domain.TemplateDeviceReceived:
		subject = fmt.Sprintf("We received your device - order %s", orderNumber)
		body = fmt.Sprintf("Hello %s,\n\nYour device arrived at our facility and is queued for inspection. We'll be in touch once inspection completes.", name)
	case domain.TemplateReofferProposed:
		subject = fmt.Sprintf("Updated offer for order %s", orderNumber)
		body = fmt.Sprintf("Hello %s,\n\nInspection found your device in a different condition than described. Your revised offer is %s (originally %s).\nPlease accept or decline by %s. If we don't hear from you, the device will be returned to you.",
			name, payload["revised_offer"], payload["original_offer"], payload["decision_due"])
	case domain.TemplatePaymentConfirmation:
		subject = fmt.Sprintf("Payment sent for order %s", orderNumber)
		body = fmt.Sprintf("Hello %s,\n\nYour payout of %s is on its way. Thanks for trading in with us!", name, payload["amount"])
	case domain.TemplateOrderCancelled:
		subject = fmt.Sprintf("Order %s cancelled", orderNumber)
		body = fmt.Sprintf("Hello %s,\n\nYour trade-in order %s has been cancelled. Any unused shipping label has been voided.", name, orderNumber)
	case domain.TemplateReturnInitiated:
		subject = fmt.Sprintf("Your device is being returned - order %s", orderNumber)
		body = fmt.Sprintf("Hello %s,\n\nAs requested, we're returning your device. No payment will be issued for this order.", name)
	default:
		return "", "", fmt.Errorf("unknown notification template %q", template)
	}
	return subject, body, nil
}
