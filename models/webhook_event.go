package models

// Webhook event types this service acts on. Everything else is
// acknowledged and ignored.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookEnvelope is the gateway's webhook body. The raw bytes are
// signature-checked before this is ever parsed.
type WebhookEnvelope struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Payment WebhookPaymentWrapper `json:"payment"`
}

type WebhookPaymentWrapper struct {
	Entity WebhookPaymentEntity `json:"entity"`
}

// WebhookPaymentEntity is the payment object inside a webhook event.
// It carries the gateway's order id but not the receipt id; the order
// has to be fetched back to recover that.
type WebhookPaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Email    string `json:"email"`
}
