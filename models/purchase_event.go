package models

import "time"

// PurchaseEvent is published to Kafka whenever a purchase record reaches
// a terminal state. Downstream consumers (receipt e-mail, analytics) are
// outside this service.
type PurchaseEvent struct {
	EventID          string    `json:"event_id"`
	Type             string    `json:"type"` // "purchase_completed", "purchase_failed", "purchase_disputed"
	ReceiptID        string    `json:"receipt_id"`
	ItemID           string    `json:"item_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	AmountMinorUnits int64     `json:"amount_minor_units"`
	CurrencyCode     string    `json:"currency_code"`
	BuyerEmail       string    `json:"buyer_email,omitempty"`
	Timestamp        time.Time `json:"timestamp"` // UTC event time
}

const (
	PurchaseCompletedEvent = "purchase_completed"
	PurchaseFailedEvent    = "purchase_failed"
	PurchaseDisputedEvent  = "purchase_disputed"
)
