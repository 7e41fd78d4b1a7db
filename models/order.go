package models

// OrderDescriptor is what order creation returns to the client. The
// receipt ID is deliberately absent: it only becomes externally
// meaningful once a verified purchase record exists.
type OrderDescriptor struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	AmountMinorUnits int64  `json:"amountMinorUnits"`
	CurrencyCode     string `json:"currencyCode"`
	ItemID           string `json:"itemId"`
	ItemTitle        string `json:"itemTitle"`
}

// GatewayOrder is an order as the gateway reports it back. Receipt and
// notes carry the correlation data embedded at creation time.
type GatewayOrder struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes"`
}
