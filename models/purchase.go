package models

import "time"

// Purchase status values. Ordered: pending < failed < completed. Merge
// writes never move a record to a lower-ranked status.
const (
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

// StatusRank maps a status to its position in the upgrade order.
var StatusRank = map[string]int{
	StatusPending:   0,
	StatusFailed:    1,
	StatusCompleted: 2,
}

// PurchaseRecord is the system of record for a completed (or attempted)
// purchase. Keyed by ReceiptID in the purchases collection; the item
// fields are a snapshot taken at verification time so the receipt still
// resolves if the asset is later edited or deleted.
type PurchaseRecord struct {
	ReceiptID        string     `bson:"_id" json:"receiptId"`
	ItemID           string     `bson:"itemId" json:"itemId"`
	ItemTitle        string     `bson:"itemTitle" json:"itemTitle"`
	PriceDisplay     string     `bson:"priceDisplay" json:"priceDisplay"`
	DownloadLink     string     `bson:"downloadLink" json:"downloadLink"`
	BuyerEmail       string     `bson:"buyerEmail,omitempty" json:"buyerEmail,omitempty"`
	GatewayOrderID   string     `bson:"gatewayOrderId" json:"gatewayOrderId"`
	GatewayPaymentID string     `bson:"gatewayPaymentId" json:"gatewayPaymentId"`
	GatewaySignature string     `bson:"gatewaySignature,omitempty" json:"-"`
	AmountMinorUnits int64      `bson:"amountMinorUnits" json:"amountMinorUnits"`
	CurrencyCode     string     `bson:"currencyCode" json:"currencyCode"`
	Verified         bool       `bson:"verified" json:"verified"`
	Status           string     `bson:"status" json:"status"`
	Disputed         bool       `bson:"disputed,omitempty" json:"disputed,omitempty"`
	DisputedAt       *time.Time `bson:"disputedAt,omitempty" json:"disputedAt,omitempty"`
	PurchaseDate     time.Time  `bson:"purchaseDate" json:"purchaseDate"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Asset is the trusted store's view of a purchasable item. Owned by the
// CMS; this service only reads it.
type Asset struct {
	ID           string `bson:"_id" json:"id"`
	Title        string `bson:"title" json:"title"`
	Price        string `bson:"price" json:"price"` // display string, e.g. "₹2,499"
	DownloadLink string `bson:"downloadLink" json:"downloadLink"`
}
