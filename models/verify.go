package models

// DirectVerifyRequest is the client callback made right after an
// in-browser checkout completes. Everything security-relevant in it is
// re-checked server-side; itemId is only a cross-check.
type DirectVerifyRequest struct {
	RazorpayOrderID   string `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature" binding:"required"`
	ItemID            string `json:"itemId"`
	BuyerEmail        string `json:"buyerEmail"`
}
