package controllers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	apperrors "purchase-service/errors"
	"purchase-service/models"

	"github.com/gin-gonic/gin"
)

// LookupReceipt validates a receipt for the public receipt page. Unknown
// and not-yet-verified receipts both come back valid=false with HTTP 200;
// the message tells them apart.
func (pc *PurchaseController) LookupReceipt(c *gin.Context) {
	receiptID := c.Param("receiptId")

	rec, err := pc.Purchases.LookupReceipt(c.Request.Context(), receiptID)
	if stderrors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Receipt not found"})
		return
	}
	if err != nil {
		pc.respondError(c, err)
		return
	}

	if rec.Status != models.StatusCompleted || !rec.Verified {
		msg := "Receipt is still being confirmed"
		if rec.Status == models.StatusFailed {
			msg = "Payment was not completed"
		}
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "purchase": rec})
}

// PaymentStatus is polled by the hosted-payment-page landing flow until
// a terminal status appears.
func (pc *PurchaseController) PaymentStatus(c *gin.Context) {
	paymentID := c.Query("payment_id")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id is required"})
		return
	}

	status, receiptID, err := pc.Purchases.PaymentStatus(c.Request.Context(), paymentID)
	if err != nil {
		pc.respondError(c, err)
		return
	}

	resp := gin.H{"status": status}
	if receiptID != "" {
		resp["receiptId"] = receiptID
	}
	c.JSON(http.StatusOK, resp)
}

// ListPurchases serves the admin panel's purchase listing.
func (pc *PurchaseController) ListPurchases(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := pc.Purchases.ListRecent(c.Request.Context(), limit)
	if err != nil {
		pc.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": records, "count": len(records)})
}
