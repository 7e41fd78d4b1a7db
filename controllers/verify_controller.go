package controllers

import (
	stderrors "errors"
	"net/http"

	apperrors "purchase-service/errors"
	"purchase-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyPayment is the client's synchronous path to a receipt right
// after checkout. A signature failure is a security event and comes back
// as 403; anything after the signature passes surfaces as a
// contact-support failure, since this handler is the user's only
// synchronous way to get their receipt.
func (pc *PurchaseController) VerifyPayment(c *gin.Context) {
	var req models.DirectVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	rec, err := pc.Purchases.VerifyPayment(c.Request.Context(), &req)
	if err != nil {
		if stderrors.Is(err, apperrors.ErrInvalidSignature) {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Payment verification failed"})
			return
		}
		pc.Logger.Error("Direct verification failed after signature check",
			zap.String("gateway_order_id", req.RazorpayOrderID),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   "Payment verification failed, please contact support",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"receiptId":    rec.ReceiptID,
		"downloadLink": rec.DownloadLink,
	})
}
