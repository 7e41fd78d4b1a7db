package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"purchase-service/models"
	"purchase-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RazorpayWebhook receives gateway webhook events. Rejections (4xx)
// happen only before any side effect: missing or bad signature, or a
// body that won't parse. Once the signature has passed, processing
// errors are logged and still acked with 200 — retrying wouldn't fix
// them and rejecting would trigger the gateway's retry storm.
func (pc *PurchaseController) RazorpayWebhook(c *gin.Context) {
	signature := c.GetHeader("X-Razorpay-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature missing"})
		return
	}

	// The raw bytes are what the gateway signed; they must be hashed
	// before any JSON parsing.
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read body"})
		return
	}

	if !services.VerifySignature(payload, signature, pc.WebhookSecret) {
		pc.Logger.Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	var env models.WebhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed body"})
		return
	}

	pc.Logger.Info("Webhook received", zap.String("event", env.Event))

	if err := pc.Purchases.ProcessWebhookEvent(c.Request.Context(), &env); err != nil {
		pc.Logger.Error("Webhook processing failed",
			zap.String("event", env.Event),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
