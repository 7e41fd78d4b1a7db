package controllers

import (
	stderrors "errors"
	"net/http"

	apperrors "purchase-service/errors"
	"purchase-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PurchaseController carries the handler dependencies. One instance
// serves every route.
type PurchaseController struct {
	Orders        *services.OrderService
	Purchases     *services.PurchaseService
	Logger        *zap.Logger
	WebhookSecret string
}

// respondError maps an application error to its HTTP status and a
// client-safe message. Details stay in the logs.
func (pc *PurchaseController) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if stderrors.As(err, &appErr) {
		pc.Logger.Warn("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("code", appErr.Code),
			zap.Error(err),
		)
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}

	pc.Logger.Error("Request failed unexpectedly",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
