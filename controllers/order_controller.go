package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateOrder opens a gateway order for an item. The price always comes
// from the trusted store; the request carries only the item ID.
func (pc *PurchaseController) CreateOrder(c *gin.Context) {
	var req struct {
		ItemID string `json:"itemId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := pc.Orders.CreateOrder(c.Request.Context(), req.ItemID)
	if err != nil {
		pc.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
