package routes

import (
	"net/http"

	"purchase-service/controllers"
	"purchase-service/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, pc *controllers.PurchaseController, adminJWTSecret string) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "purchase-service"})
	})

	checkoutLimit := middleware.RateLimit()

	purchases := r.Group("/purchases")
	purchases.POST("/orders", checkoutLimit, pc.CreateOrder)
	purchases.POST("/verify", checkoutLimit, pc.VerifyPayment)
	purchases.GET("/receipt/:receiptId", pc.LookupReceipt)
	purchases.GET("/status", pc.PaymentStatus)

	// Gateway webhook (no auth at the transport level; the body signature
	// is the authentication)
	r.POST("/webhook/razorpay", pc.RazorpayWebhook)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminJWT(adminJWTSecret))
	admin.GET("/purchases", pc.ListPurchases)
}
