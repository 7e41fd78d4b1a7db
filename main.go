package main

import (
	"log"
	"strings"

	"purchase-service/config"
	"purchase-service/controllers"
	"purchase-service/database"
	"purchase-service/kafka"
	"purchase-service/logger"
	"purchase-service/middleware"
	"purchase-service/repository"
	"purchase-service/routes"
	"purchase-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PurchaseService] failed to load config: ", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("[PurchaseService] failed to initialize logger: ", err)
	}
	defer zlog.Sync()

	if err := database.Connect(cfg.MongoURL, cfg.MongoDB); err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Close()
	zlog.Info("Connected to MongoDB", zap.String("db", cfg.MongoDB))

	purchaseRepo := repository.NewMongoPurchaseRepo(database.DB)
	assetRepo := repository.NewMongoAssetRepo(database.DB)

	// Receipt cache is optional: no REDIS_URL means every lookup hits the
	// store.
	var receiptCache repository.ReceiptCache
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zlog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		receiptCache = repository.NewRedisReceiptCache(redisClient)
		zlog.Info("Receipt cache enabled")
	}

	producer := kafka.NewPurchaseEventProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic, zlog)
	defer producer.Close()

	gateway := services.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	prices := services.NewPriceResolver(assetRepo)
	receipts := services.NewReceiptIssuer(purchaseRepo, zlog)
	orderSvc := services.NewOrderService(prices, receipts, gateway, cfg.CurrencyCode, zlog)
	purchaseSvc := services.NewPurchaseService(
		purchaseRepo,
		assetRepo,
		gateway,
		producer,
		receiptCache,
		cfg.RazorpayKeySecret,
		zlog,
	)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(zlog))
	r.Use(middleware.SecurityHeaders())

	pc := &controllers.PurchaseController{
		Orders:        orderSvc,
		Purchases:     purchaseSvc,
		Logger:        zlog,
		WebhookSecret: cfg.RazorpayWebhookSecret,
	}
	routes.RegisterRoutes(r, pc, cfg.AdminJWTSecret)

	zlog.Info("Purchase service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("Server failed", zap.Error(err))
	}
}
