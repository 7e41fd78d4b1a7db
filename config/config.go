package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	Env                   string
	MongoURL              string
	MongoDB               string
	RedisURL              string // optional; empty disables the receipt cache
	KafkaBrokers          string
	KafkaTopic            string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	AdminJWTSecret        string
	CurrencyCode          string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", "8089"),
		Env:                   getEnv("ENV", "development"),
		MongoURL:              os.Getenv("MONGO_URL"),
		MongoDB:               getEnv("MONGO_DB", "portfolio"),
		RedisURL:              os.Getenv("REDIS_URL"),
		KafkaBrokers:          getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "purchase-events"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		AdminJWTSecret:        os.Getenv("ADMIN_JWT_SECRET"),
		CurrencyCode:          getEnv("CURRENCY", "INR"),
	}

	if cfg.MongoURL == "" || cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" ||
		cfg.RazorpayWebhookSecret == "" || cfg.AdminJWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
