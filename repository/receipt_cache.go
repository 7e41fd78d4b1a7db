package repository

import (
	"context"
	"encoding/json"
	"time"

	"purchase-service/models"

	"github.com/redis/go-redis/v9"
)

// ReceiptCache caches completed purchase records for the public receipt
// lookup. Completed records are immutable, so a TTL is only there to
// bound memory, not for invalidation. Pending records are never cached.
type ReceiptCache interface {
	Get(ctx context.Context, receiptID string) (*models.PurchaseRecord, bool)
	Set(ctx context.Context, rec *models.PurchaseRecord)
}

const receiptCacheTTL = 12 * time.Hour

type redisReceiptCache struct {
	client *redis.Client
}

func NewRedisReceiptCache(client *redis.Client) ReceiptCache {
	return &redisReceiptCache{client: client}
}

func (c *redisReceiptCache) Get(ctx context.Context, receiptID string) (*models.PurchaseRecord, bool) {
	data, err := c.client.Get(ctx, "receipt:"+receiptID).Bytes()
	if err != nil {
		return nil, false
	}
	var rec models.PurchaseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (c *redisReceiptCache) Set(ctx context.Context, rec *models.PurchaseRecord) {
	if rec.Status != models.StatusCompleted {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	// Best effort; a cache miss just falls through to the store.
	c.client.Set(ctx, "receipt:"+rec.ReceiptID, data, receiptCacheTTL)
}
