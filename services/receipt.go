package services

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"purchase-service/errors"
	"purchase-service/repository"

	"go.uber.org/zap"
)

const (
	receiptAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	receiptRandomChars = 5
	receiptMaxAttempts = 5
)

// GenerateReceiptID builds a receipt ID of the form RCP-YYYYMMDD-XXXXX.
// The date prefix keeps IDs sortable by day; the random suffix makes them
// unique within it.
func GenerateReceiptID() string {
	suffix := make([]byte, receiptRandomChars)
	alphabetLen := big.NewInt(int64(len(receiptAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic("receipt: random source unavailable: " + err.Error())
		}
		suffix[i] = receiptAlphabet[n.Int64()]
	}
	return "RCP-" + time.Now().UTC().Format("20060102") + "-" + string(suffix)
}

// ReceiptIssuer hands out receipt IDs guaranteed absent from the
// purchase store at issue time.
type ReceiptIssuer struct {
	purchases repository.PurchaseRepository
	log       *zap.Logger
}

func NewReceiptIssuer(purchases repository.PurchaseRepository, log *zap.Logger) *ReceiptIssuer {
	return &ReceiptIssuer{purchases: purchases, log: log}
}

// GenerateUnique retries a bounded number of times on collision. Five
// collisions in a row means the random source is suspect, not that more
// retries would help, so it fails hard instead of looping.
func (r *ReceiptIssuer) GenerateUnique(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= receiptMaxAttempts; attempt++ {
		id := GenerateReceiptID()

		exists, err := r.purchases.ExistsReceiptID(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}

		r.log.Warn("Receipt ID collision",
			zap.String("receipt_id", id),
			zap.Int("attempt", attempt),
		)
	}

	r.log.Error("Receipt ID generation exhausted all attempts",
		zap.Int("attempts", receiptMaxAttempts),
	)
	return "", errors.ErrReceiptIDExhausted
}
