package services_test

import (
	"context"
	"regexp"
	"testing"

	"purchase-service/errors"
	"purchase-service/services"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var receiptPattern = regexp.MustCompile(`^RCP-\d{8}-[A-Z0-9]{5}$`)

func TestGenerateReceiptID_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := services.GenerateReceiptID()
		assert.Regexp(t, receiptPattern, id)
	}
}

func TestGenerateUnique_UniqueAcrossMany(t *testing.T) {
	repo := newMemPurchaseRepo()
	issuer := services.NewReceiptIssuer(repo, zap.NewNop())

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id, err := issuer.GenerateUnique(context.Background())
		assert.NoError(t, err)
		assert.Regexp(t, receiptPattern, id)

		_, dup := seen[id]
		assert.False(t, dup, "duplicate receipt id %s", id)
		seen[id] = struct{}{}

		// record it so later generations collide against it in the store
		repo.records[id] = nil
	}
}

func TestGenerateUnique_ExhaustsAfterFiveAttempts(t *testing.T) {
	repo := newMemPurchaseRepo()
	repo.existsAll = true
	issuer := services.NewReceiptIssuer(repo, zap.NewNop())

	_, err := issuer.GenerateUnique(context.Background())
	assert.ErrorIs(t, err, errors.ErrReceiptIDExhausted)
	assert.Equal(t, 5, repo.existsCalls, "exactly five attempts, not fewer or more")
}
