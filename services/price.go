package services

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"purchase-service/errors"
	"purchase-service/models"
	"purchase-service/repository"
)

// priceToken matches the first decimal-capable number in a display price,
// e.g. the "2,499" in "₹2,499" or the "49.99" in "$49.99 USD".
var priceToken = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// PriceResolver reads the canonical admin-controlled price for an item.
// The client never supplies a price; it always comes from here.
type PriceResolver struct {
	assets repository.AssetRepository
}

func NewPriceResolver(assets repository.AssetRepository) *PriceResolver {
	return &PriceResolver{assets: assets}
}

// Resolve returns the item's price in minor currency units along with the
// asset itself. The price field is an admin-entered display string; if it
// stops parsing, orders fail loudly rather than charging a wrong amount.
func (p *PriceResolver) Resolve(ctx context.Context, itemID string) (int64, *models.Asset, error) {
	asset, err := p.assets.FindByID(ctx, itemID)
	if err != nil {
		return 0, nil, err
	}

	if strings.TrimSpace(asset.Price) == "" {
		return 0, nil, errors.ErrNotPurchasable
	}

	amount, err := ParseDisplayPrice(asset.Price)
	if err != nil {
		return 0, nil, err
	}
	return amount, asset, nil
}

// ParseDisplayPrice converts a display price string to minor units.
func ParseDisplayPrice(display string) (int64, error) {
	token := priceToken.FindString(display)
	if token == "" {
		return 0, errors.ErrInvalidPriceFormat
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrInvalidPriceFormat, err)
	}
	if value <= 0 {
		return 0, errors.ErrInvalidPriceFormat
	}

	return int64(math.Round(value * 100)), nil
}
