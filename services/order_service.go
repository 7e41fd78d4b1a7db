package services

import (
	"context"

	"purchase-service/models"

	"go.uber.org/zap"
)

// OrderService opens gateway orders for purchasable items.
type OrderService struct {
	prices   *PriceResolver
	receipts *ReceiptIssuer
	gateway  PaymentGateway
	currency string
	log      *zap.Logger
}

func NewOrderService(prices *PriceResolver, receipts *ReceiptIssuer, gateway PaymentGateway, currency string, log *zap.Logger) *OrderService {
	return &OrderService{
		prices:   prices,
		receipts: receipts,
		gateway:  gateway,
		currency: currency,
		log:      log,
	}
}

// CreateOrder resolves the trusted price, issues a fresh receipt ID and
// opens a gateway order tagged with it. The descriptor returned to the
// client does not include the receipt ID: it only becomes meaningful
// once a verified purchase record exists, so a client can never present
// a plausible-looking receipt that was never confirmed.
func (s *OrderService) CreateOrder(ctx context.Context, itemID string) (*models.OrderDescriptor, error) {
	amount, asset, err := s.prices.Resolve(ctx, itemID)
	if err != nil {
		return nil, err
	}

	receiptID, err := s.receipts.GenerateUnique(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, amount, s.currency, receiptID, map[string]string{
		"item_id":    asset.ID,
		"item_title": asset.Title,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Gateway order created",
		zap.String("gateway_order_id", order.ID),
		zap.String("item_id", asset.ID),
		zap.Int64("amount_minor_units", amount),
	)

	return &models.OrderDescriptor{
		GatewayOrderID:   order.ID,
		AmountMinorUnits: amount,
		CurrencyCode:     s.currency,
		ItemID:           asset.ID,
		ItemTitle:        asset.Title,
	}, nil
}
