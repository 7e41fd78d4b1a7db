package services

import (
	"context"
	stderrors "errors"
	"time"

	"purchase-service/errors"
	"purchase-service/models"
	"purchase-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher pushes purchase events to the event bus. Kept as an
// interface so tests can swap the Kafka producer out.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PurchaseEvent) error
}

// PurchaseService is the confirmation core. The webhook processor and
// the direct-verification handler both land here and race to write the
// same purchase record; correctness comes from the store's merge writes,
// not from any coordination between them.
type PurchaseService struct {
	purchases repository.PurchaseRepository
	assets    repository.AssetRepository
	gateway   PaymentGateway
	events    EventPublisher          // optional
	cache     repository.ReceiptCache // optional
	apiSecret string
	log       *zap.Logger
}

func NewPurchaseService(
	purchases repository.PurchaseRepository,
	assets repository.AssetRepository,
	gateway PaymentGateway,
	events EventPublisher,
	cache repository.ReceiptCache,
	apiSecret string,
	log *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		assets:    assets,
		gateway:   gateway,
		events:    events,
		cache:     cache,
		apiSecret: apiSecret,
		log:       log,
	}
}

// ProcessWebhookEvent dispatches a signature-verified webhook envelope.
// Errors returned here are for logging only: the controller still acks
// the gateway with a 200 so non-transient failures don't trigger a
// retry storm.
func (s *PurchaseService) ProcessWebhookEvent(ctx context.Context, env *models.WebhookEnvelope) error {
	switch env.Event {
	case models.EventPaymentCaptured:
		return s.handleCaptured(ctx, env.Payload.Payment.Entity)
	case models.EventPaymentFailed:
		return s.handleFailed(ctx, env.Payload.Payment.Entity)
	default:
		s.log.Info("Ignoring webhook event", zap.String("event", env.Event))
		return nil
	}
}

func (s *PurchaseService) handleCaptured(ctx context.Context, payment models.WebhookPaymentEntity) error {
	order, receiptID, err := s.correlateOrder(ctx, payment.OrderID)
	if err != nil {
		return err
	}

	rec := s.buildRecord(ctx, order, receiptID, payment.ID, payment.Email, "")

	created, err := s.purchases.MergeCompleted(ctx, rec)
	if err != nil {
		s.log.Error("Failed to write purchase record",
			zap.String("receipt_id", receiptID),
			zap.Error(err),
		)
		return err
	}

	s.log.Info("Purchase confirmed via webhook",
		zap.String("receipt_id", receiptID),
		zap.String("gateway_payment_id", payment.ID),
		zap.Bool("created", created),
	)

	if s.cache != nil {
		s.cache.Set(ctx, rec)
	}
	if created {
		s.publishEvent(ctx, models.PurchaseCompletedEvent, rec)
	}
	return nil
}

func (s *PurchaseService) handleFailed(ctx context.Context, payment models.WebhookPaymentEntity) error {
	_, receiptID, err := s.correlateOrder(ctx, payment.OrderID)
	if err != nil {
		return err
	}

	rec, err := s.purchases.FindByReceiptID(ctx, receiptID)
	if stderrors.Is(err, errors.ErrNotFound) {
		// Nothing to mark failed; a failed record is never created from
		// nothing.
		s.log.Info("Failure event for unknown receipt, ignoring",
			zap.String("receipt_id", receiptID),
		)
		return nil
	}
	if err != nil {
		return err
	}

	if rec.Status == models.StatusCompleted {
		// A failure arriving after completion does not downgrade the
		// record; it becomes a dispute flag for manual follow-up.
		s.log.Warn("Failure event for completed purchase, flagging as disputed",
			zap.String("receipt_id", receiptID),
			zap.String("gateway_payment_id", payment.ID),
		)
		if err := s.purchases.MarkDisputed(ctx, receiptID); err != nil {
			return err
		}
		s.publishEvent(ctx, models.PurchaseDisputedEvent, rec)
		return nil
	}

	marked, err := s.purchases.MarkFailed(ctx, receiptID)
	if err != nil {
		return err
	}
	if marked {
		s.log.Info("Purchase marked failed",
			zap.String("receipt_id", receiptID),
		)
		rec.Status = models.StatusFailed
		s.publishEvent(ctx, models.PurchaseFailedEvent, rec)
	}
	return nil
}

// VerifyPayment handles the client's synchronous callback after an
// in-browser checkout. It never trusts client-supplied order data beyond
// the identifiers covered by the signature.
func (s *PurchaseService) VerifyPayment(ctx context.Context, req *models.DirectVerifyRequest) (*models.PurchaseRecord, error) {
	message := req.RazorpayOrderID + "|" + req.RazorpayPaymentID
	if !VerifySignature([]byte(message), req.RazorpaySignature, s.apiSecret) {
		s.log.Warn("Direct verification signature mismatch",
			zap.String("gateway_order_id", req.RazorpayOrderID),
			zap.String("gateway_payment_id", req.RazorpayPaymentID),
		)
		return nil, errors.ErrInvalidSignature
	}

	order, receiptID, err := s.correlateOrder(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}

	if req.ItemID != "" && req.ItemID != order.Notes["item_id"] {
		s.log.Warn("Client item ID disagrees with gateway order, using order",
			zap.String("client_item_id", req.ItemID),
			zap.String("order_item_id", order.Notes["item_id"]),
		)
	}

	rec := s.buildRecord(ctx, order, receiptID, req.RazorpayPaymentID, req.BuyerEmail, req.RazorpaySignature)

	created, err := s.purchases.MergeCompleted(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.log.Info("Purchase confirmed via direct verification",
		zap.String("receipt_id", receiptID),
		zap.String("gateway_payment_id", req.RazorpayPaymentID),
		zap.Bool("created", created),
	)

	if s.cache != nil {
		s.cache.Set(ctx, rec)
	}
	if created {
		s.publishEvent(ctx, models.PurchaseCompletedEvent, rec)
	}
	return rec, nil
}

// LookupReceipt serves the public receipt endpoint, preferring the cache
// for completed records.
func (s *PurchaseService) LookupReceipt(ctx context.Context, receiptID string) (*models.PurchaseRecord, error) {
	if s.cache != nil {
		if rec, ok := s.cache.Get(ctx, receiptID); ok {
			return rec, nil
		}
	}

	rec, err := s.purchases.FindByReceiptID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, rec)
	}
	return rec, nil
}

// PaymentStatus is the poller's read: purchase state by gateway payment
// ID. An absent record reads as "unknown", not an error — the webhook
// may simply not have arrived yet.
func (s *PurchaseService) PaymentStatus(ctx context.Context, paymentID string) (status, receiptID string, err error) {
	rec, err := s.purchases.FindByPaymentID(ctx, paymentID)
	if stderrors.Is(err, errors.ErrNotFound) {
		return "unknown", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return rec.Status, rec.ReceiptID, nil
}

// ListRecent returns recent purchase records for the admin panel.
func (s *PurchaseService) ListRecent(ctx context.Context, limit int64) ([]models.PurchaseRecord, error) {
	return s.purchases.ListRecent(ctx, limit)
}

// correlateOrder fetches the gateway order and recovers the receipt ID
// embedded at order creation. This is the only correlation mechanism:
// webhook payloads and client callbacks never carry a trusted receipt ID.
func (s *PurchaseService) correlateOrder(ctx context.Context, orderID string) (*models.GatewayOrder, string, error) {
	if orderID == "" {
		return nil, "", errors.Wrap(errors.ErrBadRequest, stderrors.New("missing gateway order id"))
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		s.log.Error("Failed to fetch gateway order",
			zap.String("gateway_order_id", orderID),
			zap.Error(err),
		)
		return nil, "", err
	}

	if order.Receipt == "" {
		s.log.Error("Gateway order has no receipt tag",
			zap.String("gateway_order_id", orderID),
		)
		return nil, "", errors.Wrap(errors.ErrInternalServer, stderrors.New("order missing receipt tag"))
	}
	return order, order.Receipt, nil
}

// buildRecord assembles a purchase record with the item snapshot taken
// at confirmation time. If the asset has been deleted since the order
// was opened, the order notes are the remaining truth: the receipt must
// still resolve.
func (s *PurchaseService) buildRecord(ctx context.Context, order *models.GatewayOrder, receiptID, paymentID, buyerEmail, signature string) *models.PurchaseRecord {
	itemID := order.Notes["item_id"]
	itemTitle := order.Notes["item_title"]
	priceDisplay := ""
	downloadLink := ""

	asset, err := s.assets.FindByID(ctx, itemID)
	if err != nil {
		s.log.Warn("Asset missing at confirmation time, snapshotting from order notes",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
	} else {
		itemTitle = asset.Title
		priceDisplay = asset.Price
		downloadLink = asset.DownloadLink
	}

	return &models.PurchaseRecord{
		ReceiptID:        receiptID,
		ItemID:           itemID,
		ItemTitle:        itemTitle,
		PriceDisplay:     priceDisplay,
		DownloadLink:     downloadLink,
		BuyerEmail:       buyerEmail,
		GatewayOrderID:   order.ID,
		GatewayPaymentID: paymentID,
		GatewaySignature: signature,
		AmountMinorUnits: order.Amount,
		CurrencyCode:     order.Currency,
		PurchaseDate:     time.Now().UTC(),
	}
}

// publishEvent sends a purchase event to the bus. Publish failures are
// logged and never fail the request that caused them.
func (s *PurchaseService) publishEvent(ctx context.Context, eventType string, rec *models.PurchaseRecord) {
	if s.events == nil {
		return
	}

	event := models.PurchaseEvent{
		EventID:          uuid.New().String(),
		Type:             eventType,
		ReceiptID:        rec.ReceiptID,
		ItemID:           rec.ItemID,
		GatewayPaymentID: rec.GatewayPaymentID,
		AmountMinorUnits: rec.AmountMinorUnits,
		CurrencyCode:     rec.CurrencyCode,
		BuyerEmail:       rec.BuyerEmail,
		Timestamp:        time.Now().UTC(),
	}

	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Error("Failed to publish purchase event",
			zap.String("event_type", eventType),
			zap.String("receipt_id", rec.ReceiptID),
			zap.Error(err),
		)
		return
	}
	s.log.Info("Purchase event published",
		zap.String("event_type", eventType),
		zap.String("receipt_id", rec.ReceiptID),
	)
}
