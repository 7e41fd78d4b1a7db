package repository

import (
	"context"
	"time"

	"purchase-service/errors"
	"purchase-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PurchaseRepository is the durable purchase-record store. All writers go
// through merge-style operations keyed by receipt ID; that is the only
// coordination between the webhook and direct-verification paths.
type PurchaseRepository interface {
	ExistsReceiptID(ctx context.Context, receiptID string) (bool, error)
	FindByReceiptID(ctx context.Context, receiptID string) (*models.PurchaseRecord, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.PurchaseRecord, error)
	// MergeCompleted upserts a completed, verified record. If a record
	// already exists it is upgraded in place: status/verified move to
	// completed/true, non-empty incoming optional fields are filled in,
	// and nothing already populated is blanked. Returns whether a new
	// record was created, so callers can publish events exactly once per
	// receipt instead of once per confirmation path.
	MergeCompleted(ctx context.Context, rec *models.PurchaseRecord) (bool, error)
	// MarkFailed flips an existing non-completed record to failed.
	// Returns false when no record matched (absent or already completed);
	// it never creates a record.
	MarkFailed(ctx context.Context, receiptID string) (bool, error)
	// MarkDisputed flags an already-completed record without touching its
	// status.
	MarkDisputed(ctx context.Context, receiptID string) error
	ListRecent(ctx context.Context, limit int64) ([]models.PurchaseRecord, error)
}

type mongoPurchaseRepo struct {
	col *mongo.Collection
}

func NewMongoPurchaseRepo(db *mongo.Database) PurchaseRepository {
	return &mongoPurchaseRepo{col: db.Collection("purchases")}
}

func (r *mongoPurchaseRepo) ExistsReceiptID(ctx context.Context, receiptID string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"_id": receiptID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoPurchaseRepo) FindByReceiptID(ctx context.Context, receiptID string) (*models.PurchaseRecord, error) {
	var rec models.PurchaseRecord
	err := r.col.FindOne(ctx, bson.M{"_id": receiptID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *mongoPurchaseRepo) FindByPaymentID(ctx context.Context, paymentID string) (*models.PurchaseRecord, error) {
	var rec models.PurchaseRecord
	err := r.col.FindOne(ctx, bson.M{"gatewayPaymentId": paymentID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *mongoPurchaseRepo) MergeCompleted(ctx context.Context, rec *models.PurchaseRecord) (bool, error) {
	now := time.Now().UTC()
	rec.Status = models.StatusCompleted
	rec.Verified = true
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, rec)
	if err == nil {
		return true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return false, err
	}

	// The other confirmation path got here first. Upgrade in place:
	// completed is the top of the status order, so the set is safe, and
	// only non-empty incoming fields are written.
	set := bson.M{
		"status":    models.StatusCompleted,
		"verified":  true,
		"updatedAt": now,
	}
	if rec.BuyerEmail != "" {
		set["buyerEmail"] = rec.BuyerEmail
	}
	if rec.GatewayPaymentID != "" {
		set["gatewayPaymentId"] = rec.GatewayPaymentID
	}
	if rec.GatewaySignature != "" {
		set["gatewaySignature"] = rec.GatewaySignature
	}

	_, err = r.col.UpdateOne(ctx, bson.M{"_id": rec.ReceiptID}, bson.M{"$set": set})
	return false, err
}

func (r *mongoPurchaseRepo) MarkFailed(ctx context.Context, receiptID string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": receiptID, "status": bson.M{"$ne": models.StatusCompleted}},
		bson.M{"$set": bson.M{
			"status":    models.StatusFailed,
			"verified":  false,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoPurchaseRepo) MarkDisputed(ctx context.Context, receiptID string) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": receiptID},
		bson.M{"$set": bson.M{
			"disputed":   true,
			"disputedAt": now,
			"updatedAt":  now,
		}},
	)
	return err
}

func (r *mongoPurchaseRepo) ListRecent(ctx context.Context, limit int64) ([]models.PurchaseRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.PurchaseRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
