package repository

import (
	"context"

	"purchase-service/errors"
	"purchase-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AssetRepository reads purchasable items from the trusted store. The
// assets collection is owned by the CMS; this service never writes it.
type AssetRepository interface {
	FindByID(ctx context.Context, itemID string) (*models.Asset, error)
}

type mongoAssetRepo struct {
	col *mongo.Collection
}

func NewMongoAssetRepo(db *mongo.Database) AssetRepository {
	return &mongoAssetRepo{col: db.Collection("assets")}
}

func (r *mongoAssetRepo) FindByID(ctx context.Context, itemID string) (*models.Asset, error) {
	var asset models.Asset
	err := r.col.FindOne(ctx, bson.M{"_id": itemID}).Decode(&asset)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
