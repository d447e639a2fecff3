package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopbook-ledger/internal/domain/product"
	"github.com/shopbook-ledger/internal/domain/shared"
)

const (
	// ProductCollectionName is the name of the inventory collection in MongoDB
	ProductCollectionName = "products"
)

// ProductRepository implements the product.Repository interface for MongoDB
type ProductRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewProductRepository creates a new MongoDB product repository
func NewProductRepository(logger *slog.Logger, db *mongo.Database) product.Repository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new product
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	collection := r.db.Collection(ProductCollectionName)

	_, err := collection.InsertOne(ctx, p)
	if err != nil {
		r.logger.Error("Failed to create product",
			"product_id", p.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID retrieves a product. Returns ErrProductNotFound if it doesn't exist.
func (r *ProductRepository) GetByID(ctx context.Context, user shared.UserContext, productID uuid.UUID) (*product.Product, error) {
	collection := r.db.Collection(ProductCollectionName)

	filter := bson.M{"_id": productID, "user_id": user.UserID}
	var p product.Product
	err := collection.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, product.ErrProductNotFound{ProductID: productID}
		}
		r.logger.Error("Failed to get product",
			"product_id", productID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &p, nil
}

// List retrieves a page of products sorted by name
func (r *ProductRepository) List(ctx context.Context, user shared.UserContext, limit, offset int) ([]*product.Product, error) {
	collection := r.db.Collection(ProductCollectionName)

	filter := bson.M{"user_id": user.UserID}
	opts := options.Find().
		SetSort(bson.M{"name": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query products", "error", err)
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*product.Product
	if err := cursor.All(ctx, &products); err != nil {
		r.logger.Error("Failed to decode products", "error", err)
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// AdjustQuantity increments quantity_on_hand by delta via `$inc`, so
// concurrent stock movements merge additively. Negative deltas consume stock.
func (r *ProductRepository) AdjustQuantity(ctx context.Context, user shared.UserContext, productID uuid.UUID, delta int64) error {
	collection := r.db.Collection(ProductCollectionName)

	filter := bson.M{"_id": productID, "user_id": user.UserID}
	update := bson.M{
		"$inc": bson.M{"quantity_on_hand": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to adjust product quantity",
			"product_id", productID.String(),
			"delta", delta,
			"error", err)
		return fmt.Errorf("failed to adjust product quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return product.ErrProductNotFound{ProductID: productID}
	}

	return nil
}
