package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/domain/shared"
)

var ErrEmptyName = errors.New("product name cannot be empty")

// Product is an inventory item. From the ledger's perspective it is a
// read-mostly collaborator: sales consume quantity, deleting a sale returns
// it, restoring consumes it again.
type Product struct {
	ID             uuid.UUID `json:"id" bson:"_id"`
	UserID         uuid.UUID `json:"user_id" bson:"user_id"`
	Name           string    `json:"name" bson:"name"`
	UnitPrice      int64     `json:"unit_price" bson:"unit_price"` // minor units
	UnitCost       int64     `json:"unit_cost" bson:"unit_cost"`
	QuantityOnHand int64     `json:"quantity_on_hand" bson:"quantity_on_hand"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// New creates a product.
func New(user shared.UserContext, name string, unitPrice, unitCost, quantity int64) (*Product, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Product{
		ID:             uuid.New(),
		UserID:         user.UserID,
		Name:           name,
		UnitPrice:      unitPrice,
		UnitCost:       unitCost,
		QuantityOnHand: quantity,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Repository manages product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, user shared.UserContext, productID uuid.UUID) (*Product, error)
	List(ctx context.Context, user shared.UserContext, limit, offset int) ([]*Product, error)

	// AdjustQuantity increments quantity_on_hand by delta (negative to
	// consume stock). Must be an increment-on-write so concurrent sales
	// merge additively.
	AdjustQuantity(ctx context.Context, user shared.UserContext, productID uuid.UUID, delta int64) error
}

// ErrProductNotFound indicates a missing product.
type ErrProductNotFound struct {
	ProductID uuid.UUID
}

func (e ErrProductNotFound) Error() string {
	return "product not found: " + e.ProductID.String()
}

// Is matches any ErrProductNotFound when the target carries a nil ID.
func (e ErrProductNotFound) Is(target error) bool {
	t, ok := target.(ErrProductNotFound)
	if !ok {
		return false
	}
	if t.ProductID == uuid.Nil {
		return true
	}
	return e.ProductID == t.ProductID
}
