package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/domain/product"
	"github.com/shopbook-ledger/internal/domain/shared"
)

// ProductService defines inventory item operations. Stock levels move as a
// side effect of itemized sales; this surface only creates and reads.
type ProductService interface {
	CreateProduct(ctx context.Context, user shared.UserContext, name string, unitPrice, unitCost, quantity int64) (*product.Product, error)
	GetProduct(ctx context.Context, user shared.UserContext, productID uuid.UUID) (*product.Product, error)
	ListProducts(ctx context.Context, user shared.UserContext, page, perPage int) ([]*product.Product, error)
}

// ProductServiceImpl implements the ProductService interface
type ProductServiceImpl struct {
	productRepo product.Repository
	logger      *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(logger *slog.Logger, productRepo product.Repository) ProductService {
	return &ProductServiceImpl{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProduct creates an inventory item with an opening stock level.
func (s *ProductServiceImpl) CreateProduct(ctx context.Context, user shared.UserContext, name string, unitPrice, unitCost, quantity int64) (*product.Product, error) {
	p, err := product.New(user, name, unitPrice, unitCost, quantity)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create product", "name", name, "error", err)
		return nil, err
	}

	s.logger.Info("Product created", "product_id", p.ID.String(), "name", p.Name)
	return p, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductServiceImpl) GetProduct(ctx context.Context, user shared.UserContext, productID uuid.UUID) (*product.Product, error) {
	return s.productRepo.GetByID(ctx, user, productID)
}

// ListProducts returns a page of the user's products.
func (s *ProductServiceImpl) ListProducts(ctx context.Context, user shared.UserContext, page, perPage int) ([]*product.Product, error) {
	offset := (page - 1) * perPage
	return s.productRepo.List(ctx, user, perPage, offset)
}
