package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopbook-ledger/internal/api/middleware"
	"github.com/shopbook-ledger/internal/api/service"
)

// ProductHandler handles HTTP requests for inventory items
type ProductHandler struct {
	productService service.ProductService
	logger         *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(logger *slog.Logger, productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// Create creates an inventory item
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user := middleware.GetUserContext(c)
	p, err := h.productService.CreateProduct(c.Request.Context(), user, req.Name, req.UnitPrice, req.UnitCost, req.Quantity)
	if err != nil {
		h.logger.Error("Failed to create product", "error", err)
		respondDomainError(c, err)
		return
	}

	RespondCreated(c, mapProductToResponse(p))
}

// GetByID retrieves an inventory item
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid product ID")
		return
	}

	user := middleware.GetUserContext(c)
	p, err := h.productService.GetProduct(c.Request.Context(), user, id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	RespondOK(c, mapProductToResponse(p))
}

// List returns a page of the user's inventory items
func (h *ProductHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	user := middleware.GetUserContext(c)
	products, err := h.productService.ListProducts(c.Request.Context(), user, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		respondDomainError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, mapProductToResponse(p))
	}

	RespondWithData(c, http.StatusOK, responses)
}
