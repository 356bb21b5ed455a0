package transport

import (
	"encoding/json"
	"net/http"

	"catalog-admin/internal/domain"
	"catalog-admin/internal/middleware"
	"catalog-admin/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const errProductFieldsRequired = "Name, price, and categoryId are required"

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"isActive"`
	CategoryID  *uuid.UUID       `json:"categoryId" validate:"required"`

	priceNotNumber bool
}

func (req *CreateProductRequest) UnmarshalJSON(data []byte) error {
	type fields CreateProductRequest
	var decoded fields
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*req = CreateProductRequest(decoded)
	req.priceNotNumber = domain.PriceIsString(data)
	return nil
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Patch("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts dispatches on the query string: a non-empty search runs a
// text search (optionally within categoryId), categoryId alone lists that
// category, includeInactive=true lists everything, and no parameters list
// all active products.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	search := query.Get("search")

	var categoryID *uuid.UUID
	if raw := query.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "Invalid categoryId")
			return
		}
		categoryID = &id
	}

	var (
		products []*domain.Product
		err      error
	)
	switch {
	case search != "":
		products, err = h.productService.Search(r.Context(), &search, categoryID)
	case categoryID != nil:
		products, err = h.productService.ListByCategory(r.Context(), *categoryID)
	case query.Get("includeInactive") == "true":
		products, err = h.productService.List(r.Context())
	default:
		products, err = h.productService.Search(r.Context(), nil, nil)
	}
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// GetProduct handles fetching one product, active or not
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, domain.ErrProductNotFound.Message)
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to fetch product")
		return
	}
	if product == nil {
		middleware.RespondWithError(w, http.StatusNotFound, domain.ErrProductNotFound.Message)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err, errProductFieldsRequired)
		return
	}
	if req.priceNotNumber {
		respondWithServiceError(w, h.logger, domain.ErrInvalidPrice, "Failed to create product")
		return
	}

	product, err := h.productService.Create(r.Context(), domain.ProductCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
		CategoryID:  *req.CategoryID,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to create product")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("category_id", product.CategoryID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles partial product updates
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, domain.ErrProductNotFound.Message)
		return
	}

	var input domain.ProductUpdateInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		respondWithDecodeError(w, h.logger, err, "Invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct handles product removal
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, domain.ErrProductNotFound.Message)
		return
	}

	if _, err := h.productService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, middleware.MessageResponse{Message: "Product deleted successfully"})
}
