package transport

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/middleware"
	"novaforge-store/internal/payment"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductRequest represents a product create or update payload
type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	SupplierID  string  `json:"supplier_id" validate:"required,uuid"`
	ImageURL    string  `json:"image_url"`
}

// ProductResponse represents product data
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CategoryID  string    `json:"category_id"`
	SupplierID  string    `json:"supplier_id"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductListResponse represents a page of products
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID.String(),
		SupplierID:  p.SupplierID.String(),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
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

// RegisterRoutes registers all product routes. Reads are public,
// mutations require the admin role.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})
}

// CreateProduct handles creating a product, including provisioning its
// counterpart in the payment provider's catalog
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params, err := h.toParams(req)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Create(r.Context(), params)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}
		if errors.Is(err, repository.ErrSupplierNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "supplier not found")
			return
		}
		if errors.Is(err, payment.ErrGateway) {
			h.logger.Error("Payment provider rejected product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadGateway, "payment provider unavailable")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct handles updating a product
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params, err := h.toParams(req)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.productService.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "category not found")
			return
		}
		if errors.Is(err, repository.ErrSupplierNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "supplier not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles deleting a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProduct handles getting a product by ID
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// ListProducts handles listing products with optional category filter,
// pagination and sorting
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var categoryID *uuid.UUID
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		categoryID = &id
	}

	sortBy := r.URL.Query().Get("sort_by")
	sortOrder := repository.SortOrderDesc
	if strings.EqualFold(r.URL.Query().Get("sort_order"), "asc") {
		sortOrder = repository.SortOrderAsc
	}

	products, total, err := h.productService.List(r.Context(), categoryID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	h.respondPage(w, products, total, page, pageSize)
}

// SearchProducts handles searching products by name
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing search query")
		return
	}

	page, pageSize := parsePagination(r)

	products, total, err := h.productService.Search(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	h.respondPage(w, products, total, page, pageSize)
}

func (h *ProductHandler) respondPage(w http.ResponseWriter, products []*domain.Product, total, page, pageSize int) {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *ProductHandler) toParams(req ProductRequest) (service.ProductParams, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return service.ProductParams{}, errors.New("invalid category id")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return service.ProductParams{}, errors.New("invalid supplier id")
	}
	return service.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  categoryID,
		SupplierID:  supplierID,
		ImageURL:    req.ImageURL,
	}, nil
}
