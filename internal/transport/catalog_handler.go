package transport

import (
	"errors"
	"net/http"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/middleware"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NameRequest is the payload for resources that only carry a name
type NameRequest struct {
	Name string `json:"name" validate:"required"`
}

// SupplierRequest represents a supplier create or update payload
type SupplierRequest struct {
	Name    string `json:"name" validate:"required"`
	Contact string `json:"contact" validate:"required"`
}

// RoleResponse represents role data
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryResponse represents category data
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SupplierResponse represents supplier data
type SupplierResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func toRoleResponse(role *domain.Role) RoleResponse {
	return RoleResponse{ID: role.ID.String(), Name: role.Name}
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{ID: category.ID.String(), Name: category.Name}
}

func toSupplierResponse(supplier *domain.Supplier) SupplierResponse {
	return SupplierResponse{ID: supplier.ID.String(), Name: supplier.Name, Contact: supplier.Contact}
}

// CatalogHandler handles HTTP requests for roles, categories and suppliers
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes. Reads are public,
// mutations require the admin role.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/roles", func(r chi.Router) {
		r.Get("/", h.ListRoles)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.CreateRole)
			r.Put("/{id}", h.UpdateRole)
			r.Delete("/{id}", h.DeleteRole)
		})
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{id}", h.GetCategory)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.CreateCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/api/suppliers", func(r chi.Router) {
		r.Get("/", h.ListSuppliers)
		r.Get("/{id}", h.GetSupplier)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.CreateSupplier)
			r.Put("/{id}", h.UpdateSupplier)
			r.Delete("/{id}", h.DeleteSupplier)
		})
	})
}

// CreateRole handles creating a role
func (h *CatalogHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}

	role, err := h.catalogService.CreateRole(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrRoleAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "role already exists")
			return
		}
		h.logger.Error("Failed to create role", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create role")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toRoleResponse(role))
}

// UpdateRole handles renaming a role
func (h *CatalogHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}

	role, err := h.catalogService.UpdateRole(r.Context(), id, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "role not found")
			return
		}
		if errors.Is(err, repository.ErrRoleAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "role already exists")
			return
		}
		h.logger.Error("Failed to update role", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toRoleResponse(role))
}

// DeleteRole handles deleting a role
func (h *CatalogHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteRole(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "role not found")
			return
		}
		h.logger.Error("Failed to delete role", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete role")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRoles handles listing all roles
func (h *CatalogHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.catalogService.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("Failed to list roles", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toRoleResponse(role))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// CreateCategory handles creating a category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory handles renaming a category
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category already exists")
			return
		}
		h.logger.Error("Failed to update category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles deleting a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles listing all categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategoryResponse(category))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetCategory handles getting a category by ID
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("Failed to get category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// CreateSupplier handles creating a supplier
func (h *CatalogHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierRequest
	if !h.decode(w, r, &req) {
		return
	}

	supplier, err := h.catalogService.CreateSupplier(r.Context(), req.Name, req.Contact)
	if err != nil {
		h.logger.Error("Failed to create supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create supplier")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toSupplierResponse(supplier))
}

// UpdateSupplier handles updating a supplier
func (h *CatalogHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req SupplierRequest
	if !h.decode(w, r, &req) {
		return
	}

	supplier, err := h.catalogService.UpdateSupplier(r.Context(), id, req.Name, req.Contact)
	if err != nil {
		if errors.Is(err, repository.ErrSupplierNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "supplier not found")
			return
		}
		h.logger.Error("Failed to update supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update supplier")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toSupplierResponse(supplier))
}

// DeleteSupplier handles deleting a supplier
func (h *CatalogHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteSupplier(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSupplierNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "supplier not found")
			return
		}
		h.logger.Error("Failed to delete supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete supplier")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSuppliers handles listing all suppliers
func (h *CatalogHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.catalogService.ListSuppliers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list suppliers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list suppliers")
		return
	}

	out := make([]SupplierResponse, 0, len(suppliers))
	for _, supplier := range suppliers {
		out = append(out, toSupplierResponse(supplier))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetSupplier handles getting a supplier by ID
func (h *CatalogHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	supplier, err := h.catalogService.GetSupplier(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSupplierNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "supplier not found")
			return
		}
		h.logger.Error("Failed to get supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get supplier")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toSupplierResponse(supplier))
}

func (h *CatalogHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *CatalogHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
