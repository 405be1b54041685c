package service

import (
	"context"
	"fmt"
	"time"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/payment"
	"novaforge-store/internal/repository"

	"github.com/google/uuid"
)

// ProductParams carries the fields of a product create or update request.
type ProductParams struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  uuid.UUID
	SupplierID  uuid.UUID
	ImageURL    string
}

// ProductService defines the interface for product business logic.
// Creating a product also provisions matching records in the payment
// provider's catalog so its price can be referenced at checkout time.
type ProductService interface {
	Create(ctx context.Context, params ProductParams) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, params ProductParams) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	gateway      payment.Gateway
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	gateway payment.Gateway,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		gateway:      gateway,
	}
}

// Create validates references, provisions the product and its price in the
// payment provider's catalog, and persists the local record with both
// external ids.
func (s *productService) Create(ctx context.Context, params ProductParams) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, params.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.supplierRepo.FindByID(ctx, params.SupplierID); err != nil {
		return nil, err
	}

	stripeProductID, err := s.gateway.CreateProduct(ctx, params.Name, params.Description, params.ImageURL)
	if err != nil {
		return nil, err
	}

	stripePriceID, err := s.gateway.CreatePrice(ctx, stripeProductID, params.Price)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:              uuid.New(),
		Name:            params.Name,
		Description:     params.Description,
		Price:           params.Price,
		Stock:           params.Stock,
		CategoryID:      params.CategoryID,
		SupplierID:      params.SupplierID,
		StripeProductID: stripeProductID,
		StripePriceID:   stripePriceID,
		ImageURL:        params.ImageURL,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update modifies an existing product. The external catalog records are
// left untouched; price changes take effect locally only until the product
// is re-provisioned.
func (s *productService) Update(ctx context.Context, id uuid.UUID, params ProductParams) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.FindByID(ctx, params.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.supplierRepo.FindByID(ctx, params.SupplierID); err != nil {
		return nil, err
	}

	product.Name = params.Name
	product.Description = params.Description
	product.Price = params.Price
	product.Stock = params.Stock
	product.CategoryID = params.CategoryID
	product.SupplierID = params.SupplierID
	product.ImageURL = params.ImageURL
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetByID retrieves a product by ID
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// List retrieves products with filtering, pagination and sorting
func (s *productService) List(ctx context.Context, categoryID *uuid.UUID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

// Search searches products by name or description
func (s *productService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return s.productRepo.Search(ctx, query, page, pageSize)
}
