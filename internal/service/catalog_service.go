package service

import (
	"context"
	"time"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages the static reference data of the store: roles,
// categories and suppliers.
type CatalogService interface {
	CreateRole(ctx context.Context, name string) (*domain.Role, error)
	UpdateRole(ctx context.Context, id uuid.UUID, name string) (*domain.Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error
	ListRoles(ctx context.Context) ([]*domain.Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error)

	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	CreateSupplier(ctx context.Context, name, contact string) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, name, contact string) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
}

type catalogService struct {
	roleRepo     repository.RoleRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	roleRepo repository.RoleRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) CatalogService {
	return &catalogService{
		roleRepo:     roleRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

func (s *catalogService) CreateRole(ctx context.Context, name string) (*domain.Role, error) {
	role := &domain.Role{ID: uuid.New(), Name: name}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *catalogService) UpdateRole(ctx context.Context, id uuid.UUID, name string) (*domain.Role, error) {
	role := &domain.Role{ID: id, Name: name}
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *catalogService) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return s.roleRepo.Delete(ctx, id)
}

func (s *catalogService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	return s.roleRepo.List(ctx)
}

func (s *catalogService) GetRole(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	return s.roleRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *catalogService) CreateSupplier(ctx context.Context, name, contact string) (*domain.Supplier, error) {
	supplier := &domain.Supplier{ID: uuid.New(), Name: name, Contact: contact, CreatedAt: time.Now()}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, name, contact string) (*domain.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = name
	supplier.Contact = contact
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *catalogService) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return s.supplierRepo.Delete(ctx, id)
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	return s.supplierRepo.List(ctx)
}

func (s *catalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}
