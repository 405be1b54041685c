package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"novaforge-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleAlreadyExists = errors.New("role with this name already exists")
)

// RoleRepository defines the interface for role data access
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Role, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
}

type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new instance of RoleRepository
func NewRoleRepository(db *sql.DB) RoleRepository {
	return &roleRepository{db: db}
}

// Create inserts a new role into the database using parameterized queries
func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `INSERT INTO roles (id, name) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, role.ID, role.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoleAlreadyExists
		}
		return fmt.Errorf("failed to create role: %w", err)
	}

	return nil
}

// Update renames an existing role
func (r *roleRepository) Update(ctx context.Context, role *domain.Role) error {
	query := `UPDATE roles SET name = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, role.ID, role.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRoleAlreadyExists
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRoleNotFound
	}

	return nil
}

// Delete removes a role from the database
func (r *roleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM roles WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRoleNotFound
	}

	return nil
}

// List retrieves all roles
func (r *roleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	query := `SELECT id, name FROM roles ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	roles := []*domain.Role{}
	for rows.Next() {
		role := &domain.Role{}
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating roles: %w", err)
	}

	return roles, nil
}

// FindByID retrieves a role by ID using parameterized queries
func (r *roleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	query := `SELECT id, name FROM roles WHERE id = $1`

	role := &domain.Role{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role by ID: %w", err)
	}

	return role, nil
}
