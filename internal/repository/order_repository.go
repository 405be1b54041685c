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
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyCompleted is returned when completing an order that is
	// no longer pending. A replayed webhook event lands here and must be
	// treated as a no-op by the caller.
	ErrOrderAlreadyCompleted = errors.New("order already completed")
)

// OrderWithBuyer is an order joined with the buyer's identity, for the
// admin purchase listing.
type OrderWithBuyer struct {
	domain.Order
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}

// OrderRepository defines the interface for order data access. An order
// and its lines are always written inside one transaction.
type OrderRepository interface {
	// CreateWithLines persists a provisional order header and its lines
	// atomically. Stock is untouched.
	CreateWithLines(ctx context.Context, order *domain.Order, lines []*domain.OrderLine) error
	// AttachSession records the checkout session id on an order.
	AttachSession(ctx context.Context, orderID uuid.UUID, sessionID string) error
	// Complete reconciles a provisional order with the provider-reported
	// outcome in one transaction: marks it paid, replaces its lines, and
	// conditionally decrements stock per line. Replays return
	// ErrOrderAlreadyCompleted without touching anything; any stock
	// shortage rolls the whole transaction back with ErrInsufficientStock.
	Complete(ctx context.Context, orderID uuid.UUID, total float64, lines []*domain.OrderLine) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindLines(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]*OrderWithBuyer, int, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithLines inserts the order header and all of its lines inside a
// single transaction: both succeed or neither does.
func (r *orderRepository) CreateWithLines(ctx context.Context, order *domain.Order, lines []*domain.OrderLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, user_id, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, order.ID, order.UserID, order.Total, order.Status, order.CreatedAt); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err := insertLines(ctx, tx, lines); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// AttachSession records the external session id on an order
func (r *orderRepository) AttachSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	query := `UPDATE orders SET stripe_session_id = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, orderID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to attach session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Complete transitions a pending order to paid and applies its stock
// effects. The pending->paid guard doubles as the idempotency check.
func (r *orderRepository) Complete(ctx context.Context, orderID uuid.UUID, total float64, lines []*domain.OrderLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	guard := `
		UPDATE orders
		SET status = $2, total = $3
		WHERE id = $1 AND status = $4
	`
	result, err := tx.ExecContext(ctx, guard, orderID, domain.OrderStatusPaid, total, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var status domain.OrderStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check order status: %w", err)
		}
		return ErrOrderAlreadyCompleted
	}

	// Replace the provisional lines with the provider-derived set
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("failed to clear order lines: %w", err)
	}

	if err := insertLines(ctx, tx, lines); err != nil {
		return err
	}

	decrement := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`
	for _, line := range lines {
		result, err := tx.ExecContext(ctx, decrement, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrInsufficientStock
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order completion: %w", err)
	}

	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, lines []*domain.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, query, line.ID, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}
	return nil
}

// FindByID retrieves an order by ID using parameterized queries
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total, status, COALESCE(stripe_session_id, ''), created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Total,
		&order.Status,
		&order.StripeSessionID,
		&order.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// FindLines retrieves the lines of an order
func (r *orderRepository) FindLines(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.OrderLine{}
	for rows.Next() {
		line := &domain.OrderLine{}
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

// ListByUser retrieves all orders placed by a user, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, total, status, COALESCE(stripe_session_id, ''), created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by user: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Total,
			&order.Status,
			&order.StripeSessionID,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// List retrieves orders joined with buyer info, paginated, newest first
func (r *orderRepository) List(ctx context.Context, page, pageSize int) ([]*OrderWithBuyer, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT o.id, o.user_id, o.total, o.status, COALESCE(o.stripe_session_id, ''), o.created_at,
		       u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*OrderWithBuyer{}
	for rows.Next() {
		order := &OrderWithBuyer{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Total,
			&order.Status,
			&order.StripeSessionID,
			&order.CreatedAt,
			&order.BuyerName,
			&order.BuyerEmail,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}
