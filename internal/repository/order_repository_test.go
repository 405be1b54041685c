package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"testing"
	"time"

	"novaforge-store/internal/domain"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), "5432/tcp")
	if err != nil {
		return dbContainer.Terminate, err
	}

	connStr := "postgres://" + dbUser + ":" + dbPwd + "@" + dbHost + ":" + dbPort.Port() + "/" + dbName + "?sslmode=disable"
	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	_, err = testDB.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL
		);
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			phone VARCHAR(30),
			role_id UUID NOT NULL REFERENCES roles(id),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS suppliers (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			contact VARCHAR(255),
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price NUMERIC(10,2) NOT NULL,
			stock INTEGER NOT NULL CHECK (stock >= 0),
			category_id UUID NOT NULL REFERENCES categories(id),
			supplier_id UUID NOT NULL REFERENCES suppliers(id),
			stripe_product_id VARCHAR(255),
			stripe_price_id VARCHAR(255),
			image_url TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			total NUMERIC(10,2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			stripe_session_id VARCHAR(255) UNIQUE,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS order_lines (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(10,2) NOT NULL
		);
	`)
	if err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
}

// seedFixture inserts a user and a product and returns both.
func seedFixture(t *testing.T, stock int) (*domain.User, *domain.Product) {
	t.Helper()
	ctx := context.Background()

	role := &domain.Role{ID: uuid.New(), Name: "role-" + uuid.NewString()[:8]}
	if err := NewRoleRepository(testDB).Create(ctx, role); err != nil {
		t.Fatalf("seed role: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "$2a$10$fakehash",
		Phone:        "600123456",
		RoleID:       role.ID,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := NewUserRepository(testDB).Create(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	category := &domain.Category{ID: uuid.New(), Name: "cat-" + uuid.NewString()[:8], CreatedAt: time.Now()}
	if err := NewCategoryRepository(testDB).Create(ctx, category); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	supplier := &domain.Supplier{ID: uuid.New(), Name: "Supplier", Contact: "contact@example.com", CreatedAt: time.Now()}
	if err := NewSupplierRepository(testDB).Create(ctx, supplier); err != nil {
		t.Fatalf("seed supplier: %v", err)
	}

	product := &domain.Product{
		ID:            uuid.New(),
		Name:          "Widget",
		Description:   "A widget",
		Price:         19.99,
		Stock:         stock,
		CategoryID:    category.ID,
		SupplierID:    supplier.ID,
		StripePriceID: "price_" + uuid.NewString()[:8],
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := NewProductRepository(testDB).Create(ctx, product); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return user, product
}

func pendingOrder(t *testing.T, user *domain.User, product *domain.Product, quantity int) *domain.Order {
	t.Helper()
	repo := NewOrderRepository(testDB)

	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		Total:     product.Price * float64(quantity),
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now(),
	}
	lines := []*domain.OrderLine{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}}
	if err := repo.CreateWithLines(context.Background(), order, lines); err != nil {
		t.Fatalf("create pending order: %v", err)
	}
	return order
}

func productStock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	product, err := NewProductRepository(testDB).FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return product.Stock
}

func TestOrderCompleteMarksPaidAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user, product := seedFixture(t, 10)
	order := pendingOrder(t, user, product, 3)

	lines := []*domain.OrderLine{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  3,
		UnitPrice: product.Price,
	}}

	if err := repo.Complete(ctx, order.ID, 59.97, lines); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	completed, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if completed.Status != domain.OrderStatusPaid {
		t.Errorf("Expected paid status, got %s", completed.Status)
	}
	if completed.Total != 59.97 {
		t.Errorf("Expected total 59.97, got %f", completed.Total)
	}
	if got := productStock(t, product.ID); got != 7 {
		t.Errorf("Expected stock 7, got %d", got)
	}
}

func TestOrderCompleteReplayIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user, product := seedFixture(t, 10)
	order := pendingOrder(t, user, product, 2)

	newLines := func() []*domain.OrderLine {
		return []*domain.OrderLine{{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  2,
			UnitPrice: product.Price,
		}}
	}

	if err := repo.Complete(ctx, order.ID, 39.98, newLines()); err != nil {
		t.Fatalf("First Complete failed: %v", err)
	}

	err := repo.Complete(ctx, order.ID, 39.98, newLines())
	if !errors.Is(err, ErrOrderAlreadyCompleted) {
		t.Fatalf("Expected ErrOrderAlreadyCompleted, got %v", err)
	}

	if got := productStock(t, product.ID); got != 8 {
		t.Errorf("Replay must not decrement stock again, got %d", got)
	}
}

func TestOrderCompleteInsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user, product := seedFixture(t, 2)
	order := pendingOrder(t, user, product, 3)

	lines := []*domain.OrderLine{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  3,
		UnitPrice: product.Price,
	}}

	err := repo.Complete(ctx, order.ID, 59.97, lines)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	reloaded, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if reloaded.Status != domain.OrderStatusPending {
		t.Errorf("Order must stay pending on rollback, got %s", reloaded.Status)
	}
	if got := productStock(t, product.ID); got != 2 {
		t.Errorf("Stock must be untouched on rollback, got %d", got)
	}
}

func TestOrderCompleteUnknownOrder(t *testing.T) {
	repo := NewOrderRepository(testDB)

	err := repo.Complete(context.Background(), uuid.New(), 10, nil)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("Expected ErrOrderNotFound, got %v", err)
	}
}

func TestAttachSessionAndListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user, product := seedFixture(t, 10)
	order := pendingOrder(t, user, product, 1)

	if err := repo.AttachSession(ctx, order.ID, "cs_test_"+uuid.NewString()[:8]); err != nil {
		t.Fatalf("AttachSession failed: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if reloaded.StripeSessionID == "" {
		t.Errorf("Session id not persisted")
	}

	orders, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Errorf("Expected exactly the seeded order, got %d orders", len(orders))
	}
}

func TestOrderListIncludesBuyer(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user, product := seedFixture(t, 10)
	order := pendingOrder(t, user, product, 1)

	orders, total, err := repo.List(ctx, 1, 100)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total < 1 {
		t.Fatalf("Expected at least one order, got %d", total)
	}

	found := false
	for _, o := range orders {
		if o.ID == order.ID {
			found = true
			if o.BuyerEmail != user.Email || o.BuyerName != user.Name {
				t.Errorf("Buyer details mismatch: %+v", o)
			}
		}
	}
	if !found {
		t.Errorf("Seeded order missing from admin listing")
	}
}
