package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestDecrementStockIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	_, product := seedFixture(t, 5)

	if err := repo.DecrementStock(ctx, product.ID, 3); err != nil {
		t.Fatalf("DecrementStock failed: %v", err)
	}
	if got := productStock(t, product.ID); got != 2 {
		t.Fatalf("Expected stock 2, got %d", got)
	}

	err := repo.DecrementStock(ctx, product.ID, 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}
	if got := productStock(t, product.ID); got != 2 {
		t.Errorf("Failed decrement must not change stock, got %d", got)
	}
}

func TestDecrementStockUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	_, product := seedFixture(t, 5)

	// Two fulfillments of three units race for five units. Exactly one
	// can win.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = repo.DecrementStock(ctx, product.ID, 3)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if errors.Is(err, ErrInsufficientStock) {
			failures++
		} else if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if failures != 1 {
		t.Errorf("Expected exactly one losing decrement, got %d", failures)
	}
	if got := productStock(t, product.ID); got != 2 {
		t.Errorf("Expected stock 2 after the race, got %d", got)
	}
}

func TestFindByStripePriceID(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	_, product := seedFixture(t, 5)

	found, err := repo.FindByStripePriceID(ctx, product.StripePriceID)
	if err != nil {
		t.Fatalf("FindByStripePriceID failed: %v", err)
	}
	if found.ID != product.ID {
		t.Errorf("Wrong product returned")
	}

	if _, err := repo.FindByStripePriceID(ctx, "price_unknown"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound for unknown price id, got %v", err)
	}
}
