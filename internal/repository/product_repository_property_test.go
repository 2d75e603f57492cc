package repository

import (
	"context"
	"testing"
	"time"

	"gemstore/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func newTestCategory(t *testing.T, ctx context.Context, repo CategoryRepository) *domain.Category {
	t.Helper()

	category := &domain.Category{
		ID:        uuid.New(),
		Title:     "Test Category",
		Slug:      "test-category-" + uuid.New().String(),
		ImageURL:  "http://example.com/category.jpg",
		CreatedAt: time.Now(),
	}
	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return category
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(title string, description string, price float64, size int, colour string, quantity int) bool {
			ctx := context.Background()

			category := newTestCategory(t, ctx, categoryRepo)

			product := &domain.Product{
				ID:          uuid.New(),
				Title:       title,
				Slug:        "product-" + uuid.New().String(),
				Description: description,
				Price:       price,
				Size:        size,
				Colour:      colour,
				Quantity:    quantity,
				CategoryID:  category.ID,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.ID != product.ID {
				t.Logf("FAIL: ID mismatch. Expected %s, got %s", product.ID, retrieved.ID)
				return false
			}

			if retrieved.Title != product.Title {
				t.Logf("FAIL: Title mismatch. Expected %s, got %s", product.Title, retrieved.Title)
				return false
			}

			if retrieved.Slug != product.Slug {
				t.Logf("FAIL: Slug mismatch. Expected %s, got %s", product.Slug, retrieved.Slug)
				return false
			}

			if retrieved.Description != product.Description {
				t.Logf("FAIL: Description mismatch. Expected %s, got %s", product.Description, retrieved.Description)
				return false
			}

			// Prices are stored as DOUBLE PRECISION, so the round trip is exact.
			if retrieved.Price != product.Price {
				t.Logf("FAIL: Price mismatch. Expected %f, got %f", product.Price, retrieved.Price)
				return false
			}

			if retrieved.Size != product.Size {
				t.Logf("FAIL: Size mismatch. Expected %d, got %d", product.Size, retrieved.Size)
				return false
			}

			if retrieved.Colour != product.Colour {
				t.Logf("FAIL: Colour mismatch. Expected %s, got %s", product.Colour, retrieved.Colour)
				return false
			}

			if retrieved.Quantity != product.Quantity {
				t.Logf("FAIL: Quantity mismatch. Expected %d, got %d", product.Quantity, retrieved.Quantity)
				return false
			}

			if retrieved.CategoryID != product.CategoryID {
				t.Logf("FAIL: CategoryID mismatch. Expected %s, got %s", product.CategoryID, retrieved.CategoryID)
				return false
			}

			if retrieved.CreatedAt.IsZero() {
				t.Logf("FAIL: CreatedAt is zero")
				return false
			}

			if retrieved.UpdatedAt.IsZero() {
				t.Logf("FAIL: UpdatedAt is zero")
				return false
			}

			// Cleanup
			_ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),       // title
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{10,200}`), // description
		gen.Float64Range(0.01, 9999.99),            // price
		gen.IntRange(20, 60),                       // size
		gen.RegexMatch(`[a-z]{3,15}`),              // colour
		gen.IntRange(0, 1000),                      // quantity
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("updating a product and retrieving it shows the updated values", prop.ForAll(
		func(title1 string, title2 string, price1 float64, price2 float64, quantity1 int, quantity2 int) bool {
			ctx := context.Background()

			category := newTestCategory(t, ctx, categoryRepo)

			product := &domain.Product{
				ID:          uuid.New(),
				Title:       title1,
				Slug:        "product-" + uuid.New().String(),
				Description: "initial description",
				Price:       price1,
				Size:        40,
				Colour:      "black",
				Quantity:    quantity1,
				CategoryID:  category.ID,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			product.Title = title2
			product.Price = price2
			product.Quantity = quantity2
			product.UpdatedAt = time.Now()

			err = productRepo.Update(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to update product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Title != title2 {
				t.Logf("FAIL: Title not updated. Expected %s, got %s", title2, retrieved.Title)
				return false
			}

			if retrieved.Price != price2 {
				t.Logf("FAIL: Price not updated. Expected %f, got %f", price2, retrieved.Price)
				return false
			}

			if retrieved.Quantity != quantity2 {
				t.Logf("FAIL: Quantity not updated. Expected %d, got %d", quantity2, retrieved.Quantity)
				return false
			}

			// Cleanup
			_ = productRepo.Delete(ctx, product.ID)
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`), // title1
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`), // title2
		gen.Float64Range(0.01, 9999.99),      // price1
		gen.Float64Range(0.01, 9999.99),      // price2
		gen.IntRange(0, 1000),                // quantity1
		gen.IntRange(0, 1000),                // quantity2
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ProductDeletionRemovesFromCatalog(t *testing.T) {
	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("deleting a product makes it not retrievable", prop.ForAll(
		func(title string, price float64, quantity int) bool {
			ctx := context.Background()

			category := newTestCategory(t, ctx, categoryRepo)

			product := &domain.Product{
				ID:          uuid.New(),
				Title:       title,
				Slug:        "product-" + uuid.New().String(),
				Description: "a product that will be deleted",
				Price:       price,
				Size:        38,
				Colour:      "white",
				Quantity:    quantity,
				CategoryID:  category.ID,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}

			err := productRepo.Create(ctx, product)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			_, err = productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Product should exist before deletion: %v", err)
				return false
			}

			err = productRepo.Delete(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to delete product: %v", err)
				return false
			}

			_, err = productRepo.FindByID(ctx, product.ID)
			if err != ErrProductNotFound {
				t.Logf("FAIL: Expected ErrProductNotFound after deletion, got: %v", err)
				return false
			}

			// Cleanup category
			_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`), // title
		gen.Float64Range(0.01, 9999.99),      // price
		gen.IntRange(0, 1000),                // quantity
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestListByCategorySortOrder(t *testing.T) {
	ctx := context.Background()
	productRepo := NewProductRepository(testDB)
	categoryRepo := NewCategoryRepository(testDB)

	category := newTestCategory(t, ctx, categoryRepo)
	defer func() {
		_, _ = testDB.Exec("DELETE FROM categories WHERE id = $1", category.ID)
	}()

	prices := []float64{30.00, 10.00, 20.00}
	for _, price := range prices {
		product := &domain.Product{
			ID:         uuid.New(),
			Title:      "Sortable",
			Slug:       "sortable-" + uuid.New().String(),
			Price:      price,
			Size:       40,
			Colour:     "red",
			Quantity:   5,
			CategoryID: category.ID,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := productRepo.Create(ctx, product); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
		defer func(id uuid.UUID) {
			_ = productRepo.Delete(ctx, id)
		}(product.ID)
	}

	t.Run("ascending price", func(t *testing.T) {
		products, err := productRepo.ListByCategory(ctx, category.ID, "price", 0)
		if err != nil {
			t.Fatalf("ListByCategory failed: %v", err)
		}
		if len(products) != 3 {
			t.Fatalf("expected 3 products, got %d", len(products))
		}
		for i := 1; i < len(products); i++ {
			if products[i].Price < products[i-1].Price {
				t.Errorf("products not sorted ascending by price: %f before %f", products[i-1].Price, products[i].Price)
			}
		}
	})

	t.Run("descending price with leading dash", func(t *testing.T) {
		products, err := productRepo.ListByCategory(ctx, category.ID, "-price", 0)
		if err != nil {
			t.Fatalf("ListByCategory failed: %v", err)
		}
		if len(products) != 3 {
			t.Fatalf("expected 3 products, got %d", len(products))
		}
		for i := 1; i < len(products); i++ {
			if products[i].Price > products[i-1].Price {
				t.Errorf("products not sorted descending by price: %f before %f", products[i-1].Price, products[i].Price)
			}
		}
	})

	t.Run("unknown sort key still returns the products", func(t *testing.T) {
		products, err := productRepo.ListByCategory(ctx, category.ID, "password_hash", 0)
		if err != nil {
			t.Fatalf("ListByCategory failed: %v", err)
		}
		if len(products) != 3 {
			t.Fatalf("expected 3 products, got %d", len(products))
		}
	})
}
