package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gemstore/internal/domain"

	"github.com/google/uuid"
)

// FavouriteRepository defines the interface for favourite bookmarks.
// Existence of the (user, product) pair is the membership.
type FavouriteRepository interface {
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Create(ctx context.Context, favourite *domain.FavouriteProduct) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	ListProducts(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error)
}

type favouriteRepository struct {
	db *sql.DB
}

// NewFavouriteRepository creates a new instance of FavouriteRepository
func NewFavouriteRepository(db *sql.DB) FavouriteRepository {
	return &favouriteRepository{db: db}
}

// Exists reports whether the user has favourited the product
func (r *favouriteRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM favourite_products WHERE user_id = $1 AND product_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favourite: %w", err)
	}

	return exists, nil
}

// Create marks a product as favourite. The (user_id, product_id) pair
// is unique; inserting an existing pair is a no-op.
func (r *favouriteRepository) Create(ctx context.Context, favourite *domain.FavouriteProduct) error {
	query := `
		INSERT INTO favourite_products (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		favourite.ID,
		favourite.UserID,
		favourite.ProductID,
		favourite.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create favourite: %w", err)
	}

	return nil
}

// Delete removes the bookmark
func (r *favouriteRepository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM favourite_products WHERE user_id = $1 AND product_id = $2`

	_, err := r.db.ExecContext(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete favourite: %w", err)
	}

	return nil
}

// ListProducts retrieves the user's favourite products
func (r *favouriteRepository) ListProducts(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN favourite_products f ON f.product_id = p.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, prefixedProductColumns("p"))

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favourite products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func prefixedProductColumns(alias string) string {
	return alias + ".id, " + alias + ".title, " + alias + ".slug, " + alias + ".description, " +
		alias + ".price, " + alias + ".size, " + alias + ".colour, " + alias + ".quantity, " +
		alias + ".category_id, " + alias + ".created_at, " + alias + ".updated_at"
}
