package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gemstore/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// sortFields maps the public sort keys to their column. A leading "-"
// on the query value flips the direction, so the effective allow-list
// is {price,-price,colour,-colour,size,-size,title,-title}.
var sortFields = map[string]string{
	"price":  "price",
	"colour": "colour",
	"size":   "size",
	"title":  "title",
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID, sort string, limit int) ([]*domain.Product, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	Suggestions(ctx context.Context, exclude uuid.UUID, limit int) ([]*domain.Product, error)
	ListImages(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	AddImage(ctx context.Context, image *domain.ProductImage) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, title, slug, description, price, size, colour, quantity, category_id, created_at, updated_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Slug,
		&product.Description,
		&product.Price,
		&product.Size,
		&product.Colour,
		&product.Quantity,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, title, slug, description, price, size, colour, quantity, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Slug,
		product.Description,
		product.Price,
		product.Size,
		product.Colour,
		product.Quantity,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET title = $2, slug = $3, description = $4, price = $5, size = $6,
		    colour = $7, quantity = $8, category_id = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Slug,
		product.Description,
		product.Price,
		product.Size,
		product.Colour,
		product.Quantity,
		product.CategoryID,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindBySlug retrieves a product by its slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE slug = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}

	return product, nil
}

// ListByCategory retrieves a category's products. The sort value is
// validated against the allow-list; anything else falls back to the
// creation order. A zero limit means no limit.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID, sort string, limit int) ([]*domain.Product, error) {
	orderBy := "created_at DESC"

	field := strings.TrimPrefix(sort, "-")
	if column, ok := sortFields[field]; ok {
		direction := "ASC"
		if strings.HasPrefix(sort, "-") {
			direction = "DESC"
		}
		orderBy = column + " " + direction
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE category_id = $1
		ORDER BY %s
	`, productColumns, orderBy)

	args := []interface{}{categoryID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// Search searches for products by title or description with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	searchPattern := "%" + strings.TrimSpace(query) + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE title ILIKE $1 OR description ILIKE $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE title ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, searchPattern, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Suggestions returns a random selection of other products, used on the
// product detail page.
func (r *productRepository) Suggestions(ctx context.Context, exclude uuid.UUID, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id <> $1
		ORDER BY random()
		LIMIT $2
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggested products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListImages retrieves the gallery for a product
func (r *productRepository) ListImages(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, photo_url, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		image := &domain.ProductImage{}
		err := rows.Scan(&image.ID, &image.ProductID, &image.PhotoURL, &image.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

// AddImage appends a gallery entry for a product
func (r *productRepository) AddImage(ctx context.Context, image *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, photo_url, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, image.ID, image.ProductID, image.PhotoURL, image.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add product image: %w", err)
	}

	return nil
}

func collectProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
