package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gemstore/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrInvalidCartAction = errors.New("invalid cart action")
)

// CartRepository owns the order line items. AdjustLine is the only
// writer of the paired stock/line quantities and runs them in one
// transaction, so the two can never drift apart.
type CartRepository interface {
	AdjustLine(ctx context.Context, orderID, productID uuid.UUID, action domain.CartAction) (domain.AdjustOutcome, error)
	ListLines(ctx context.Context, orderID uuid.UUID) ([]*domain.CartLine, error)
	ClearLines(ctx context.Context, orderID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// AdjustLine moves one unit between product stock and the order line.
// The product row is locked for the duration of the transaction:
//   - add with stock available: line +1, stock -1
//   - add with stock exhausted: no writes, OutOfStock
//   - remove with a non-empty line: line -1, stock +1
//   - remove with an empty line: no writes, EmptyLine
//
// The line row is created at quantity 0 on first touch; (order_id,
// product_id) is unique so the creation is idempotent.
func (r *cartRepository) AdjustLine(ctx context.Context, orderID, productID uuid.UUID, action domain.CartAction) (domain.AdjustOutcome, error) {
	if action != domain.CartActionAdd && action != domain.CartActionRemove {
		return "", ErrInvalidCartAction
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stock int
	err = tx.QueryRowContext(ctx,
		`SELECT quantity FROM products WHERE id = $1 FOR UPDATE`,
		productID,
	).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrProductNotFound
		}
		return "", fmt.Errorf("failed to lock product: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_products (id, order_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (order_id, product_id) DO NOTHING
	`, uuid.New(), orderID, productID, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to create order line: %w", err)
	}

	var lineID uuid.UUID
	var lineQuantity int
	err = tx.QueryRowContext(ctx,
		`SELECT id, quantity FROM order_products WHERE order_id = $1 AND product_id = $2 FOR UPDATE`,
		orderID, productID,
	).Scan(&lineID, &lineQuantity)
	if err != nil {
		return "", fmt.Errorf("failed to lock order line: %w", err)
	}

	var outcome domain.AdjustOutcome
	var lineDelta int

	if action == domain.CartActionAdd {
		if stock == 0 {
			return domain.AdjustOutOfStock, nil
		}
		outcome = domain.AdjustReserved
		lineDelta = 1
	} else {
		if lineQuantity == 0 {
			return domain.AdjustEmptyLine, nil
		}
		outcome = domain.AdjustReleased
		lineDelta = -1
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE order_products SET quantity = quantity + $2 WHERE id = $1`,
		lineID, lineDelta,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update order line: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET quantity = quantity - $2, updated_at = $3 WHERE id = $1`,
		productID, lineDelta, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to update product stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit cart adjustment: %w", err)
	}

	return outcome, nil
}

// ListLines retrieves an order's lines joined with product title and price
func (r *cartRepository) ListLines(ctx context.Context, orderID uuid.UUID) ([]*domain.CartLine, error) {
	query := `
		SELECT op.id, op.order_id, op.product_id, op.quantity, p.title, p.price, op.added_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.added_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.CartLine{}
	for rows.Next() {
		line := &domain.CartLine{}
		err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.Quantity,
			&line.ProductTitle,
			&line.ProductPrice,
			&line.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

// ClearLines deletes every line of an order. Stock is not restored:
// clearing happens after payment, so the reservation became the sale.
func (r *cartRepository) ClearLines(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to clear order lines: %w", err)
	}

	return nil
}
