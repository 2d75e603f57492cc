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
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	GetOrCreateOpen(ctx context.Context, customerID uuid.UUID) (*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Complete(ctx context.Context, id uuid.UUID) error
	UpsertShippingAddress(ctx context.Context, address *domain.ShippingAddress) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// GetOrCreateOpen returns the customer's open order, creating one on
// first use. A partial unique index on (customer_id) WHERE NOT
// is_completed guarantees at most one open order even under races.
func (r *orderRepository) GetOrCreateOpen(ctx context.Context, customerID uuid.UUID) (*domain.Order, error) {
	insert := `
		INSERT INTO orders (id, customer_id, is_completed, shipping, created_at)
		VALUES ($1, $2, FALSE, TRUE, $3)
		ON CONFLICT (customer_id) WHERE NOT is_completed DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, insert, uuid.New(), customerID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert open order: %w", err)
	}

	query := `
		SELECT id, customer_id, is_completed, shipping, created_at
		FROM orders
		WHERE customer_id = $1 AND NOT is_completed
	`

	order := &domain.Order{}
	err = r.db.QueryRowContext(ctx, query, customerID).Scan(
		&order.ID,
		&order.CustomerID,
		&order.IsCompleted,
		&order.Shipping,
		&order.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find open order: %w", err)
	}

	return order, nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, customer_id, is_completed, shipping, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.IsCompleted,
		&order.Shipping,
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

// Complete marks an order as paid. A completed order no longer matches
// the open-order lookup, so the next cart interaction starts a new one.
func (r *orderRepository) Complete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE orders SET is_completed = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
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

// UpsertShippingAddress stores the address captured at checkout. An
// order has at most one address; a repeated checkout attempt replaces
// the earlier capture instead of accumulating rows.
func (r *orderRepository) UpsertShippingAddress(ctx context.Context, address *domain.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses (id, customer_id, order_id, address, city, state, zipcode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO UPDATE
		SET address = EXCLUDED.address, city = EXCLUDED.city,
		    state = EXCLUDED.state, zipcode = EXCLUDED.zipcode
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		address.ID,
		address.CustomerID,
		address.OrderID,
		address.Address,
		address.City,
		address.State,
		address.Zipcode,
		address.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create shipping address: %w", err)
	}

	return nil
}
