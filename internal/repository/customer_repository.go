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
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, name, email string) (*domain.Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// GetOrCreate returns the customer for a user, creating it on first
// use. user_id is unique, so racing callers both land on the same row.
func (r *customerRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, name, email string) (*domain.Customer, error) {
	insert := `
		INSERT INTO customers (id, user_id, name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, insert, uuid.New(), userID, name, email, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	return r.FindByUserID(ctx, userID)
}

// FindByUserID retrieves the customer linked to a user
func (r *customerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	query := `
		SELECT id, user_id, name, email, created_at
		FROM customers
		WHERE user_id = $1
	`

	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&customer.ID,
		&customer.UserID,
		&customer.Name,
		&customer.Email,
		&customer.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, nil
}
