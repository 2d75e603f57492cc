package service

import (
	"context"
	"fmt"

	"gemstore/internal/domain"
	"gemstore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartSummary is a customer's open order with its lines and totals
type CartSummary struct {
	Customer *domain.Customer   `json:"customer"`
	Order    *domain.Order      `json:"order"`
	Lines    []*domain.CartLine `json:"lines"`
	Totals   domain.CartTotals  `json:"totals"`
}

// CartService resolves a user to exactly one open order and moves
// units between product stock and the order's lines.
type CartService interface {
	GetOrCreateCart(ctx context.Context, user *domain.User) (*domain.Customer, *domain.Order, error)
	AdjustLine(ctx context.Context, user *domain.User, productID uuid.UUID, action domain.CartAction) (domain.AdjustOutcome, error)
	Totals(ctx context.Context, orderID uuid.UUID) (domain.CartTotals, error)
	Clear(ctx context.Context, orderID uuid.UUID) error
	Summary(ctx context.Context, user *domain.User) (*CartSummary, error)
}

type cartService struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	logger       *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	logger *zap.Logger,
) CartService {
	return &cartService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		logger:       logger,
	}
}

// GetOrCreateCart lazily creates the customer and open order for a
// user. Both creations are idempotent upserts, so repeated and
// concurrent calls converge on the same pair.
func (s *cartService) GetOrCreateCart(ctx context.Context, user *domain.User) (*domain.Customer, *domain.Order, error) {
	customer, err := s.customerRepo.GetOrCreate(ctx, user.ID, user.FullName(), user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	order, err := s.orderRepo.GetOrCreateOpen(ctx, customer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve open order: %w", err)
	}

	return customer, order, nil
}

// AdjustLine applies one add or remove to the user's cart. The paired
// stock and line writes happen atomically in the repository; the
// outcome reports whether anything actually moved.
func (s *cartService) AdjustLine(ctx context.Context, user *domain.User, productID uuid.UUID, action domain.CartAction) (domain.AdjustOutcome, error) {
	_, order, err := s.GetOrCreateCart(ctx, user)
	if err != nil {
		return "", err
	}

	outcome, err := s.cartRepo.AdjustLine(ctx, order.ID, productID, action)
	if err != nil {
		return "", err
	}

	s.logger.Debug("Cart line adjusted",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", productID.String()),
		zap.String("action", string(action)),
		zap.String("outcome", string(outcome)),
	)

	return outcome, nil
}

// Totals sums the order's lines: total price is Σ(price × quantity),
// total quantity is Σ(quantity). No tax, no discounting.
func (s *cartService) Totals(ctx context.Context, orderID uuid.UUID) (domain.CartTotals, error) {
	lines, err := s.cartRepo.ListLines(ctx, orderID)
	if err != nil {
		return domain.CartTotals{}, err
	}

	return sumLines(lines), nil
}

// Clear deletes every line of the order without restoring stock
func (s *cartService) Clear(ctx context.Context, orderID uuid.UUID) error {
	return s.cartRepo.ClearLines(ctx, orderID)
}

// Summary returns the user's cart with lines and totals in one call
func (s *cartService) Summary(ctx context.Context, user *domain.User) (*CartSummary, error) {
	customer, order, err := s.GetOrCreateCart(ctx, user)
	if err != nil {
		return nil, err
	}

	lines, err := s.cartRepo.ListLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &CartSummary{
		Customer: customer,
		Order:    order,
		Lines:    lines,
		Totals:   sumLines(lines),
	}, nil
}

func sumLines(lines []*domain.CartLine) domain.CartTotals {
	totals := domain.CartTotals{}
	for _, line := range lines {
		totals.TotalPrice += line.TotalPrice()
		totals.TotalQuantity += line.Quantity
	}
	return totals
}
