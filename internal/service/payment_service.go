package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gemstore/internal/config"
	"gemstore/internal/domain"
	"gemstore/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// CheckoutSessionCompleted is the processor event that settles an order
	CheckoutSessionCompleted = "checkout.session.completed"

	// paymentEventTTL bounds the idempotency guard; the processor stops
	// retrying a webhook long before this.
	paymentEventTTL = 24 * time.Hour
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrPaymentUpstream  = errors.New("payment processor request failed")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// SessionRequest is the single aggregated line item sent to the hosted
// checkout: the whole cart priced in minor currency units.
type SessionRequest struct {
	OrderID     uuid.UUID
	Currency    string
	ProductName string
	UnitAmount  int64
	Quantity    int64
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the processor's answer: where to send the user
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutClient creates hosted checkout sessions upstream
type CheckoutClient interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*CheckoutSession, error)
}

// PaymentEvent is a verified webhook notification
type PaymentEvent struct {
	Type      string
	SessionID string
	OrderID   uuid.UUID
}

// EventVerifier authenticates a webhook payload against its signature
// header before anything acts on it.
type EventVerifier interface {
	Verify(payload []byte, signature string) (*PaymentEvent, error)
}

// ShippingDetails is the address form captured at checkout
type ShippingDetails struct {
	Address string
	City    string
	State   string
	Zipcode string
}

// PaymentService bridges the cart to the external payment processor
type PaymentService interface {
	// CreateSession packages the cart totals into a hosted checkout
	// session and returns the redirect URL.
	CreateSession(ctx context.Context, user *domain.User, shipping *ShippingDetails) (string, error)

	// HandleEvent processes a webhook callback: verifies the signature,
	// drops duplicates, then clears the cart and completes the order.
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	cart      CartService
	orderRepo repository.OrderRepository
	checkout  CheckoutClient
	verifier  EventVerifier
	redis     *redis.Client
	cfg       config.StripeConfig
	logger    *zap.Logger
}

// NewPaymentService creates a new instance of PaymentService
func NewPaymentService(
	cart CartService,
	orderRepo repository.OrderRepository,
	checkout CheckoutClient,
	verifier EventVerifier,
	redisClient *redis.Client,
	cfg config.StripeConfig,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		cart:      cart,
		orderRepo: orderRepo,
		checkout:  checkout,
		verifier:  verifier,
		redis:     redisClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// CreateSession reads the cart totals and requests a hosted session.
// Upstream failures propagate; there are no retries.
func (s *paymentService) CreateSession(ctx context.Context, user *domain.User, shipping *ShippingDetails) (string, error) {
	summary, err := s.cart.Summary(ctx, user)
	if err != nil {
		return "", err
	}

	if summary.Totals.TotalQuantity == 0 {
		return "", ErrEmptyCart
	}

	if shipping != nil {
		address := &domain.ShippingAddress{
			ID:         uuid.New(),
			CustomerID: summary.Customer.ID,
			OrderID:    summary.Order.ID,
			Address:    shipping.Address,
			City:       shipping.City,
			State:      shipping.State,
			Zipcode:    shipping.Zipcode,
			CreatedAt:  time.Now(),
		}
		if err := s.orderRepo.UpsertShippingAddress(ctx, address); err != nil {
			return "", err
		}
	}

	req := &SessionRequest{
		OrderID:     summary.Order.ID,
		Currency:    s.cfg.Currency,
		ProductName: s.cfg.ProductName,
		UnitAmount:  int64(math.Round(summary.Totals.TotalPrice * 100)),
		Quantity:    int64(summary.Totals.TotalQuantity),
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	}

	session, err := s.checkout.CreateSession(ctx, req)
	if err != nil {
		s.logger.Error("Checkout session creation failed",
			zap.String("order_id", summary.Order.ID.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrPaymentUpstream, err)
	}

	s.logger.Info("Checkout session created",
		zap.String("order_id", summary.Order.ID.String()),
		zap.String("session_id", session.ID),
		zap.Int64("unit_amount", req.UnitAmount),
		zap.Int64("quantity", req.Quantity),
	)

	return session.URL, nil
}

// HandleEvent settles an order after the processor confirms payment.
// Replayed deliveries of the same session are dropped by a redis SETNX
// guard; if redis is unavailable the clear+complete pair is itself
// idempotent, so processing continues.
func (s *paymentService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != CheckoutSessionCompleted {
		s.logger.Debug("Ignoring payment event", zap.String("type", event.Type))
		return nil
	}

	var claimKey string
	if s.redis != nil {
		key := "payment:session:" + event.SessionID
		fresh, err := s.redis.SetNX(ctx, key, 1, paymentEventTTL).Result()
		if err != nil {
			s.logger.Warn("Idempotency guard unavailable, continuing",
				zap.String("session_id", event.SessionID),
				zap.Error(err),
			)
		} else if !fresh {
			s.logger.Info("Duplicate payment event dropped",
				zap.String("session_id", event.SessionID),
			)
			return nil
		} else {
			claimKey = key
		}
	}

	order, err := s.orderRepo.FindByID(ctx, event.OrderID)
	if err != nil {
		s.releaseClaim(ctx, claimKey)
		return err
	}

	if order.IsCompleted {
		return nil
	}

	// Clearing forfeits the stock reservation: the reserved units were
	// just sold, so stock is not restored.
	if err := s.cart.Clear(ctx, order.ID); err != nil {
		s.releaseClaim(ctx, claimKey)
		return err
	}

	if err := s.orderRepo.Complete(ctx, order.ID); err != nil {
		s.releaseClaim(ctx, claimKey)
		return err
	}

	s.logger.Info("Order completed",
		zap.String("order_id", order.ID.String()),
		zap.String("session_id", event.SessionID),
	)

	return nil
}

// releaseClaim frees the idempotency key after a failed settlement so
// the processor's retry is not mistaken for a duplicate delivery.
func (s *paymentService) releaseClaim(ctx context.Context, key string) {
	if s.redis == nil || key == "" {
		return
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("Failed to release payment idempotency key",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
