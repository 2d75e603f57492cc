package transport

import (
	"errors"
	"io"
	"net/http"

	"gemstore/internal/domain"
	"gemstore/internal/middleware"
	"gemstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxWebhookBody bounds webhook payload reads
const maxWebhookBody = 64 * 1024

// CreateSessionRequest represents the checkout payload: the shipping
// address captured alongside the session.
type CreateSessionRequest struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zipcode string `json:"zipcode" validate:"required"`
}

// CreateSessionResponse carries the hosted checkout redirect target
type CreateSessionResponse struct {
	URL string `json:"url"`
}

// CheckoutHandler handles HTTP requests for checkout and payment callbacks
type CheckoutHandler struct {
	paymentService service.PaymentService
	userService    service.UserService
	logger         *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(paymentService service.PaymentService, userService service.UserService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		paymentService: paymentService,
		userService:    userService,
		logger:         logger,
	}
}

// RegisterRoutes registers checkout routes. The webhook is called by
// the payment processor and authenticates by signature, not session.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/checkout/session", h.CreateSession)
	})

	r.Post("/api/payments/webhook", h.Webhook)
}

// CreateSession creates a hosted checkout session for the caller's cart
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shipping := &service.ShippingDetails{
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zipcode: req.Zipcode,
	}

	url, err := h.paymentService.CreateSession(r.Context(), user, shipping)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		if errors.Is(err, service.ErrPaymentUpstream) {
			h.logger.Error("Payment processor unavailable", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadGateway, "payment processor request failed")
			return
		}
		h.logger.Error("Failed to create checkout session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CreateSessionResponse{URL: url})
}

// Webhook consumes a signed payment processor callback
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.paymentService.HandleEvent(r.Context(), payload, signature); err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		h.logger.Error("Webhook processing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (h *CheckoutHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return nil, false
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.String("user_id", userIDStr), zap.Error(err))
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	return user, true
}
