package transport

import (
	"net/http"

	"gemstore/internal/domain"
	"gemstore/internal/middleware"
	"gemstore/internal/repository"
	"gemstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdjustLineRequest represents the cart mutation payload
type AdjustLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Action    string `json:"action" validate:"required,oneof=add remove"`
}

// AdjustLineResponse reports the outcome together with the new cart state
type AdjustLineResponse struct {
	Outcome domain.AdjustOutcome `json:"outcome"`
	Cart    *service.CartSummary `json:"cart"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	userService service.UserService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, userService service.UserService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes; every one requires a session
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/cart", h.GetCart)
		r.Post("/api/cart/items", h.AdjustLine)
	})
}

// GetCart returns the caller's cart with lines and totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.cartService.Summary(r.Context(), user)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.String("user_id", user.ID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// AdjustLine applies a single add or remove to the caller's cart
func (h *CartHandler) AdjustLine(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req AdjustLineRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	outcome, err := h.cartService.AdjustLine(r.Context(), user, productID, domain.CartAction(req.Action))
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Cart adjustment failed",
			zap.String("user_id", user.ID.String()),
			zap.String("product_id", req.ProductID),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to adjust cart")
		return
	}

	if outcome == domain.AdjustOutOfStock {
		middleware.RespondWithError(w, http.StatusConflict, "product is out of stock")
		return
	}

	summary, err := h.cartService.Summary(r.Context(), user)
	if err != nil {
		h.logger.Error("Failed to load cart after adjustment", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdjustLineResponse{
		Outcome: outcome,
		Cart:    summary,
	})
}

// currentUser resolves the authenticated user from the request context
func (h *CartHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
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
