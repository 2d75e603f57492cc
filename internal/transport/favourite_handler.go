package transport

import (
	"net/http"

	"gemstore/internal/middleware"
	"gemstore/internal/repository"
	"gemstore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ToggleFavouriteResponse reports the new membership state
type ToggleFavouriteResponse struct {
	Favourited bool `json:"favourited"`
}

// FavouriteHandler handles HTTP requests for favourite bookmarks
type FavouriteHandler struct {
	favouriteService service.FavouriteService
	productRepo      repository.ProductRepository
	logger           *zap.Logger
}

// NewFavouriteHandler creates a new FavouriteHandler
func NewFavouriteHandler(favouriteService service.FavouriteService, productRepo repository.ProductRepository, logger *zap.Logger) *FavouriteHandler {
	return &FavouriteHandler{
		favouriteService: favouriteService,
		productRepo:      productRepo,
		logger:           logger,
	}
}

// RegisterRoutes registers all favourite routes
func (h *FavouriteHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/products/{slug}/favourite", h.Toggle)
		r.Get("/api/favourites", h.List)
	})
}

// Toggle flips favourite membership for the caller and product
func (h *FavouriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")
	product, err := h.productRepo.FindBySlug(r.Context(), slug)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to resolve product", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to toggle favourite")
		return
	}

	favourited, err := h.favouriteService.Toggle(r.Context(), userID, product.ID)
	if err != nil {
		h.logger.Error("Failed to toggle favourite",
			zap.String("user_id", userID.String()),
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to toggle favourite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ToggleFavouriteResponse{Favourited: favourited})
}

// List returns the caller's favourite products
func (h *FavouriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.callerID(w, r)
	if !ok {
		return
	}

	products, err := h.favouriteService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list favourites", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list favourites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *FavouriteHandler) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}

	return userID, true
}
