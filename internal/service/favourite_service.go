package service

import (
	"context"
	"time"

	"gemstore/internal/domain"
	"gemstore/internal/repository"

	"github.com/google/uuid"
)

// FavouriteService toggles and lists a user's product bookmarks
type FavouriteService interface {
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error)
}

type favouriteService struct {
	favouriteRepo repository.FavouriteRepository
	productRepo   repository.ProductRepository
}

// NewFavouriteService creates a new instance of FavouriteService
func NewFavouriteService(
	favouriteRepo repository.FavouriteRepository,
	productRepo repository.ProductRepository,
) FavouriteService {
	return &favouriteService{
		favouriteRepo: favouriteRepo,
		productRepo:   productRepo,
	}
}

// Toggle flips membership for (user, product) and returns the new
// state. Applying it twice restores the original membership.
func (s *favouriteService) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return false, err
	}

	exists, err := s.favouriteRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	if exists {
		if err := s.favouriteRepo.Delete(ctx, userID, productID); err != nil {
			return false, err
		}
		return false, nil
	}

	favourite := &domain.FavouriteProduct{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	if err := s.favouriteRepo.Create(ctx, favourite); err != nil {
		return false, err
	}

	return true, nil
}

// List returns the user's favourite products
func (s *favouriteService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	return s.favouriteRepo.ListProducts(ctx, userID)
}
