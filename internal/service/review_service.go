package service

import (
	"context"
	"time"

	"gemstore/internal/domain"
	"gemstore/internal/repository"

	"github.com/google/uuid"
)

// ReviewService appends reviews. No edit, delete or moderation
// surface, and a user may review the same product repeatedly.
type ReviewService interface {
	Add(ctx context.Context, authorID uuid.UUID, productSlug, text string) (*domain.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// Add appends a review for the product behind the slug
func (s *reviewService) Add(ctx context.Context, authorID uuid.UUID, productSlug, text string) (*domain.Review, error) {
	product, err := s.productRepo.FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ID:        uuid.New(),
		AuthorID:  authorID,
		ProductID: product.ID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}
