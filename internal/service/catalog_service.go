package service

import (
	"context"
	"fmt"
	"time"

	"gemstore/internal/domain"
	"gemstore/internal/repository"

	"github.com/google/uuid"
)

const (
	// HomeProductsPerCategory is how many products the storefront home
	// page shows under each category.
	HomeProductsPerCategory = 4

	// SuggestedProducts is how many other products the detail page offers
	SuggestedProducts = 4
)

// CategoryPreview is a category with its leading products, as shown on
// the storefront home page.
type CategoryPreview struct {
	Category *domain.Category  `json:"category"`
	Products []*domain.Product `json:"products"`
}

// ProductDetail is everything the product page needs
type ProductDetail struct {
	Product     *domain.Product        `json:"product"`
	Gallery     []*domain.ProductImage `json:"gallery"`
	Reviews     []*domain.Review       `json:"reviews"`
	Suggestions []*domain.Product      `json:"suggestions"`
}

// CatalogService serves the read-mostly browse surface plus the admin
// mutations behind it.
type CatalogService interface {
	Home(ctx context.Context) ([]*CategoryPreview, error)
	ProductsByCategory(ctx context.Context, categorySlug, sort string) (*domain.Category, []*domain.Product, error)
	ProductDetail(ctx context.Context, slug string) (*ProductDetail, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)

	CreateCategory(ctx context.Context, title, slug, imageURL string) (*domain.Category, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	reviewRepo   repository.ReviewRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		reviewRepo:   reviewRepo,
	}
}

// Home lists every category with its first few products
func (s *catalogService) Home(ctx context.Context) ([]*CategoryPreview, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	previews := make([]*CategoryPreview, 0, len(categories))
	for _, category := range categories {
		products, err := s.productRepo.ListByCategory(ctx, category.ID, "", HomeProductsPerCategory)
		if err != nil {
			return nil, fmt.Errorf("failed to list products for category %s: %w", category.Slug, err)
		}
		previews = append(previews, &CategoryPreview{
			Category: category,
			Products: products,
		})
	}

	return previews, nil
}

// ProductsByCategory lists a category's products, sorted per the
// allow-listed sort key.
func (s *catalogService) ProductsByCategory(ctx context.Context, categorySlug, sort string) (*domain.Category, []*domain.Product, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}

	products, err := s.productRepo.ListByCategory(ctx, category.ID, sort, 0)
	if err != nil {
		return nil, nil, err
	}

	return category, products, nil
}

// ProductDetail assembles the product page: product, gallery, reviews
// and a handful of suggested products.
func (s *catalogService) ProductDetail(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	gallery, err := s.productRepo.ListImages(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.productRepo.Suggestions(ctx, product.ID, SuggestedProducts)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{
		Product:     product,
		Gallery:     gallery,
		Reviews:     reviews,
		Suggestions: suggestions,
	}, nil
}

// Search finds products by title or description
func (s *catalogService) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.productRepo.Search(ctx, query, page, pageSize)
}

// CreateCategory adds a category (admin)
func (s *catalogService) CreateCategory(ctx context.Context, title, slug, imageURL string) (*domain.Category, error) {
	category := &domain.Category{
		ID:        uuid.New(),
		Title:     title,
		Slug:      slug,
		ImageURL:  imageURL,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// CreateProduct adds a product (admin)
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		return err
	}

	return s.productRepo.Create(ctx, product)
}

// UpdateProduct updates a product (admin)
func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now()
	return s.productRepo.Update(ctx, product)
}

// DeleteProduct removes a product (admin)
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
