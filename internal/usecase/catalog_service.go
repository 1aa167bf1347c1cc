package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/user/leafmarket/internal/domain"
)

// Catalog errors surfaced to callers. Each data-access failure collapses
// to the generic message for its operation; the underlying error is
// logged, never returned.
var (
	ErrAddProduct      = errors.New("failed to add product")
	ErrFetchProducts   = errors.New("failed to fetch products")
	ErrUpdateProduct   = errors.New("failed to update product")
	ErrDeleteProduct   = errors.New("failed to delete product")
	ErrUploadImage     = errors.New("failed to upload image")
	ErrUnknownCategory = errors.New("unknown product category")
)

type catalogService struct {
	products domain.ProductRepository
	assets   domain.AssetStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewCatalogService creates the product catalog service.
func NewCatalogService(products domain.ProductRepository, assets domain.AssetStore, logger *slog.Logger) CatalogUseCase {
	return &catalogService{
		products: products,
		assets:   assets,
		logger:   logger.With("component", "catalog_service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Add stores a new product with createdAt == updatedAt and returns its id.
// When an image is supplied it is uploaded first and its URL replaces the
// submitted one.
func (s *catalogService) Add(ctx context.Context, input ProductInput, image *ImageUpload) (string, error) {
	if !domain.ValidCategory(input.Category) {
		return "", ErrUnknownCategory
	}

	imageURL := input.ImageURL
	if image != nil {
		url, err := s.assets.Upload(ctx, image.Filename, image.Data)
		if err != nil {
			s.logger.Error("image upload failed", "error", err)
			return "", ErrUploadImage
		}
		imageURL = url
	}

	now := s.now()
	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		ImageURL:    imageURL,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.products.Store(ctx, product)
	if err != nil {
		s.logger.Error("product insert failed", "error", err)
		return "", ErrAddProduct
	}
	return id, nil
}

func (s *catalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		s.logger.Error("product list failed", "error", err)
		return nil, ErrFetchProducts
	}
	return products, nil
}

func (s *catalogService) ListActive(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.FindActive(ctx)
	if err != nil {
		s.logger.Error("active product list failed", "error", err)
		return nil, ErrFetchProducts
	}
	return products, nil
}

func (s *catalogService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if !domain.ValidCategory(category) {
		return nil, ErrUnknownCategory
	}
	products, err := s.products.FindActiveByCategory(ctx, category)
	if err != nil {
		s.logger.Error("category product list failed", "category", category, "error", err)
		return nil, ErrFetchProducts
	}
	return products, nil
}

// Update merges the supplied fields into an existing record. The store
// always refreshes updatedAt; existence of the id is not checked first.
func (s *catalogService) Update(ctx context.Context, id string, fields domain.ProductUpdate, image *ImageUpload) error {
	if fields.Category != nil && !domain.ValidCategory(*fields.Category) {
		return ErrUnknownCategory
	}

	if image != nil {
		url, err := s.assets.Upload(ctx, image.Filename, image.Data)
		if err != nil {
			s.logger.Error("image upload failed", "error", err)
			return ErrUploadImage
		}
		fields.ImageURL = &url
	}

	if err := s.products.Update(ctx, id, fields); err != nil {
		s.logger.Error("product update failed", "id", id, "error", err)
		return ErrUpdateProduct
	}
	return nil
}

// Delete removes the record, then best-effort deletes the associated
// asset unless it is a bundled placeholder. Asset deletion failure is
// logged and swallowed; a dangling asset is an accepted outcome.
func (s *catalogService) Delete(ctx context.Context, id, imageURL string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		s.logger.Error("product delete failed", "id", id, "error", err)
		return ErrDeleteProduct
	}

	if imageURL != "" && !domain.IsPlaceholderAsset(imageURL) {
		if err := s.assets.DeleteByURL(ctx, imageURL); err != nil {
			s.logger.Warn("could not delete product image", "id", id, "url", imageURL, "error", err)
		}
	}
	return nil
}

// ToggleStatus flips active and inactive via a partial update.
func (s *catalogService) ToggleStatus(ctx context.Context, id string, current domain.ProductStatus) error {
	next := domain.StatusInactive
	if current == domain.StatusInactive {
		next = domain.StatusActive
	}
	return s.Update(ctx, id, domain.ProductUpdate{Status: &next}, nil)
}
