package usecase

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
)

// ListProductsInput filters the catalog. Empty fields match everything.
type ListProductsInput struct {
	Category    string
	SubCategory string
}

// CreateProductInput defines a new catalog entry and its images.
type CreateProductInput struct {
	Name        string
	Price       float64
	Description string
	Category    string
	SubCategory string
	Images      []service.ImageUpload
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Price       *float64
	Description *string
	Category    *string
	SubCategory *string
}

// UpdateProductImagesInput removes images by storage id and appends new uploads.
type UpdateProductImagesInput struct {
	ID               uuid.UUID
	DeleteStorageIDs []string
	NewImages        []service.ImageUpload
}

// ProductUsecase covers catalog browsing and administration.
type ProductUsecase interface {
	List(ctx context.Context, input *ListProductsInput) ([]*entity.Product, error)
	NewArrivals(ctx context.Context) ([]*entity.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Product, error)

	Create(ctx context.Context, input *CreateProductInput) (*entity.Product, error)
	UpdateDetails(ctx context.Context, input *UpdateProductInput) (*entity.Product, error)
	UpdateImages(ctx context.Context, input *UpdateProductImagesInput) (*entity.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
