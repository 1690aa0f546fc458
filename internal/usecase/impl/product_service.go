package impl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"storefront/config"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type productService struct {
	txManager        repository.TransactionManager
	repos            repository.RepositoryFactory
	images           service.ImageStore
	maxImages        int
	newArrivalsLimit int
	logger           *slog.Logger
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	Repos      repository.RepositoryFactory
	ImageStore service.ImageStore
	Config     *config.Config
	Logger     *slog.Logger
}

// NewProductService is the constructor for productService.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		txManager:        params.TxManager,
		repos:            params.Repos,
		images:           params.ImageStore,
		maxImages:        params.Config.Storage.MaxImages,
		newArrivalsLimit: params.Config.Catalog.NewArrivalsLimit,
		logger:           params.Logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// List returns the filtered catalog, newest first.
func (srv *productService) List(ctx context.Context, input *usecase.ListProductsInput) ([]*entity.Product, error) {
	products, err := srv.repos.ProductRepo().List(ctx, repository.ProductFilter{
		Category:    entity.NormalizeCategory(input.Category),
		SubCategory: entity.NormalizeCategory(input.SubCategory),
	})
	if err != nil {
		return nil, translateRepoError(err, "failed to list products")
	}

	return products, nil
}

// NewArrivals returns the most recently added products.
func (srv *productService) NewArrivals(ctx context.Context) ([]*entity.Product, error) {
	products, err := srv.repos.ProductRepo().List(ctx, repository.ProductFilter{Limit: srv.newArrivalsLimit})
	if err != nil {
		return nil, translateRepoError(err, "failed to list new arrivals")
	}

	return products, nil
}

func (srv *productService) Get(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := srv.repos.ProductRepo().FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, "failed to load product")
	}

	return product, nil
}

func validateProductFields(name string, price float64) error {
	if strings.TrimSpace(name) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("name is required")
	}
	if price <= 0 {
		return domainerrors.ErrValidationFailed.WithDetails("price must be positive")
	}

	return nil
}

// Create uploads the images then stores the product. Uploaded images are
// removed again if the product cannot be stored.
func (srv *productService) Create(ctx context.Context, input *usecase.CreateProductInput) (*entity.Product, error) {
	if err := validateProductFields(input.Name, input.Price); err != nil {
		return nil, err
	}
	if len(input.Images) > srv.maxImages {
		return nil, domainerrors.ErrValidationFailed.WithDetails("too many images")
	}

	uploaded, err := srv.uploadAll(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Description: input.Description,
		Category:    input.Category,
		SubCategory: input.SubCategory,
		Images:      uploaded,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return translateRepoError(repoFactory.ProductRepo().Create(ctx, product), "failed to create product")
	})
	if err != nil {
		srv.deleteImages(ctx, storageIDs(uploaded))

		return nil, err
	}

	srv.log(ctx).Info("Product created",
		slog.String("product_id", product.ID.String()),
		slog.Int("image_count", len(uploaded)),
	)

	return product, nil
}

// UpdateDetails applies a partial update of the text and price fields.
func (srv *productService) UpdateDetails(ctx context.Context, input *usecase.UpdateProductInput) (*entity.Product, error) {
	var product *entity.Product

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		products := repoFactory.ProductRepo()

		current, err := products.LockByID(ctx, input.ID)
		if err != nil {
			return translateRepoError(err, "failed to load product")
		}

		applyProductUpdate(current, input)
		if err := validateProductFields(current.Name, current.Price); err != nil {
			return err
		}

		if err := products.Update(ctx, current); err != nil {
			return translateRepoError(err, "failed to update product")
		}
		product = current

		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func applyProductUpdate(product *entity.Product, input *usecase.UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.SubCategory != nil {
		product.SubCategory = *input.SubCategory
	}
}

// UpdateImages drops the named images and appends the new uploads. Removed
// blobs are deleted once the product no longer references them.
func (srv *productService) UpdateImages(ctx context.Context, input *usecase.UpdateProductImagesInput) (*entity.Product, error) {
	product, err := srv.repos.ProductRepo().FindByID(ctx, input.ID)
	if err != nil {
		return nil, translateRepoError(err, "failed to load product")
	}

	// Fail early on the current state; the count is checked again below
	// against the row the transaction writes.
	if kept, _ := splitImages(product.Images, input.DeleteStorageIDs); len(kept)+len(input.NewImages) > srv.maxImages {
		return nil, domainerrors.ErrValidationFailed.WithDetails("too many images")
	}

	uploaded, err := srv.uploadAll(ctx, input.NewImages)
	if err != nil {
		return nil, err
	}

	var removed []string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		products := repoFactory.ProductRepo()

		current, err := products.LockByID(ctx, input.ID)
		if err != nil {
			return translateRepoError(err, "failed to load product")
		}

		var kept []entity.ProductImage
		kept, removed = splitImages(current.Images, input.DeleteStorageIDs)
		if len(kept)+len(uploaded) > srv.maxImages {
			return domainerrors.ErrValidationFailed.WithDetails("too many images")
		}
		current.Images = append(kept, uploaded...)

		if err := products.Update(ctx, current); err != nil {
			return translateRepoError(err, "failed to update product images")
		}
		product = current

		return nil
	})
	if err != nil {
		srv.deleteImages(ctx, storageIDs(uploaded))

		return nil, err
	}

	srv.deleteImages(ctx, removed)

	return product, nil
}

// splitImages partitions images into those kept and the storage ids dropped.
func splitImages(images []entity.ProductImage, drop []string) ([]entity.ProductImage, []string) {
	kept := make([]entity.ProductImage, 0, len(images))
	var removed []string
	for _, img := range images {
		if slices.Contains(drop, img.StorageID) {
			removed = append(removed, img.StorageID)

			continue
		}
		kept = append(kept, img)
	}

	return kept, removed
}

// Delete removes the product's blobs, then the product. A blob that cannot
// be deleted is logged and left behind.
func (srv *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := srv.repos.ProductRepo().FindByID(ctx, id)
	if err != nil {
		return translateRepoError(err, "failed to load product")
	}

	srv.deleteImages(ctx, product.ImageStorageIDs())

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return translateRepoError(repoFactory.ProductRepo().Delete(ctx, id), "failed to delete product")
	})
	if err != nil {
		return err
	}

	srv.log(ctx).Info("Product deleted", slog.String("product_id", id.String()))

	return nil
}

// uploadAll uploads every image or none: on failure the ones already stored are deleted.
func (srv *productService) uploadAll(ctx context.Context, uploads []service.ImageUpload) ([]entity.ProductImage, error) {
	images := make([]entity.ProductImage, 0, len(uploads))
	for _, upload := range uploads {
		img, err := srv.images.Upload(ctx, upload)
		if err != nil {
			srv.deleteImages(ctx, storageIDs(images))

			if errors.Is(err, service.ErrImageRejected) {
				return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
			}
			srv.log(ctx).Error("Image upload failed", slog.String("filename", upload.Filename), slog.Any("error", err))

			return nil, errors.Wrap(domainerrors.ErrImageUploadFailed, err.Error())
		}
		images = append(images, img)
	}

	return images, nil
}

func (srv *productService) deleteImages(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := srv.images.Delete(ctx, id); err != nil {
			srv.log(ctx).Warn("Failed to delete image, leaving orphan", slog.String("storage_id", id), slog.Any("error", err))
		}
	}
}

func storageIDs(images []entity.ProductImage) []string {
	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.StorageID)
	}

	return ids
}
