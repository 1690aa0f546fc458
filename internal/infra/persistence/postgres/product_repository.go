package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (repo *productRepository) withImages(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return repo.findByID(repo.withImages(ctx), id)
}

// LockByID loads the product with its row locked for the rest of the transaction.
func (repo *productRepository) LockByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return repo.findByID(repo.withImages(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (repo *productRepository) findByID(query *gorm.DB, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel
	if err := query.Where("id = ?", id).Take(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by id")
	}

	return toProductDomain(&productM), nil
}

// FindByIDs loads every referenced product in one query.
func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	products := make(map[uuid.UUID]*entity.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	var rows []model.ProductModel
	if err := repo.withImages(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products by ids")
	}

	for i := range rows {
		products[rows[i].ID] = toProductDomain(&rows[i])
	}

	return products, nil
}

// List returns products newest first, filtered on the normalised categories.
func (repo *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := repo.withImages(ctx)
	if category := entity.NormalizeCategory(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if subCategory := entity.NormalizeCategory(filter.SubCategory); subCategory != "" {
		query = query.Where("sub_category = ?", subCategory)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.ProductModel
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(rows))
	for i := range rows {
		products = append(products, toProductDomain(&rows[i]))
	}

	return products, nil
}

// Create inserts the product and its images.
func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	productM := fromProductDomain(product)
	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WithDetails("price must be positive")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.Category = productM.Category
	product.SubCategory = productM.SubCategory
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// Update rewrites the product row and replaces its image rows.
// Run it inside a transaction so the image swap is atomic.
func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)
	db := repo.db.WithContext(ctx)
	now := time.Now().UTC()

	result := db.Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":         productM.Name,
			"price":        productM.Price,
			"description":  productM.Description,
			"category":     productM.Category,
			"sub_category": productM.SubCategory,
			"updated_at":   now,
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return domainerrors.ErrValidationFailed.WithDetails("price must be positive")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	if err := db.Where("product_id = ?", product.ID).Delete(&model.ProductImageModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear product images")
	}
	if len(productM.Images) > 0 {
		if err := db.Omit(clause.Associations).Create(&productM.Images).Error; err != nil {
			return errors.Wrap(err, "failed to store product images")
		}
	}

	product.Category = productM.Category
	product.SubCategory = productM.SubCategory
	product.UpdatedAt = now

	return nil
}

// Delete removes the product; images, cart lines and wishlist items cascade.
func (repo *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := repo.db.WithContext(ctx)

	// Child rows are deleted explicitly as well so dialects without
	// enforced foreign keys behave the same.
	for _, child := range []any{&model.ProductImageModel{}, &model.CartLineModel{}, &model.WishlistItemModel{}} {
		if err := db.Where("product_id = ?", id).Delete(child).Error; err != nil {
			return errors.Wrap(err, "failed to delete product references")
		}
	}

	result := db.Where("id = ?", id).Delete(&model.ProductModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	images := make([]entity.ProductImage, 0, len(data.Images))
	for _, img := range data.Images {
		images = append(images, entity.ProductImage{URL: img.URL, StorageID: img.StorageID})
	}

	return &entity.Product{
		ID:          data.ID,
		Name:        data.Name,
		Price:       data.Price,
		Description: data.Description,
		Category:    data.Category,
		SubCategory: data.SubCategory,
		Images:      images,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	if data == nil {
		return nil
	}

	images := make([]model.ProductImageModel, 0, len(data.Images))
	for i, img := range data.Images {
		images = append(images, model.ProductImageModel{
			ProductID: data.ID,
			Position:  i,
			URL:       img.URL,
			StorageID: img.StorageID,
		})
	}

	return &model.ProductModel{
		ID:          data.ID,
		Name:        data.Name,
		Price:       data.Price,
		Description: data.Description,
		Category:    entity.NormalizeCategory(data.Category),
		SubCategory: entity.NormalizeCategory(data.SubCategory),
		Images:      images,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
