package postgres

import (
	"context"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository is the constructor for wishlistRepository.
func NewWishlistRepository(db *gorm.DB) repository.WishlistRepository {
	return &wishlistRepository{db: db}
}

func (repo *wishlistRepository) Items(ctx context.Context, userID uuid.UUID) ([]entity.WishlistItem, error) {
	var rows []model.WishlistItemModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list wishlist items")
	}

	items := make([]entity.WishlistItem, 0, len(rows))
	for i := range rows {
		items = append(items, entity.WishlistItem{
			ProductID: rows[i].ProductID,
			AddedAt:   rows[i].CreatedAt,
		})
	}

	return items, nil
}

// Add inserts the item, leaving an existing row untouched.
func (repo *wishlistRepository) Add(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	row := &model.WishlistItemModel{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}

	result := repo.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return false, repository.ErrProductNotFound
		}

		return false, errors.Wrap(result.Error, "failed to add wishlist item")
	}

	return result.RowsAffected > 0, nil
}

func (repo *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItemModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to remove wishlist item")
	}

	return nil
}
