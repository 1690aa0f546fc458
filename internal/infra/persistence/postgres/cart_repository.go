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

// cartRepository stores each cart line as its own row so that every
// mutation is a single statement.
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// Lines returns the user's cart lines ordered by insertion.
func (repo *cartRepository) Lines(ctx context.Context, userID uuid.UUID) ([]entity.CartLine, error) {
	return repo.lines(repo.db.WithContext(ctx), userID)
}

// LockLines reads the cart with SELECT ... FOR UPDATE. SQLite has no row
// locks and gorm's sqlite dialect drops the clause.
func (repo *cartRepository) LockLines(ctx context.Context, userID uuid.UUID) ([]entity.CartLine, error) {
	return repo.lines(repo.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (repo *cartRepository) lines(db *gorm.DB, userID uuid.UUID) ([]entity.CartLine, error) {
	var rows []model.CartLineModel
	if err := db.
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list cart lines")
	}

	lines := make([]entity.CartLine, 0, len(rows))
	for i := range rows {
		lines = append(lines, entity.CartLine{
			ProductID: rows[i].ProductID,
			Quantity:  rows[i].Quantity,
			AddedAt:   rows[i].CreatedAt,
			UpdatedAt: rows[i].UpdatedAt,
		})
	}

	return lines, nil
}

// Increment upserts the line, adding quantity to an existing row in place.
func (repo *cartRepository) Increment(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	now := time.Now().UTC()
	row := &model.CartLineModel{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The conflict branch only fires while the sum stays within bounds, so an
	// existing line over the limit reports zero affected rows.
	result := repo.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_lines.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_lines.quantity + excluded.quantity <= ?", entity.MaxCartQuantity),
			}},
		}).
		Create(row)
	if result.Error != nil {
		if isForeignKeyConstraintViolation(result.Error) {
			return repository.ErrProductNotFound
		}
		if isCheckConstraintViolation(result.Error) {
			return repository.ErrCartQuantityLimit
		}

		return errors.Wrap(result.Error, "failed to upsert cart line")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartQuantityLimit
	}

	return nil
}

// SetQuantity overwrites the quantity of an existing line.
func (repo *cartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CartLineModel{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return repository.ErrCartQuantityLimit
		}

		return errors.Wrap(result.Error, "failed to update cart line")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartLineNotFound
	}

	return nil
}

// Remove deletes the line if present.
func (repo *cartRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartLineModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to remove cart line")
	}

	return nil
}

// Clear deletes every line of the user's cart.
func (repo *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLineModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to clear cart")
	}

	return nil
}

// RemoveProducts deletes the lines for productIDs.
func (repo *cartRepository) RemoveProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}

	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Delete(&model.CartLineModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to remove checked out lines")
	}

	return nil
}
