package model

import (
	"time"

	"github.com/google/uuid"
)

// CartLineModel mirrors the 'cart_lines' table: one row per (user, product).
// The serial ID records insertion order.
type CartLineModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_lines_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_lines_user_product,priority:2;index"`
	Quantity  int       `gorm:"not null;check:chk_cart_lines_quantity,quantity BETWEEN 1 AND 999"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// WishlistItemModel mirrors the 'wishlist_items' table: one row per (user, product).
type WishlistItemModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_user_product,priority:1"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_user_product,priority:2;index"`
	CreatedAt time.Time

	User    *UserModel    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (WishlistItemModel) TableName() string {
	return "wishlist_items"
}
