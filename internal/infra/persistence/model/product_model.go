package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel mirrors the 'products' table. Category and sub category are
// stored normalised so listings can filter on equality.
type ProductModel struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name        string              `gorm:"type:varchar(255);not null"`
	Price       float64             `gorm:"type:double precision;not null"`
	Description string              `gorm:"type:text"`
	Category    string              `gorm:"type:varchar(100);index:idx_products_category,priority:1"`
	SubCategory string              `gorm:"type:varchar(100);index:idx_products_category,priority:2"`
	Images      []ProductImageModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}

// ProductImageModel mirrors the 'product_images' table. Position keeps the
// images in the order they were supplied.
type ProductImageModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Position  int       `gorm:"not null"`
	URL       string    `gorm:"type:text;not null"`
	StorageID string    `gorm:"type:varchar(512);not null"`
}

// TableName explicitly sets the table name for GORM.
func (ProductImageModel) TableName() string {
	return "product_images"
}
