package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. It is read-only from the cart's perspective.
type Product struct {
	ID          uuid.UUID      `json:"_id"`
	Name        string         `json:"name"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	SubCategory string         `json:"subCategory"`
	Images      []ProductImage `json:"images"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ProductImage points at an uploaded blob. StorageID is opaque to everything
// except the image store that issued it.
type ProductImage struct {
	URL       string `json:"url"`
	StorageID string `json:"publicId"`
}

// NormalizeCategory trims and lowercases category and subcategory names so
// that filters match regardless of how they were typed.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ImageStorageIDs lists the storage ids of the product's images.
func (p *Product) ImageStorageIDs() []string {
	ids := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img.StorageID != "" {
			ids = append(ids, img.StorageID)
		}
	}

	return ids
}
