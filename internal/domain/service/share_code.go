package service

import "github.com/google/uuid"

// ShareCodeService renders scannable links to storefront pages.
type ShareCodeService interface {
	// ProductLink is the storefront page of a product.
	ProductLink(productID uuid.UUID) string

	// ProductQR returns a PNG QR code encoding ProductLink.
	ProductQR(productID uuid.UUID) ([]byte, error)
}
