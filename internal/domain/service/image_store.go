package service

import (
	"context"
	"errors"
	"io"

	"storefront/internal/domain/entity"
)

// ErrImageRejected marks uploads refused for their content, as opposed to
// failures of the store itself.
var ErrImageRejected = errors.New("image rejected")

// ErrImageNotFound is returned when reading an image that is not stored.
var ErrImageNotFound = errors.New("image not found")

// ImageUpload is a single image handed to the store.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore is the opaque media host for product images.
type ImageStore interface {
	// Upload stores the image and returns its public URL and storage id.
	Upload(ctx context.Context, upload ImageUpload) (entity.ProductImage, error)

	// Delete removes a previously uploaded image. Deleting a missing image is not an error.
	Delete(ctx context.Context, storageID string) error
}

// ImageReader streams stored images back for the media route.
type ImageReader interface {
	// Open returns the image body and its content type, or ErrImageNotFound.
	Open(ctx context.Context, storageID string) (io.ReadCloser, string, error)
}
