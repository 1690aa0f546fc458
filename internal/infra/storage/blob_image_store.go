// Package storage keeps product images in a gocloud.dev blob bucket.
package storage

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path"
	"strconv"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	"storefront/internal/domain/lifecycle"
	"storefront/internal/domain/service"
	"storefront/internal/errors"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

var (
	// ErrImageTooLarge is returned when an upload exceeds the configured size.
	ErrImageTooLarge = errors.Wrap(service.ErrImageRejected, "image exceeds maximum size")
	// ErrUnsupportedImageType is returned for uploads that are not images.
	ErrUnsupportedImageType = errors.Wrap(service.ErrImageRejected, "unsupported image type")
	// ErrImageNotFound is returned by Open for unknown storage ids.
	ErrImageNotFound = service.ErrImageNotFound
)

// Params defines the dependencies of the blob image store.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// BlobImageStore implements service.ImageStore on top of a blob bucket.
type BlobImageStore struct {
	bucket        *blob.Bucket
	publicBaseURL string
	folder        string
	maxSize       int64
	now           func() time.Time
}

var (
	_ service.ImageStore  = (*BlobImageStore)(nil)
	_ service.ImageReader = (*BlobImageStore)(nil)
)

// New opens the configured bucket and closes it when the app stops.
func New(params Params) (*BlobImageStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancel()

	bucket, err := blob.OpenBucket(ctx, params.Config.Storage.BucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open image bucket %q", params.Config.Storage.BucketURL)
	}

	store := NewWithBucket(bucket, params.Config.Storage)

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			params.Logger.Info("Closing image bucket")

			return bucket.Close()
		},
	})

	return store, nil
}

// NewWithBucket wraps an already opened bucket.
func NewWithBucket(bucket *blob.Bucket, cfg config.StorageConfig) *BlobImageStore {
	return &BlobImageStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		folder:        strings.Trim(cfg.Folder, "/"),
		maxSize:       cfg.MaxImageSize,
		now:           time.Now,
	}
}

// Upload writes the image under folder/yyyy/m/d/<uuid><ext> and returns its public URL.
func (s *BlobImageStore) Upload(ctx context.Context, upload service.ImageUpload) (entity.ProductImage, error) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(upload.Filename))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return entity.ProductImage{}, errors.Wrapf(ErrUnsupportedImageType, "%q", contentType)
	}
	if s.maxSize > 0 && upload.Size > s.maxSize {
		return entity.ProductImage{}, s.tooLarge()
	}

	key := s.storageKey(upload.Filename)

	writeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := s.bucket.NewWriter(writeCtx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return entity.ProductImage{}, errors.Wrap(err, "open blob writer")
	}

	body := upload.Body
	if s.maxSize > 0 {
		body = io.LimitReader(upload.Body, s.maxSize+1)
	}

	written, copyErr := io.Copy(w, body)
	if copyErr == nil && s.maxSize > 0 && written > s.maxSize {
		copyErr = ErrImageTooLarge
	}
	if copyErr != nil {
		// Cancelling the writer's context before Close discards the object.
		cancel()
		_ = w.Close()

		if errors.Is(copyErr, ErrImageTooLarge) {
			return entity.ProductImage{}, s.tooLarge()
		}

		return entity.ProductImage{}, errors.Wrap(copyErr, "write blob")
	}

	if err := w.Close(); err != nil {
		return entity.ProductImage{}, errors.Wrap(err, "close blob writer")
	}

	return entity.ProductImage{
		URL:       s.publicURL(key),
		StorageID: key,
	}, nil
}

// Delete removes the object. A missing object is not an error.
func (s *BlobImageStore) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}

	if err := s.bucket.Delete(ctx, storageID); err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil
		}

		return errors.Wrapf(err, "delete blob %q", storageID)
	}

	return nil
}

// Open streams a stored image back, for serving media from the bucket directly.
func (s *BlobImageStore) Open(ctx context.Context, storageID string) (io.ReadCloser, string, error) {
	r, err := s.bucket.NewReader(ctx, storageID, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, "", ErrImageNotFound
		}

		return nil, "", errors.Wrapf(err, "open blob %q", storageID)
	}

	return r, r.ContentType(), nil
}

func (s *BlobImageStore) tooLarge() error {
	return errors.Wrapf(ErrImageTooLarge, "limit is %s", util.FormatBytes(s.maxSize))
}

func (s *BlobImageStore) storageKey(filename string) string {
	now := s.now().UTC()
	name := uuid.NewString() + strings.ToLower(path.Ext(filename))

	return path.Join(
		s.folder,
		strconv.Itoa(now.Year()),
		strconv.Itoa(int(now.Month())),
		strconv.Itoa(now.Day()),
		name,
	)
}

func (s *BlobImageStore) publicURL(key string) string {
	if s.publicBaseURL == "" {
		return "/media/" + key
	}

	return s.publicBaseURL + "/" + key
}
