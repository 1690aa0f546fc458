package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"storefront/internal/delivery/api/response"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/service"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	imagesField         = "images"
	deleteImageIDsField = "deleteImageIds"
)

// AdminProductHandlerParams holds dependencies for AdminProductHandler, injected by Fx.
type AdminProductHandlerParams struct {
	fx.In

	ProductUC usecase.ProductUsecase
	Logger    *slog.Logger
}

// AdminProductHandler serves catalog administration. Its routes require the admin role.
type AdminProductHandler struct {
	productUC usecase.ProductUsecase
	logger    *slog.Logger
}

// NewAdminProductHandler is the constructor for AdminProductHandler.
func NewAdminProductHandler(params AdminProductHandlerParams) *AdminProductHandler {
	return &AdminProductHandler{
		productUC: params.ProductUC,
		logger:    params.Logger,
	}
}

// CreateProductForm holds the text fields of a multipart product upload.
type CreateProductForm struct {
	Name        string  `form:"name" validate:"required"`
	Price       float64 `form:"price" validate:"gt=0"`
	Description string  `form:"description"`
	Category    string  `form:"category"`
	SubCategory string  `form:"subCategory"`
}

// UpdateProductRequest is a partial update; omitted fields keep their value.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	SubCategory *string  `json:"subCategory"`
}

// Create stores a product with the images sent in the "images" field.
func (h *AdminProductHandler) Create(c echo.Context) error {
	var form CreateProductForm
	if err := c.Bind(&form); err != nil {
		return response.BindingError(c, "Invalid product input")
	}
	if err := c.Validate(&form); err != nil {
		return errors.WithStack(err)
	}

	images, closeAll, err := imageUploads(c)
	if err != nil {
		return err
	}
	defer closeAll()

	product, err := h.productUC.Create(c.Request().Context(), &usecase.CreateProductInput{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Category:    form.Category,
		SubCategory: form.SubCategory,
		Images:      images,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.SuccessWithMessage(c, http.StatusCreated, product, "Product created")
}

// UpdateDetails applies a partial JSON update to the text and price fields.
func (h *AdminProductHandler) UpdateDetails(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid product input")
	}

	product, err := h.productUC.UpdateDetails(c.Request().Context(), &usecase.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		SubCategory: req.SubCategory,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product)
}

// UpdateImages removes the images listed in "deleteImageIds" and appends the
// files sent in "images".
func (h *AdminProductHandler) UpdateImages(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.BindingError(c, "Expected a multipart form")
	}
	deleteIDs, err := deleteImageIDs(form.Value[deleteImageIDsField])
	if err != nil {
		return err
	}

	images, closeAll, err := imageUploads(c)
	if err != nil {
		return err
	}
	defer closeAll()

	product, err := h.productUC.UpdateImages(c.Request().Context(), &usecase.UpdateProductImagesInput{
		ID:               id,
		DeleteStorageIDs: deleteIDs,
		NewImages:        images,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, product)
}

// Delete removes a product and its images.
func (h *AdminProductHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if id == uuid.Nil {
		return domainerrors.ErrValidationFailed.WithDetails("id is required")
	}

	if err := h.productUC.Delete(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.SuccessWithMessage(c, http.StatusOK, nil, "Product deleted")
}

// deleteImageIDs accepts repeated form values as well as one JSON encoded array.
func deleteImageIDs(values []string) ([]string, error) {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var ids []string
		if err := json.Unmarshal([]byte(values[0]), &ids); err != nil {
			return nil, domainerrors.ErrValidationFailed.WithDetails(deleteImageIDsField + " must be a list of ids")
		}

		return ids, nil
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			ids = append(ids, v)
		}
	}

	return ids, nil
}

// imageUploads opens every file of the images field. The returned func closes them.
func imageUploads(c echo.Context) ([]service.ImageUpload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}

		return nil, noop, domainerrors.ErrValidationFailed.WithDetails("malformed multipart form")
	}

	headers := form.File[imagesField]
	files := make([]io.Closer, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]service.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()

			return nil, noop, errors.Wrap(err, "open uploaded image")
		}
		files = append(files, f)
		uploads = append(uploads, imageUpload(fh, f))
	}

	return uploads, closeAll, nil
}

func imageUpload(fh *multipart.FileHeader, body multipart.File) service.ImageUpload {
	contentType := fh.Header.Get(echo.HeaderContentType)
	// Generic types are resolved from the file extension by the store.
	if contentType == echo.MIMEOctetStream {
		contentType = ""
	}

	return service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        body,
	}
}
