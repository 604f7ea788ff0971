package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
)

// MediaService stores product images and brand logos
type MediaService interface {
	UploadProductImage(ctx context.Context, productID uuid.UUID, req catalogapp.UploadImageRequest) (*catalogapp.ImageResponse, error)
	UpdateProductImage(ctx context.Context, productID, imageID uuid.UUID, req catalogapp.UpdateImageRequest) ([]catalogapp.ImageResponse, error)
	ReorderProductImages(ctx context.Context, productID uuid.UUID, req catalogapp.ReorderImagesRequest) ([]catalogapp.ImageResponse, error)
	DeleteProductImage(ctx context.Context, productID, imageID uuid.UUID) error
	UploadBrandLogo(ctx context.Context, brandID uuid.UUID, req catalogapp.UploadImageRequest) (*catalogapp.BrandResponse, error)
}

// MediaHandler handles multipart image uploads
type MediaHandler struct {
	BaseHandler
	media    MediaService
	maxBytes int64
}

// NewMediaHandler creates a new MediaHandler. Uploads above maxBytes are
// rejected before reaching the service.
func NewMediaHandler(media MediaService, maxBytes int64) *MediaHandler {
	if maxBytes <= 0 {
		maxBytes = catalogapp.DefaultMediaServiceConfig().MaxImageBytes
	}
	return &MediaHandler{media: media, maxBytes: maxBytes}
}

var errUploadTooLarge = errors.New("upload too large")

// readUpload reads the "file" form field
func (h *MediaHandler) readUpload(c *gin.Context) (catalogapp.UploadImageRequest, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field \"file\" is required")
		return catalogapp.UploadImageRequest{}, false
	}
	if header.Size > h.maxBytes {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image exceeds the maximum upload size")
		return catalogapp.UploadImageRequest{}, false
	}

	data, err := h.readAll(header)
	if errors.Is(err, errUploadTooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Image exceeds the maximum upload size")
		return catalogapp.UploadImageRequest{}, false
	}
	if err != nil {
		h.BadRequest(c, "Could not read uploaded file")
		return catalogapp.UploadImageRequest{}, false
	}

	return catalogapp.UploadImageRequest{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(data),
		Data:        data,
		AltText:     c.PostForm("alt_text"),
	}, true
}

func (h *MediaHandler) readAll(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxBytes {
		return nil, errUploadTooLarge
	}
	return data, nil
}

// UploadProductImage appends an image to a product gallery.
// @Summary      Upload a product image
// @Tags         admin-media
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        file formData file true "JPEG, PNG, GIF or WebP image"
// @Param        alt_text formData string false "Alternative text"
// @Success      201 {object} dto.Response{data=catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/images [post]
func (h *MediaHandler) UploadProductImage(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}
	image, err := h.media.UploadProductImage(c.Request.Context(), productID, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, image)
}

// UpdateProductImage changes alt text or the primary flag.
// @Summary      Update a product image
// @Tags         admin-media
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        imageId path string true "Image ID" format(uuid)
// @Param        request body catalogapp.UpdateImageRequest true "Alt text or primary flag"
// @Success      200 {object} dto.Response{data=[]catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/images/{imageId} [patch]
func (h *MediaHandler) UpdateProductImage(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(c, "imageId")
	if !ok {
		return
	}
	var req catalogapp.UpdateImageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	images, err := h.media.UpdateProductImage(c.Request.Context(), productID, imageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, images)
}

// ReorderProductImages sets the gallery order.
// @Summary      Reorder product images
// @Tags         admin-media
// @Accept       json
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        request body catalogapp.ReorderImagesRequest true "Every image ID in the new order"
// @Success      200 {object} dto.Response{data=[]catalogapp.ImageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/images/order [put]
func (h *MediaHandler) ReorderProductImages(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ReorderImagesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	images, err := h.media.ReorderProductImages(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, images)
}

// DeleteProductImage removes an image and its stored object.
// @Summary      Delete a product image
// @Tags         admin-media
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        imageId path string true "Image ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/products/{id}/images/{imageId} [delete]
func (h *MediaHandler) DeleteProductImage(c *gin.Context) {
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(c, "imageId")
	if !ok {
		return
	}
	if err := h.media.DeleteProductImage(c.Request.Context(), productID, imageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadBrandLogo replaces a brand logo.
// @Summary      Upload a brand logo
// @Tags         admin-media
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Record ID" format(uuid)
// @Param        file formData file true "JPEG, PNG, GIF or WebP image"
// @Success      200 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/brands/{id}/logo [put]
func (h *MediaHandler) UploadBrandLogo(c *gin.Context) {
	brandID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}
	brand, err := h.media.UploadBrandLogo(c.Request.Context(), brandID, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}
