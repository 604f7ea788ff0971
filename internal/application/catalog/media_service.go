package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AllowedImageTypes is the whitelist of image content types with their file extension.
// SVG is not accepted since it can carry scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// MediaServiceConfig holds limits for uploaded media
type MediaServiceConfig struct {
	// MaxImageBytes is the largest accepted upload
	MaxImageBytes int64
	// MaxImagesPerProduct is the maximum number of images per product
	MaxImagesPerProduct int
}

// DefaultMediaServiceConfig returns the default configuration
func DefaultMediaServiceConfig() MediaServiceConfig {
	return MediaServiceConfig{
		MaxImageBytes:       10 << 20,
		MaxImagesPerProduct: 20,
	}
}

// MediaService stores product images and brand logos in object storage
type MediaService struct {
	eventPublishing
	productRepo catalog.ProductRepository
	brandRepo   catalog.BrandRepository
	storage     ObjectStorage
	config      MediaServiceConfig
	logger      *zap.Logger
}

// NewMediaService creates a new MediaService
func NewMediaService(
	productRepo catalog.ProductRepository,
	brandRepo catalog.BrandRepository,
	storage ObjectStorage,
	logger *zap.Logger,
) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{
		productRepo: productRepo,
		brandRepo:   brandRepo,
		storage:     storage,
		config:      DefaultMediaServiceConfig(),
		logger:      logger,
	}
}

// SetConfig sets the service configuration
func (s *MediaService) SetConfig(config MediaServiceConfig) {
	s.config = config
}

// UploadProductImage stores an image and appends it to the product gallery
func (s *MediaService) UploadProductImage(ctx context.Context, productID uuid.UUID, req UploadImageRequest) (*ImageResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "media", "upload_product_image", telemetry.AttrProductID, productID.String())
	defer span.End()

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	if len(product.Images) >= s.config.MaxImagesPerProduct {
		return nil, shared.NewDomainError("IMAGE_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d images per product allowed", s.config.MaxImagesPerProduct))
	}

	contentType, ext, err := s.validateImage(req)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, uuid.New(), ext)
	if err := s.storage.Upload(ctx, key, req.Data, contentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store image")
	}

	image, err := product.AddImage(key, s.storage.URL(key), strings.TrimSpace(req.AltText), contentType, int64(len(req.Data)))
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	resp := ToImageResponse(image)

	if err := s.productRepo.Save(ctx, product); err != nil {
		// the object would otherwise be orphaned
		s.discard(ctx, key)
		return nil, err
	}
	s.publishDomainEvents(ctx, product)
	return &resp, nil
}

// UpdateProductImage changes the alternative text or primary flag of an image
func (s *MediaService) UpdateProductImage(ctx context.Context, productID, imageID uuid.UUID, req UpdateImageRequest) ([]ImageResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if req.AltText != nil {
		if err := product.UpdateImageAlt(imageID, strings.TrimSpace(*req.AltText)); err != nil {
			return nil, err
		}
	}
	if req.IsPrimary {
		if err := product.SetPrimaryImage(imageID); err != nil {
			return nil, err
		}
	}
	return s.saveImages(ctx, product)
}

// ReorderProductImages sets the display order of all images of a product
func (s *MediaService) ReorderProductImages(ctx context.Context, productID uuid.UUID, req ReorderImagesRequest) ([]ImageResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.ReorderImages(req.ImageIDs); err != nil {
		return nil, err
	}
	return s.saveImages(ctx, product)
}

// DeleteProductImage removes an image from the product and from storage
func (s *MediaService) DeleteProductImage(ctx context.Context, productID, imageID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	removed, err := product.RemoveImage(imageID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return err
	}
	s.publishDomainEvents(ctx, product)
	s.discard(ctx, removed.StorageKey)
	return nil
}

// UploadBrandLogo stores a brand logo, replacing the previous one
func (s *MediaService) UploadBrandLogo(ctx context.Context, brandID uuid.UUID, req UploadImageRequest) (*BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	contentType, ext, err := s.validateImage(req)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("brands/%s/%s%s", brandID, uuid.New(), ext)
	if err := s.storage.Upload(ctx, key, req.Data, contentType); err != nil {
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store image")
	}

	previous := brand.LogoKey
	brand.SetLogo(key)
	if err := s.brandRepo.Save(ctx, brand); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	s.publishDomainEvents(ctx, brand)
	if previous != "" {
		s.discard(ctx, previous)
	}

	resp := ToBrandResponse(brand, s.storage.URL(key), nil)
	return &resp, nil
}

// validateImage checks size and type. The declared content type must match
// the sniffed one so a renamed executable is refused.
func (s *MediaService) validateImage(req UploadImageRequest) (string, string, error) {
	if len(req.Data) == 0 {
		return "", "", shared.NewDomainError("EMPTY_FILE", "Uploaded file is empty")
	}
	if int64(len(req.Data)) > s.config.MaxImageBytes {
		return "", "", shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("Image cannot exceed %d MiB", s.config.MaxImageBytes>>20))
	}

	sniffed := http.DetectContentType(req.Data)
	ext, ok := AllowedImageTypes[sniffed]
	if !ok {
		return "", "", shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: JPEG, PNG, WebP and GIF.", sniffed))
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(req.ContentType, ";")[0]))
	if declared != "" && declared != "application/octet-stream" && declared != sniffed {
		return "", "", shared.NewDomainError("INVALID_CONTENT_TYPE", "File content does not match its declared type")
	}
	if fileExt := strings.ToLower(filepath.Ext(req.Filename)); fileExt == ".jpeg" && sniffed == "image/jpeg" {
		ext = fileExt
	}
	return sniffed, ext, nil
}

func (s *MediaService) saveImages(ctx context.Context, product *catalog.Product) ([]ImageResponse, error) {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	images := make([]ImageResponse, len(product.Images))
	for i := range product.Images {
		images[i] = ToImageResponse(&product.Images[i])
	}
	return images, nil
}

func (s *MediaService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
	}
}
