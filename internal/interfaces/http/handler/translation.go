package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	l10napp "github.com/statyba/storefront/internal/application/localization"
	"github.com/statyba/storefront/internal/domain/localization"
)

// TranslationService edits per-locale content of catalog records
type TranslationService interface {
	Locales() *localization.Locales
	Upsert(ctx context.Context, entityType string, entityID uuid.UUID, locale string, fields map[string]string) (*l10napp.EntityTranslations, error)
	Delete(ctx context.Context, entityType string, entityID uuid.UUID, locale string) error
	ListFor(ctx context.Context, entityType string, entityID uuid.UUID) (*l10napp.EntityTranslations, error)
}

// TranslationHandler handles the back-office translation endpoints
type TranslationHandler struct {
	BaseHandler
	translations TranslationService
}

// NewTranslationHandler creates a new TranslationHandler
func NewTranslationHandler(translations TranslationService) *TranslationHandler {
	return &TranslationHandler{translations: translations}
}

// UpsertTranslationRequest carries translated field values of one locale
type UpsertTranslationRequest struct {
	Fields map[string]string `json:"fields" binding:"required,min=1"`
}

// LocalesResponse lists the store languages
type LocalesResponse struct {
	Default   string   `json:"default"`
	Supported []string `json:"supported"`
}

// Locales lists the supported store locales.
// @Summary      List store locales
// @Tags         locales
// @Produce      json
// @Success      200 {object} dto.Response{data=LocalesResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/locales [get]
func (h *TranslationHandler) Locales(c *gin.Context) {
	locales := h.translations.Locales()
	h.Success(c, LocalesResponse{Default: locales.Default(), Supported: locales.Supported()})
}

// List returns every translation of a record.
// @Summary      List translations of a record
// @Tags         admin-translations
// @Produce      json
// @Param        entity path string true "Record type" Enums(product, brand, category, collection)
// @Param        id path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=l10napp.EntityTranslations}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/translations/{entity}/{id} [get]
func (h *TranslationHandler) List(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	result, err := h.translations.ListFor(c.Request.Context(), c.Param("entity"), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Upsert writes the translated fields of one locale.
// @Summary      Write translations
// @Tags         admin-translations
// @Accept       json
// @Produce      json
// @Param        entity path string true "Record type" Enums(product, brand, category, collection)
// @Param        id path string true "Record ID" format(uuid)
// @Param        locale path string true "Locale code"
// @Param        request body UpsertTranslationRequest true "Translated field values"
// @Success      200 {object} dto.Response{data=l10napp.EntityTranslations}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/translations/{entity}/{id}/{locale} [put]
func (h *TranslationHandler) Upsert(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req UpsertTranslationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.translations.Upsert(c.Request.Context(), c.Param("entity"), id, c.Param("locale"), req.Fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete removes every translated field of one locale.
// @Summary      Delete translations
// @Tags         admin-translations
// @Produce      json
// @Param        entity path string true "Record type" Enums(product, brand, category, collection)
// @Param        id path string true "Record ID" format(uuid)
// @Param        locale path string true "Locale code"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/translations/{entity}/{id}/{locale} [delete]
func (h *TranslationHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.translations.Delete(c.Request.Context(), c.Param("entity"), id, c.Param("locale")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
