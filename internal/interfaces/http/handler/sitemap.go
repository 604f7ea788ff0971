package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	sitemapapp "github.com/statyba/storefront/internal/application/sitemap"
)

// SitemapService renders sitemap documents
type SitemapService interface {
	IndexXML(ctx context.Context) ([]byte, error)
	SectionXML(ctx context.Context, section sitemapapp.Section) ([]byte, error)
}

const xmlContentType = "application/xml; charset=utf-8"

// SitemapHandler serves the sitemap index and its section files
type SitemapHandler struct {
	BaseHandler
	sitemaps SitemapService
}

// NewSitemapHandler creates a new SitemapHandler
func NewSitemapHandler(sitemaps SitemapService) *SitemapHandler {
	return &SitemapHandler{sitemaps: sitemaps}
}

// Index serves the sitemap index.
// @Summary      Get the sitemap index
// @Tags         sitemaps
// @Produce      xml
// @Success      200 {string} string
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sitemap.xml [get]
func (h *SitemapHandler) Index(c *gin.Context) {
	data, err := h.sitemaps.IndexXML(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, xmlContentType, data)
}

// Section serves one section file such as products.xml.
// @Summary      Get a sitemap section
// @Tags         sitemaps
// @Produce      xml
// @Param        file path string true "Section file" Enums(pages.xml, categories.xml, brands.xml, collections.xml, products.xml)
// @Success      200 {string} string
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      504 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sitemaps/{file} [get]
func (h *SitemapHandler) Section(c *gin.Context) {
	name, ok := strings.CutSuffix(c.Param("file"), ".xml")
	if !ok {
		h.NotFound(c, "Sitemap not found")
		return
	}
	section, err := sitemapapp.ParseSection(name)
	if err != nil {
		h.NotFound(c, "Sitemap not found")
		return
	}
	data, err := h.sitemaps.SectionXML(c.Request.Context(), section)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, xmlContentType, data)
}
