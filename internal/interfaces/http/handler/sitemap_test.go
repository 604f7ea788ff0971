package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	sitemapapp "github.com/statyba/storefront/internal/application/sitemap"
	"github.com/statyba/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSitemapService struct {
	mock.Mock
}

func (m *mockSitemapService) IndexXML(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockSitemapService) SectionXML(ctx context.Context, section sitemapapp.Section) ([]byte, error) {
	args := m.Called(ctx, section)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func TestSitemapHandler(t *testing.T) {
	index := []byte(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex></sitemapindex>`)
	products := []byte(`<?xml version="1.0" encoding="UTF-8"?><urlset></urlset>`)

	svc := new(mockSitemapService)
	svc.On("IndexXML", mock.Anything).Return(index, nil)
	svc.On("SectionXML", mock.Anything, sitemapapp.SectionProducts).Return(products, nil)
	svc.On("SectionXML", mock.Anything, sitemapapp.SectionBrands).Return(nil, errors.New("database is gone"))

	h := NewSitemapHandler(svc)
	r := newTestRouter(nil)
	r.GET("/sitemap.xml", h.Index)
	r.GET("/sitemaps/:file", h.Section)

	tests := []struct {
		name   string
		path   string
		status int
		body   []byte
	}{
		{"index", "/sitemap.xml", http.StatusOK, index},
		{"section", "/sitemaps/products.xml", http.StatusOK, products},
		{"unknown section", "/sitemaps/orders.xml", http.StatusNotFound, nil},
		{"missing extension", "/sitemaps/products", http.StatusNotFound, nil},
		{"collection failure", "/sitemaps/brands.xml", http.StatusInternalServerError, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != nil {
				assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
				assert.Equal(t, tt.body, w.Body.Bytes())
			}
		})
	}

	w := perform(r, http.MethodGet, "/sitemaps/orders.xml", nil)
	assertErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	svc.AssertNotCalled(t, "SectionXML", mock.Anything, sitemapapp.Section("orders"))
}
