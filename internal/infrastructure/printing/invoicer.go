package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/statyba/storefront/internal/domain/order"
	"go.uber.org/zap"
)

const invoiceURLExpiry = 24 * time.Hour

// ObjectStore is the subset of object storage the invoicer writes to
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Invoice is a rendered invoice document
type Invoice struct {
	PDF []byte
	// Key and URL are set only when the invoice was stored
	Key string
	URL string
}

// Invoicer renders order invoices and optionally archives them
type Invoicer struct {
	renderer PDFRenderer
	template *InvoiceTemplate
	store    ObjectStore
	seller   Seller
	logger   *zap.Logger
}

// NewInvoicer creates an invoicer. A nil store disables archiving.
func NewInvoicer(renderer PDFRenderer, tmpl *InvoiceTemplate, store ObjectStore, seller Seller, logger *zap.Logger) *Invoicer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoicer{renderer: renderer, template: tmpl, store: store, seller: seller, logger: logger}
}

// InvoiceKey is the object key an order's invoice is stored under
func InvoiceKey(number string) string {
	return fmt.Sprintf("invoices/%s.pdf", number)
}

// Generate renders the invoice for o in locale (the order's locale when empty)
func (i *Invoicer) Generate(ctx context.Context, o *order.Order, locale string) (*Invoice, error) {
	data := InvoiceFromOrder(o, i.seller, locale)
	doc, err := i.template.Render(data)
	if err != nil {
		return nil, err
	}

	result, err := i.renderer.Render(ctx, &RenderRequest{
		HTML:      doc,
		PaperSize: PaperSizeA4,
		Margins:   DefaultMargins(),
		Title:     o.Number,
	})
	if err != nil {
		return nil, err
	}

	inv := &Invoice{PDF: result.PDFData}
	if i.store == nil {
		return inv, nil
	}

	key := InvoiceKey(o.Number)
	if err := i.store.Upload(ctx, key, result.PDFData, "application/pdf"); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to store invoice", err)
	}
	url, _, err := i.store.GenerateDownloadURL(ctx, key, invoiceURLExpiry)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to sign invoice url", err)
	}
	inv.Key = key
	inv.URL = url

	i.logger.Info("Invoice generated",
		zap.String("order_number", o.Number),
		zap.String("key", key),
		zap.Duration("render_duration", result.RenderDuration),
	)
	return inv, nil
}
