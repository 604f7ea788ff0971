package printing

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/order"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Seller identifies the issuing company
type Seller struct {
	Name string
	VAT  string
}

// InvoiceLine is one row of the invoice table
type InvoiceLine struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// InvoiceData is everything the invoice template shows
type InvoiceData struct {
	Number     string
	Status     string
	PlacedAt   time.Time
	Locale     string
	Currency   string
	Email      string
	Seller     Seller
	BillTo     order.Address
	ShipTo     order.Address
	Lines      []InvoiceLine
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// InvoiceFromOrder maps a placed order to invoice data. An empty billing
// address falls back to the shipping address.
func InvoiceFromOrder(o *order.Order, seller Seller, locale string) InvoiceData {
	if locale == "" {
		locale = o.Locale
	}
	billTo := o.BillingAddress
	if billTo.IsZero() {
		billTo = o.ShippingAddress
	}
	lines := make([]InvoiceLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, InvoiceLine{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return InvoiceData{
		Number:     o.Number,
		Status:     string(o.Status),
		PlacedAt:   o.PlacedAt,
		Locale:     locale,
		Currency:   string(o.Currency),
		Email:      o.Email,
		Seller:     seller,
		BillTo:     billTo,
		ShipTo:     o.ShippingAddress,
		Lines:      lines,
		Subtotal:   o.Subtotal,
		Shipping:   o.ShippingTotal,
		Discount:   o.DiscountTotal,
		GrandTotal: o.GrandTotal,
	}
}

// InvoiceTemplate renders invoice HTML in the invoice's locale
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the embedded invoice template
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	// placeholders so Parse accepts the calls; Render swaps in locale-bound versions
	tmpl, err := template.New("invoice.html.tmpl").Funcs(localeFuncs("en", "")).ParseFS(templateFS, "templates/invoice.html.tmpl")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse invoice template", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Render executes the template for data
func (t *InvoiceTemplate) Render(data InvoiceData) (string, error) {
	tmpl, err := t.tmpl.Clone()
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to clone invoice template", err)
	}
	tmpl.Funcs(localeFuncs(data.Locale, data.Currency))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to render invoice", err)
	}
	return buf.String(), nil
}

func localeFuncs(locale, currency string) template.FuncMap {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	return template.FuncMap{
		"t": func(key string) string { return label(locale, key) },
		"money": func(d decimal.Decimal) string {
			amount := printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
			if currency == "" {
				return amount
			}
			return amount + " " + currency
		},
		"date": func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	}
}
