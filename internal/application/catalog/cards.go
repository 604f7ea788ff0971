package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/inventory"
	"github.com/statyba/storefront/internal/domain/localization"
)

// StockLookup reports stock levels for product listings
type StockLookup interface {
	FindByProducts(ctx context.Context, productIDs []uuid.UUID) ([]inventory.StockItem, error)
}

// cardBuilder turns products into localized listing cards
type cardBuilder struct {
	stock      StockLookup
	translator Translator
	currency   string
}

func (b *cardBuilder) inStock(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if b.stock == nil || len(ids) == 0 {
		return out, nil
	}
	items, err := b.stock.FindByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		out[items[i].ProductID] = items[i].CanFulfill(1)
	}
	return out, nil
}

// cards returns one card per product, in input order
func (b *cardBuilder) cards(ctx context.Context, products []catalog.Product, locale string) ([]ProductCard, error) {
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	stock, err := b.inStock(ctx, ids)
	if err != nil {
		return nil, err
	}
	values, err := b.translator.Resolve(ctx, localization.EntityProduct, ids, locale)
	if err != nil {
		return nil, err
	}

	out := make([]ProductCard, len(products))
	for i := range products {
		out[i] = ToProductCard(&products[i], b.currency, values[products[i].ID], stock[products[i].ID])
	}
	return out, nil
}
