// Package catalog implements the admin and storefront use cases of the
// product catalog: brands, categories, products, collections and media.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
)

// Translator overlays translated fields on catalog records
type Translator interface {
	Resolve(ctx context.Context, entityType string, ids []uuid.UUID, locale string) (map[uuid.UUID]localization.Values, error)
	FindEntityBySlug(ctx context.Context, entityType, locale, slug string) (uuid.UUID, error)
}

// ObjectStorage stores catalog media
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Clock returns the current time; tests replace it
type Clock func() time.Time

// noTranslations is used when no Translator is configured
type noTranslations struct{}

func (noTranslations) Resolve(context.Context, string, []uuid.UUID, string) (map[uuid.UUID]localization.Values, error) {
	return map[uuid.UUID]localization.Values{}, nil
}

func (noTranslations) FindEntityBySlug(context.Context, string, string, string) (uuid.UUID, error) {
	return uuid.Nil, shared.ErrNotFound
}

func translatorOrDefault(t Translator) Translator {
	if t == nil {
		return noTranslations{}
	}
	return t
}

// eventPublishing is embedded by services that emit catalog change events
type eventPublishing struct {
	eventPublisher shared.EventPublisher
}

// SetEventPublisher sets the event publisher for publishing domain events
func (p *eventPublishing) SetEventPublisher(publisher shared.EventPublisher) {
	p.eventPublisher = publisher
}

func (p *eventPublishing) publishDomainEvents(ctx context.Context, agg shared.AggregateRoot) {
	shared.PublishPending(ctx, p.eventPublisher, agg)
}

func (p *eventPublishing) publish(ctx context.Context, events ...shared.DomainEvent) {
	if p.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = p.eventPublisher.Publish(ctx, events...)
}

// findBySlug looks a record up by its base slug first and then by a slug
// translated into locale.
func findBySlug[T any](
	ctx context.Context,
	translator Translator,
	entityType, locale, slug string,
	bySlug func(context.Context, string) (*T, error),
	byID func(context.Context, uuid.UUID) (*T, error),
) (*T, error) {
	found, err := bySlug(ctx, slug)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, shared.ErrNotFound) || locale == "" {
		return nil, err
	}
	id, err := translator.FindEntityBySlug(ctx, entityType, locale, slug)
	if err != nil {
		return nil, err
	}
	return byID(ctx, id)
}

func toFilter(page, pageSize int, search string) shared.Filter {
	f := shared.DefaultFilter()
	f.Page = page
	f.PageSize = pageSize
	f.Search = search
	return f.Normalize()
}
