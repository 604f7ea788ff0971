// Package localization resolves and manages translated catalog content.
package localization

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
)

// Service resolves translations along the locale fallback chain
type Service struct {
	repo    localization.TranslationRepository
	locales *localization.Locales
}

// NewService creates a new localization Service
func NewService(repo localization.TranslationRepository, locales *localization.Locales) *Service {
	return &Service{repo: repo, locales: locales}
}

// Locales returns the configured locale set
func (s *Service) Locales() *localization.Locales {
	return s.locales
}

// Resolve returns the translated fields of every entity in ids for locale.
// Entities without any translation are absent from the result; callers fall
// back to the base column values through Values.Get.
func (s *Service) Resolve(ctx context.Context, entityType string, ids []uuid.UUID, locale string) (map[uuid.UUID]localization.Values, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]localization.Values{}, nil
	}
	chain := s.locales.FallbackChain(locale)
	// the default locale is stored in the base columns, translations in it are ignored
	if chain[0] == s.locales.Default() {
		return map[uuid.UUID]localization.Values{}, nil
	}

	rows, err := s.repo.Find(ctx, entityType, ids, chain)
	if err != nil {
		return nil, err
	}
	return localization.Pick(rows, chain), nil
}

// ResolveOne is Resolve for a single entity
func (s *Service) ResolveOne(ctx context.Context, entityType string, id uuid.UUID, locale string) (localization.Values, error) {
	all, err := s.Resolve(ctx, entityType, []uuid.UUID{id}, locale)
	if err != nil {
		return nil, err
	}
	return all[id], nil
}

// FindEntityBySlug resolves a localized slug to the entity it belongs to
func (s *Service) FindEntityBySlug(ctx context.Context, entityType, locale, slug string) (uuid.UUID, error) {
	if !s.locales.IsSupported(locale) || locale == s.locales.Default() {
		return uuid.Nil, shared.ErrNotFound
	}
	return s.repo.FindEntityBySlug(ctx, entityType, locale, slug)
}

// Upsert stores the given field values of one entity in locale.
// A blank value clears the translation so the base value shows again.
func (s *Service) Upsert(ctx context.Context, entityType string, entityID uuid.UUID, locale string, fields map[string]string) (*EntityTranslations, error) {
	if !s.locales.IsSupported(locale) {
		return nil, shared.NewDomainError("UNSUPPORTED_LOCALE", "Locale "+locale+" is not enabled for this store")
	}
	if s.locales.FallbackChain(locale)[0] == s.locales.Default() {
		return nil, shared.NewDomainError("DEFAULT_LOCALE", "Default locale content is edited on the record itself")
	}
	if len(fields) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one field is required")
	}

	rows := make([]localization.Translation, 0, len(fields))
	for field, value := range fields {
		t, err := localization.NewTranslation(entityType, entityID, locale, field, value)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *t)
	}
	if err := s.repo.Upsert(ctx, rows); err != nil {
		return nil, err
	}
	return s.ListFor(ctx, entityType, entityID)
}

// Delete removes every translation of an entity in locale
func (s *Service) Delete(ctx context.Context, entityType string, entityID uuid.UUID, locale string) error {
	if _, ok := localization.TranslatableFields[entityType]; !ok {
		return shared.NewDomainError("INVALID_ENTITY", "Unknown translatable entity type: "+entityType)
	}
	return s.repo.DeleteForEntity(ctx, entityType, entityID, locale)
}

// ListFor returns all stored translations of an entity grouped by locale
func (s *Service) ListFor(ctx context.Context, entityType string, entityID uuid.UUID) (*EntityTranslations, error) {
	if _, ok := localization.TranslatableFields[entityType]; !ok {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Unknown translatable entity type: "+entityType)
	}
	rows, err := s.repo.ListForEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	out := &EntityTranslations{
		EntityType: entityType,
		EntityID:   entityID,
		Fields:     localization.TranslatableFields[entityType],
		Locales:    make(map[string]map[string]string),
	}
	for _, row := range rows {
		byField := out.Locales[row.Locale]
		if byField == nil {
			byField = make(map[string]string)
			out.Locales[row.Locale] = byField
		}
		byField[row.Field] = row.Value
	}
	return out, nil
}

// EntityTranslations lists the translations of one entity
type EntityTranslations struct {
	EntityType string                       `json:"entity_type"`
	EntityID   uuid.UUID                    `json:"entity_id"`
	Fields     []string                     `json:"fields"`
	Locales    map[string]map[string]string `json:"locales"`
}

// LocaleCodes returns the locales that have at least one translation, sorted
func (e *EntityTranslations) LocaleCodes() []string {
	codes := make([]string, 0, len(e.Locales))
	for code := range e.Locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
