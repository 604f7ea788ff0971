package localization

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/shared"
)

// Translatable entity types
const (
	EntityProduct    = "product"
	EntityBrand      = "brand"
	EntityCategory   = "category"
	EntityCollection = "collection"
)

// TranslatableFields lists which fields each entity type accepts translations for
var TranslatableFields = map[string][]string{
	EntityProduct:    {"name", "slug", "description", "short_description", "seo_title", "seo_description"},
	EntityBrand:      {"name", "slug", "description"},
	EntityCategory:   {"name", "slug", "description"},
	EntityCollection: {"name", "slug", "description"},
}

// Translation is one localized value of one field of one entity
type Translation struct {
	shared.BaseEntity
	EntityType string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_translation_key,priority:1"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_translation_key,priority:2"`
	Locale     string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_translation_key,priority:3"`
	Field      string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_translation_key,priority:4"`
	Value      string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Translation) TableName() string {
	return "translations"
}

// NewTranslation validates and creates a translation
func NewTranslation(entityType string, entityID uuid.UUID, locale, field, value string) (*Translation, error) {
	if err := ValidateField(entityType, field); err != nil {
		return nil, err
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID is required")
	}
	code, err := canonical(locale)
	if err != nil {
		return nil, err
	}
	return &Translation{
		BaseEntity: shared.NewBaseEntity(),
		EntityType: entityType,
		EntityID:   entityID,
		Locale:     code,
		Field:      field,
		Value:      value,
	}, nil
}

// ValidateField checks that field is translatable on entityType
func ValidateField(entityType, field string) error {
	fields, ok := TranslatableFields[entityType]
	if !ok {
		return shared.NewDomainError("INVALID_ENTITY", "Unknown translatable entity type: "+entityType)
	}
	for _, f := range fields {
		if f == field {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_FIELD", "Field "+field+" is not translatable for "+entityType)
}

// Values maps field name to localized value for one entity
type Values map[string]string

// Get returns the localized value of field, or fallback when none applies
func (v Values) Get(field, fallback string) string {
	if v == nil {
		return fallback
	}
	if s, ok := v[field]; ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

// Pick resolves translations along chain: for each entity and field, the value
// of the earliest locale in chain wins. Blank values count as missing.
func Pick(rows []Translation, chain []string) map[uuid.UUID]Values {
	rank := make(map[string]int, len(chain))
	for i, c := range chain {
		rank[c] = i
	}

	type best struct {
		rank  int
		value string
	}
	picked := make(map[uuid.UUID]map[string]best)
	for _, row := range rows {
		r, ok := rank[row.Locale]
		if !ok || strings.TrimSpace(row.Value) == "" {
			continue
		}
		fields := picked[row.EntityID]
		if fields == nil {
			fields = make(map[string]best)
			picked[row.EntityID] = fields
		}
		if cur, ok := fields[row.Field]; !ok || r < cur.rank {
			fields[row.Field] = best{rank: r, value: row.Value}
		}
	}

	out := make(map[uuid.UUID]Values, len(picked))
	for id, fields := range picked {
		values := make(Values, len(fields))
		for f, b := range fields {
			values[f] = b.value
		}
		out[id] = values
	}
	return out
}

// TranslationRepository persists translations
type TranslationRepository interface {
	// Find returns translations of the given entities in any of locales
	Find(ctx context.Context, entityType string, entityIDs []uuid.UUID, locales []string) ([]Translation, error)
	ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]Translation, error)
	// FindEntityBySlug resolves a localized slug back to its entity
	FindEntityBySlug(ctx context.Context, entityType, locale, slug string) (uuid.UUID, error)
	Upsert(ctx context.Context, translations []Translation) error
	DeleteForEntity(ctx context.Context, entityType string, entityID uuid.UUID, locale string) error
}
