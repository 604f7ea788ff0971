package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/localization"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTranslationRepository implements localization.TranslationRepository using GORM
type GormTranslationRepository struct {
	db *gorm.DB
}

// NewGormTranslationRepository creates a new GormTranslationRepository
func NewGormTranslationRepository(db *gorm.DB) *GormTranslationRepository {
	return &GormTranslationRepository{db: db}
}

func (r *GormTranslationRepository) Find(ctx context.Context, entityType string, entityIDs []uuid.UUID, locales []string) ([]localization.Translation, error) {
	if len(entityIDs) == 0 || len(locales) == 0 {
		return []localization.Translation{}, nil
	}
	var rows []localization.Translation
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id IN ? AND locale IN ?", entityType, entityIDs, locales).
		Find(&rows).Error
	return rows, err
}

func (r *GormTranslationRepository) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]localization.Translation, error) {
	var rows []localization.Translation
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("locale ASC, field ASC").
		Find(&rows).Error
	return rows, err
}

// FindEntityBySlug resolves a translated slug to the owning entity
func (r *GormTranslationRepository) FindEntityBySlug(ctx context.Context, entityType, locale, slug string) (uuid.UUID, error) {
	var row localization.Translation
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND locale = ? AND field = ? AND value = ?", entityType, locale, "slug", slug).
		First(&row).Error
	if err != nil {
		return uuid.Nil, translate(err)
	}
	return row.EntityID, nil
}

// Upsert inserts translations or overwrites the value of existing keys
func (r *GormTranslationRepository) Upsert(ctx context.Context, translations []localization.Translation) error {
	if len(translations) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range translations {
		translations[i].UpdatedAt = now
	}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "entity_type"}, {Name: "entity_id"}, {Name: "locale"}, {Name: "field"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&translations).Error)
}

// DeleteForEntity removes translations of an entity; an empty locale removes all locales
func (r *GormTranslationRepository) DeleteForEntity(ctx context.Context, entityType string, entityID uuid.UUID, locale string) error {
	query := r.db.WithContext(ctx).Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if locale != "" {
		query = query.Where("locale = ?", locale)
	}
	return query.Delete(&localization.Translation{}).Error
}
