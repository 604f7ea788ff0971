package persistence

import (
	"errors"

	"github.com/statyba/storefront/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps GORM errors onto domain errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}

// saveVersioned updates model when its stored version matches root.Version
// and bumps the version, or inserts it when no row exists yet. A row with a
// different version yields shared.ErrConcurrencyConflict.
func saveVersioned(tx *gorm.DB, model any, root *shared.BaseAggregateRoot) error {
	expected := root.Version
	root.Version = expected + 1

	res := tx.Model(model).
		Select("*").
		Omit(clause.Associations, "created_at").
		Where("version = ?", expected).
		Updates(model)
	if res.Error != nil {
		root.Version = expected
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	root.Version = expected
	var count int64
	if err := tx.Model(model).Where("id = ?", root.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	// Select("*") keeps false booleans that carry a database default.
	return translate(tx.Select("*").Omit(clause.Associations).Create(model).Error)
}
