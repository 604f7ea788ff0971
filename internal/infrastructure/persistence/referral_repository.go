package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/referral"
	"gorm.io/gorm"
)

// GormReferralRepository implements referral.Repository using GORM
type GormReferralRepository struct {
	db *gorm.DB
}

// NewGormReferralRepository creates a new GormReferralRepository
func NewGormReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

func (r *GormReferralRepository) FindByReferee(ctx context.Context, refereeID uuid.UUID) (*referral.Referral, error) {
	var ref referral.Referral
	if err := r.db.WithContext(ctx).First(&ref, "referee_id = ?", refereeID).Error; err != nil {
		return nil, translate(err)
	}
	return &ref, nil
}

func (r *GormReferralRepository) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]referral.Referral, error) {
	var refs []referral.Referral
	err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).Order("created_at DESC").Find(&refs).Error
	return refs, err
}

func (r *GormReferralRepository) Save(ctx context.Context, ref *referral.Referral) error {
	return saveVersioned(r.db.WithContext(ctx), ref, &ref.BaseAggregateRoot)
}
