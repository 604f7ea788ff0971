package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/statyba/storefront/internal/domain/customer"
	"gorm.io/gorm"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail looks up a customer by normalized email
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return r.findOne(ctx, "email = ?", customer.NormalizeEmail(email))
}

func (r *GormCustomerRepository) FindByReferralCode(ctx context.Context, code string) (*customer.Customer, error) {
	return r.findOne(ctx, "referral_code = ?", code)
}

func (r *GormCustomerRepository) findOne(ctx context.Context, cond string, arg any) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).First(&c, cond, arg).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&customer.Customer{}).Where("email = ?", customer.NormalizeEmail(email)), nil)
}

func (r *GormCustomerRepository) ExistsByReferralCode(ctx context.Context, code string) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&customer.Customer{}).Where("referral_code = ?", code), nil)
}

func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return saveVersioned(r.db.WithContext(ctx), c, &c.BaseAggregateRoot)
}
