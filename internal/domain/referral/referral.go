package referral

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/domain/shared/valueobject"
)

// CodeLength is the length of a referral code
const CodeLength = 8

// codeAlphabet omits characters that are easy to confuse (0/O, 1/I/L)
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewCode generates a random referral code
func NewCode() string {
	b := make([]byte, CodeLength)
	_, _ = rand.Read(b)
	for i, v := range b {
		b[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}
	return string(b)
}

// NormalizeCode uppercases and trims a user-entered code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidCode reports whether code has the referral code shape
func IsValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}

// Status is the state of a referral
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ErrInvalidCode is returned for unknown or malformed referral codes
var ErrInvalidCode = shared.NewDomainError("INVALID_REFERRAL_CODE", "Referral code is not valid")

// Referral links a referring customer to the customer who signed up with their code.
// It completes, and the reward is earned, when the referee's first order is delivered.
type Referral struct {
	shared.BaseAggregateRoot
	ReferrerID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	RefereeID      uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	Code           string               `gorm:"type:varchar(16);not null"`
	Status         Status               `gorm:"type:varchar(20);not null;default:'pending';index"`
	RewardAmount   decimal.Decimal      `gorm:"type:decimal(12,2);not null;default:0"`
	RewardCurrency valueobject.Currency `gorm:"type:varchar(3);not null"`
	CompletedAt    *time.Time
	OrderID        *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Referral) TableName() string {
	return "referrals"
}

// New creates a pending referral. Customers cannot refer themselves.
func New(referrerID, refereeID uuid.UUID, code string, currency valueobject.Currency) (*Referral, error) {
	if referrerID == refereeID {
		return nil, shared.NewDomainError("SELF_REFERRAL", "Customers cannot use their own referral code")
	}
	if referrerID == uuid.Nil || refereeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Referrer and referee are required")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &Referral{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReferrerID:        referrerID,
		RefereeID:         refereeID,
		Code:              NormalizeCode(code),
		Status:            StatusPending,
		RewardAmount:      decimal.Zero,
		RewardCurrency:    currency,
	}, nil
}

// Complete records the reward for the referee's first delivered order
func (r *Referral) Complete(orderID uuid.UUID, reward decimal.Decimal, at time.Time) error {
	if r.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending referrals can be completed")
	}
	if reward.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reward cannot be negative")
	}
	r.Status = StatusCompleted
	r.RewardAmount = reward.Round(2)
	r.CompletedAt = &at
	r.OrderID = &orderID
	r.UpdatedAt = at
	r.AddDomainEvent(NewReferralCompletedEvent(r))
	return nil
}

// Reward is the recorded reward amount in its currency.
func (r *Referral) Reward() valueobject.Money {
	m, err := valueobject.NewMoney(r.RewardAmount, r.RewardCurrency)
	if err != nil {
		return valueobject.Zero(valueobject.DefaultCurrency)
	}
	return m
}

// Cancel voids a pending referral
func (r *Referral) Cancel() error {
	if r.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending referrals can be cancelled")
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return nil
}

// Stats summarises a referrer's referrals
type Stats struct {
	Total        int             `json:"total"`
	Pending      int             `json:"pending"`
	Completed    int             `json:"completed"`
	TotalRewards decimal.Decimal `json:"total_rewards"`
}

// Summarize computes stats over referrals
func Summarize(referrals []Referral) Stats {
	stats := Stats{TotalRewards: decimal.Zero}
	for _, r := range referrals {
		stats.Total++
		switch r.Status {
		case StatusPending:
			stats.Pending++
		case StatusCompleted:
			stats.Completed++
			stats.TotalRewards = stats.TotalRewards.Add(r.RewardAmount)
		}
	}
	return stats
}

// Repository persists referrals
type Repository interface {
	FindByReferee(ctx context.Context, refereeID uuid.UUID) (*Referral, error)
	ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]Referral, error)
	Save(ctx context.Context, referral *Referral) error
}

// AggregateTypeReferral is the aggregate type of referral events
const AggregateTypeReferral = "Referral"

// EventTypeReferralCompleted is published when a reward is earned
const EventTypeReferralCompleted = "ReferralCompleted"

// ReferralCompletedEvent is published when a referral completes
type ReferralCompletedEvent struct {
	shared.BaseDomainEvent
	ReferrerID   uuid.UUID       `json:"referrer_id"`
	RefereeID    uuid.UUID       `json:"referee_id"`
	RewardAmount decimal.Decimal `json:"reward_amount"`
}

// NewReferralCompletedEvent creates a ReferralCompletedEvent
func NewReferralCompletedEvent(r *Referral) *ReferralCompletedEvent {
	return &ReferralCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReferralCompleted, AggregateTypeReferral, r.ID),
		ReferrerID:      r.ReferrerID,
		RefereeID:       r.RefereeID,
		RewardAmount:    r.RewardAmount,
	}
}
