package review

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/shared"
)

// Status is the moderation status of a review
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Field limits
const (
	MinRating      = 1
	MaxRating      = 5
	MaxTitleLength = 120
	MaxBodyLength  = 5000
)

// Review is a customer's rating of a product. Only approved reviews are public.
type Review struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_customer,priority:1"`
	CustomerID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_product_customer,priority:2"`
	AuthorName       string     `gorm:"type:varchar(200);not null"`
	Rating           int        `gorm:"not null"`
	Title            string     `gorm:"type:varchar(120)"`
	Body             string     `gorm:"type:text"`
	Status           Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	VerifiedPurchase bool       `gorm:"not null;default:false"`
	Locale           string     `gorm:"type:varchar(16)"`
	ModeratedAt      *time.Time
	ModeratedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason  string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// New creates a pending review
func New(productID, customerID uuid.UUID, authorName string, rating int, title, body, locale string, verified bool) (*Review, error) {
	if productID == uuid.Nil || customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product and customer are required")
	}
	if err := validate(rating, title, body); err != nil {
		return nil, err
	}
	r := &Review{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		CustomerID:        customerID,
		AuthorName:        strings.TrimSpace(authorName),
		Rating:            rating,
		Title:             strings.TrimSpace(title),
		Body:              strings.TrimSpace(body),
		Status:            StatusPending,
		VerifiedPurchase:  verified,
		Locale:            locale,
	}
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewSubmitted, r))
	return r, nil
}

// Edit lets the author change the review; it goes back to moderation
func (r *Review) Edit(rating int, title, body string) error {
	if err := validate(rating, title, body); err != nil {
		return err
	}
	wasApproved := r.Status == StatusApproved
	r.Rating = rating
	r.Title = strings.TrimSpace(title)
	r.Body = strings.TrimSpace(body)
	r.Status = StatusPending
	r.ModeratedAt = nil
	r.ModeratedBy = nil
	r.touch()
	if wasApproved {
		r.AddDomainEvent(NewReviewEvent(EventTypeReviewModerated, r))
	}
	return nil
}

// Approve publishes the review
func (r *Review) Approve(moderatorID uuid.UUID) error {
	if r.Status == StatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Review is already approved")
	}
	r.moderate(StatusApproved, moderatorID, "")
	return nil
}

// Reject hides the review with a reason
func (r *Review) Reject(moderatorID uuid.UUID, reason string) error {
	if r.Status == StatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Review is already rejected")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	r.moderate(StatusRejected, moderatorID, strings.TrimSpace(reason))
	return nil
}

// IsPublic reports whether customers can see the review
func (r *Review) IsPublic() bool {
	return r.Status == StatusApproved
}

func (r *Review) moderate(status Status, moderatorID uuid.UUID, reason string) {
	now := time.Now()
	r.Status = status
	r.ModeratedAt = &now
	r.ModeratedBy = &moderatorID
	r.RejectionReason = reason
	r.touch()
	r.AddDomainEvent(NewReviewEvent(EventTypeReviewModerated, r))
}

func (r *Review) touch() {
	r.UpdatedAt = time.Now()
}

func validate(rating int, title, body string) error {
	if rating < MinRating || rating > MaxRating {
		return shared.NewDomainError("INVALID_RATING", "Rating must be between 1 and 5")
	}
	if len([]rune(strings.TrimSpace(title))) > MaxTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 120 characters")
	}
	if len([]rune(strings.TrimSpace(body))) > MaxBodyLength {
		return shared.NewDomainError("INVALID_BODY", "Review cannot exceed 5000 characters")
	}
	return nil
}

// RatingSummary aggregates approved reviews of a product
type RatingSummary struct {
	Average      decimal.Decimal `json:"average"`
	Count        int             `json:"count"`
	Distribution [5]int          `json:"distribution"`
}

// Summarize builds a summary from a count per star rating (index 0 is one star)
func Summarize(distribution [5]int) RatingSummary {
	total, weighted := 0, 0
	for i, n := range distribution {
		total += n
		weighted += (i + 1) * n
	}
	summary := RatingSummary{Count: total, Distribution: distribution, Average: decimal.Zero}
	if total > 0 {
		summary.Average = decimal.NewFromInt(int64(weighted)).
			Div(decimal.NewFromInt(int64(total))).
			Round(1)
	}
	return summary
}

// Filter narrows review listings
type Filter struct {
	ProductID  *uuid.UUID
	CustomerID *uuid.UUID
	Status     Status
	Page       int
	PageSize   int
}

// Repository persists reviews
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ExistsFor(ctx context.Context, productID, customerID uuid.UUID) (bool, error)
	List(ctx context.Context, filter Filter) ([]Review, int64, error)
	// RatingDistribution counts approved reviews per star rating for a product
	RatingDistribution(ctx context.Context, productID uuid.UUID) ([5]int, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AggregateTypeReview is the aggregate type of review events
const AggregateTypeReview = "Review"

// Event type constants
const (
	EventTypeReviewSubmitted = "ReviewSubmitted"
	EventTypeReviewModerated = "ReviewModerated"
)

// ReviewEvent is published when a review is submitted or its moderation status changes
type ReviewEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
	Status    Status    `json:"status"`
}

// NewReviewEvent creates a ReviewEvent
func NewReviewEvent(eventType string, r *Review) *ReviewEvent {
	return &ReviewEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeReview, r.ID),
		ProductID:       r.ProductID,
		Rating:          r.Rating,
		Status:          r.Status,
	}
}
