package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/review"
)

// SubmitRequest is the storefront review form
type SubmitRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Title  string `json:"title" binding:"max=120"`
	Body   string `json:"body" binding:"max=5000"`
}

// RejectRequest carries the moderator's reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// ListQuery filters review listings
type ListQuery struct {
	Status    string     `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	ProductID *uuid.UUID `form:"product_id"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PublicResponse is an approved review shown on the storefront
type PublicResponse struct {
	ID               uuid.UUID `json:"id"`
	AuthorName       string    `json:"author_name"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	Locale           string    `json:"locale,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Response is the full review for the author and moderators
type Response struct {
	PublicResponse
	ProductID       uuid.UUID  `json:"product_id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	Status          string     `json:"status"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy     *uuid.UUID `json:"moderated_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	Version         int        `json:"version"`
}

// SummaryResponse aggregates approved reviews of a product
type SummaryResponse struct {
	Average decimal.Decimal `json:"average"`
	Count   int             `json:"count"`
	// Distribution maps star rating to the number of reviews
	Distribution map[int]int `json:"distribution"`
}

// ToPublicResponse converts a domain Review to PublicResponse
func ToPublicResponse(r *review.Review) PublicResponse {
	return PublicResponse{
		ID:               r.ID,
		AuthorName:       r.AuthorName,
		Rating:           r.Rating,
		Title:            r.Title,
		Body:             r.Body,
		VerifiedPurchase: r.VerifiedPurchase,
		Locale:           r.Locale,
		CreatedAt:        r.CreatedAt,
	}
}

// ToResponse converts a domain Review to Response
func ToResponse(r *review.Review) Response {
	return Response{
		PublicResponse:  ToPublicResponse(r),
		ProductID:       r.ProductID,
		CustomerID:      r.CustomerID,
		Status:          string(r.Status),
		ModeratedAt:     r.ModeratedAt,
		ModeratedBy:     r.ModeratedBy,
		RejectionReason: r.RejectionReason,
		Version:         r.Version,
	}
}

// ToSummaryResponse converts a RatingSummary to SummaryResponse
func ToSummaryResponse(s review.RatingSummary) SummaryResponse {
	dist := make(map[int]int, len(s.Distribution))
	for i, n := range s.Distribution {
		dist[i+1] = n
	}
	return SummaryResponse{Average: s.Average, Count: s.Count, Distribution: dist}
}
