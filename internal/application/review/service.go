// Package review implements product reviews, their moderation and the
// rating aggregates shown on product pages.
package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/statyba/storefront/internal/domain/catalog"
	"github.com/statyba/storefront/internal/domain/customer"
	"github.com/statyba/storefront/internal/domain/review"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductLookup finds reviewed products
type ProductLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	Iterate(ctx context.Context, now time.Time, batchSize int, fn func([]catalog.Product) bool) error
}

// RatingWriter stores the denormalized rating of a product
type RatingWriter interface {
	UpdateRating(ctx context.Context, productID uuid.UUID, average decimal.Decimal, count int) error
}

// CustomerLookup finds review authors
type CustomerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

// PurchaseChecker reports verified purchases
type PurchaseChecker interface {
	HasDeliveredProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// Service handles review submission and moderation
type Service struct {
	reviewRepo     review.Repository
	products       ProductLookup
	ratings        RatingWriter
	customers      CustomerLookup
	purchases      PurchaseChecker
	eventPublisher shared.EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewService creates a review service
func NewService(
	reviewRepo review.Repository,
	products ProductLookup,
	ratings RatingWriter,
	customers CustomerLookup,
	purchases PurchaseChecker,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reviewRepo: reviewRepo,
		products:   products,
		ratings:    ratings,
		customers:  customers,
		purchases:  purchases,
		now:        time.Now,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *Service) publishDomainEvents(ctx context.Context, r *review.Review) {
	shared.PublishPending(ctx, s.eventPublisher, r)
}

// Submit stores a pending review. Each customer reviews a product once;
// the review is marked verified when the customer has received the product.
func (s *Service) Submit(ctx context.Context, productID, customerID uuid.UUID, req SubmitRequest, locale string) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "review", "submit",
		telemetry.AttrProductID, productID.String(),
		telemetry.AttrCustomerID, customerID.String(),
	)
	defer span.End()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsStorefrontVisible(s.now()) {
		return nil, shared.ErrNotFound
	}

	exists, err := s.reviewRepo.ExistsFor(ctx, productID, customerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "You have already reviewed this product")
	}

	author, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	verified, err := s.purchases.HasDeliveredProduct(ctx, customerID, productID)
	if err != nil {
		return nil, err
	}

	r, err := review.New(productID, customerID, author.FullName(), req.Rating, req.Title, req.Body, locale, verified)
	if err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishDomainEvents(ctx, r)

	resp := ToResponse(r)
	return &resp, nil
}

// Edit lets the author change a review; it goes back to moderation
func (s *Service) Edit(ctx context.Context, id, customerID uuid.UUID, req SubmitRequest) (*Response, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.CustomerID != customerID {
		return nil, shared.ErrNotFound
	}
	wasPublic := r.IsPublic()
	if err := r.Edit(req.Rating, req.Title, req.Body); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	if wasPublic {
		s.refreshRating(ctx, r.ProductID)
	}
	s.publishDomainEvents(ctx, r)

	resp := ToResponse(r)
	return &resp, nil
}

// ListPublic lists approved reviews of a product, newest first
func (s *Service) ListPublic(ctx context.Context, productID uuid.UUID, query ListQuery) (shared.Paginated[PublicResponse], error) {
	filter := toFilter(query)
	filter.ProductID = &productID
	filter.Status = review.StatusApproved

	reviews, total, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[PublicResponse]{}, err
	}
	out := make([]PublicResponse, len(reviews))
	for i := range reviews {
		out[i] = ToPublicResponse(&reviews[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

// ListForCustomer lists the reviews a customer has written
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, query ListQuery) (shared.Paginated[Response], error) {
	filter := toFilter(query)
	filter.CustomerID = &customerID
	return s.list(ctx, filter)
}

// List lists reviews for moderation
func (s *Service) List(ctx context.Context, query ListQuery) (shared.Paginated[Response], error) {
	return s.list(ctx, toFilter(query))
}

// Summary returns the rating aggregate of a product's approved reviews
func (s *Service) Summary(ctx context.Context, productID uuid.UUID) (*SummaryResponse, error) {
	dist, err := s.reviewRepo.RatingDistribution(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(review.Summarize(dist))
	return &resp, nil
}

// Approve publishes a review
func (s *Service) Approve(ctx context.Context, id, moderatorID uuid.UUID) (*Response, error) {
	return s.moderate(ctx, id, func(r *review.Review) error { return r.Approve(moderatorID) })
}

// Reject hides a review
func (s *Service) Reject(ctx context.Context, id, moderatorID uuid.UUID, req RejectRequest) (*Response, error) {
	return s.moderate(ctx, id, func(r *review.Review) error { return r.Reject(moderatorID, req.Reason) })
}

// Delete removes a review
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	if r.IsPublic() {
		s.refreshRating(ctx, r.ProductID)
	}
	return nil
}

// RebuildRating recomputes the stored rating of one product
func (s *Service) RebuildRating(ctx context.Context, productID uuid.UUID) (*SummaryResponse, error) {
	dist, err := s.reviewRepo.RatingDistribution(ctx, productID)
	if err != nil {
		return nil, err
	}
	summary := review.Summarize(dist)
	if err := s.ratings.UpdateRating(ctx, productID, summary.Average, summary.Count); err != nil {
		return nil, err
	}
	resp := ToSummaryResponse(summary)
	return &resp, nil
}

// RebuildAllRatings recomputes the rating of every storefront product and
// returns how many were updated
func (s *Service) RebuildAllRatings(ctx context.Context, batchSize int) (int, error) {
	updated := 0
	var failed error
	err := s.products.Iterate(ctx, s.now(), batchSize, func(batch []catalog.Product) bool {
		for i := range batch {
			if _, err := s.RebuildRating(ctx, batch[i].ID); err != nil {
				failed = err
				return false
			}
			updated++
		}
		return ctx.Err() == nil
	})
	if failed != nil {
		return updated, failed
	}
	if err != nil {
		return updated, err
	}
	return updated, ctx.Err()
}

func (s *Service) moderate(ctx context.Context, id uuid.UUID, apply func(*review.Review) error) (*Response, error) {
	r, err := s.reviewRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasPublic := r.IsPublic()
	if err := apply(r); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Save(ctx, r); err != nil {
		return nil, err
	}
	if wasPublic != r.IsPublic() {
		s.refreshRating(ctx, r.ProductID)
	}
	s.publishDomainEvents(ctx, r)

	resp := ToResponse(r)
	return &resp, nil
}

// refreshRating keeps the product rating in step with moderation; a failure
// is logged and repaired by the next rebuild
func (s *Service) refreshRating(ctx context.Context, productID uuid.UUID) {
	if _, err := s.RebuildRating(ctx, productID); err != nil {
		s.logger.Error("failed to refresh product rating",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) list(ctx context.Context, filter review.Filter) (shared.Paginated[Response], error) {
	reviews, total, err := s.reviewRepo.List(ctx, filter)
	if err != nil {
		return shared.Paginated[Response]{}, err
	}
	out := make([]Response, len(reviews))
	for i := range reviews {
		out[i] = ToResponse(&reviews[i])
	}
	return shared.NewPaginated(out, total, filter.Page, filter.PageSize), nil
}

func toFilter(query ListQuery) review.Filter {
	f := shared.DefaultFilter()
	if query.Page > 0 {
		f.Page = query.Page
	}
	if query.PageSize > 0 {
		f.PageSize = query.PageSize
	}
	f = f.Normalize()
	return review.Filter{
		ProductID: query.ProductID,
		Status:    review.Status(query.Status),
		Page:      f.Page,
		PageSize:  f.PageSize,
	}
}
