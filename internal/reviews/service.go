package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgCompanyNotFound = "Company not found"
	msgReviewNotFound  = "Review not found"
	msgAlreadyReviewed = "You have already reviewed this company"
)

// AccountFinder looks up the reviewed company account.
type AccountFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*auth.Account, error)
}

type ReviewService struct {
	reviews  Store
	accounts AccountFinder
	log      *zap.Logger
	now      func() time.Time
}

func NewReviewService(reviews Store, accounts AccountFinder, log *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, accounts: accounts, log: log, now: time.Now}
}

func serverError(err error) error {
	return apperr.Wrap(apperr.ErrInternal, "Server error", err)
}

// Create posts a review of a recruiter account. Each reviewer may review a
// company once.
func (s *ReviewService) Create(ctx context.Context, reviewer *auth.Account, req CreateReviewRequest) (*Review, error) {
	companyID, err := primitive.ObjectIDFromHex(req.CompanyID)
	if err != nil {
		return nil, apperr.NotFound(msgCompanyNotFound)
	}
	company, err := s.accounts.FindByID(ctx, companyID)
	if err != nil {
		return nil, serverError(err)
	}
	if company == nil || company.Role != auth.RoleRecruiter {
		return nil, apperr.NotFound(msgCompanyNotFound)
	}

	existing, err := s.reviews.FindByCompanyAndReviewer(ctx, companyID, reviewer.ID)
	if err != nil {
		return nil, serverError(err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.ErrConflict, msgAlreadyReviewed)
	}

	now := s.now()
	review := &Review{
		ID:           primitive.NewObjectID(),
		CompanyID:    companyID,
		CompanyName:  company.Name,
		ReviewerID:   reviewer.ID,
		ReviewerName: reviewer.Name,
		Ratings: Ratings{
			WorkCulture:  req.Ratings.WorkCulture,
			Salary:       req.Ratings.Salary,
			CareerGrowth: req.Ratings.CareerGrowth,
		}.withOverall(),
		ReviewText:       strings.TrimSpace(req.ReviewText),
		Position:         strings.TrimSpace(req.Position),
		EmploymentStatus: EmploymentStatus(req.EmploymentStatus),
		Pros:             strings.TrimSpace(req.Pros),
		Cons:             strings.TrimSpace(req.Cons),
		IsVisible:        true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, ErrDuplicateReview) {
			return nil, apperr.New(apperr.ErrConflict, msgAlreadyReviewed)
		}
		return nil, serverError(err)
	}
	return review, nil
}

// ForCompany returns the visible reviews of a company, newest first, with
// their aggregate.
func (s *ReviewService) ForCompany(ctx context.Context, companyID string) (*CompanyReviews, error) {
	id, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, apperr.NotFound(msgCompanyNotFound)
	}
	reviews, err := s.reviews.FindVisibleByCompany(ctx, id)
	if err != nil {
		return nil, serverError(err)
	}
	stats, err := s.reviews.CompanyStats(ctx, id)
	if err != nil {
		return nil, serverError(err)
	}
	return &CompanyReviews{Reviews: reviews, Stats: stats}, nil
}

func (s *ReviewService) Mine(ctx context.Context, reviewer *auth.Account) ([]*Review, error) {
	reviews, err := s.reviews.FindByReviewer(ctx, reviewer.ID)
	if err != nil {
		return nil, serverError(err)
	}
	return reviews, nil
}

func (s *ReviewService) owned(ctx context.Context, caller *auth.Account, id, action string) (*Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(msgReviewNotFound)
	}
	review, err := s.reviews.FindByID(ctx, oid)
	if err != nil {
		return nil, serverError(err)
	}
	if review == nil {
		return nil, apperr.NotFound(msgReviewNotFound)
	}
	if review.ReviewerID != caller.ID {
		return nil, apperr.NotOwner("Not authorized to " + action + " this review")
	}
	return review, nil
}

// Update merges the present fields and recomputes the overall rating.
func (s *ReviewService) Update(ctx context.Context, caller *auth.Account, id string, req UpdateReviewRequest) (*Review, error) {
	review, err := s.owned(ctx, caller, id, "update")
	if err != nil {
		return nil, err
	}

	if p := req.Ratings; p != nil {
		if p.WorkCulture != nil {
			review.Ratings.WorkCulture = *p.WorkCulture
		}
		if p.Salary != nil {
			review.Ratings.Salary = *p.Salary
		}
		if p.CareerGrowth != nil {
			review.Ratings.CareerGrowth = *p.CareerGrowth
		}
		review.Ratings = review.Ratings.withOverall()
	}
	assign := func(dst *string, src *string) {
		if src != nil && strings.TrimSpace(*src) != "" {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&review.ReviewText, req.ReviewText)
	assign(&review.Position, req.Position)
	assign(&review.Pros, req.Pros)
	assign(&review.Cons, req.Cons)
	if req.EmploymentStatus != nil && *req.EmploymentStatus != "" {
		review.EmploymentStatus = EmploymentStatus(*req.EmploymentStatus)
	}
	review.UpdatedAt = s.now()

	if err := s.reviews.Replace(ctx, review); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, apperr.NotFound(msgReviewNotFound)
		}
		return nil, serverError(err)
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, caller *auth.Account, id string) error {
	review, err := s.owned(ctx, caller, id, "delete")
	if err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return apperr.NotFound(msgReviewNotFound)
		}
		return serverError(err)
	}
	s.log.Info("review deleted", zap.String("review", review.ID.Hex()), zap.String("reviewer", caller.ID.Hex()))
	return nil
}
