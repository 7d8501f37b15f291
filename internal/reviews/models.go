package reviews

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmploymentStatus string

const (
	EmploymentCurrent EmploymentStatus = "Current"
	EmploymentFormer  EmploymentStatus = "Former"
	EmploymentIntern  EmploymentStatus = "Intern"
)

// Ratings are scored 1 to 5. Overall is derived, never taken from input.
type Ratings struct {
	WorkCulture  int     `bson:"work_culture" json:"workCulture"`
	Salary       int     `bson:"salary" json:"salary"`
	CareerGrowth int     `bson:"career_growth" json:"careerGrowth"`
	Overall      float64 `bson:"overall" json:"overall"`
}

// withOverall returns r with Overall set to the mean of the three scores,
// rounded to one decimal.
func (r Ratings) withOverall() Ratings {
	mean := float64(r.WorkCulture+r.Salary+r.CareerGrowth) / 3
	r.Overall = math.Round(mean*10) / 10
	return r
}

// Review is a peer review of a recruiter account. One per reviewer and
// company.
type Review struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CompanyID        primitive.ObjectID `bson:"company_id" json:"companyId"`
	CompanyName      string             `bson:"company_name" json:"companyName"`
	ReviewerID       primitive.ObjectID `bson:"reviewer_id" json:"reviewerId"`
	ReviewerName     string             `bson:"reviewer_name" json:"reviewerName"`
	Ratings          Ratings            `bson:"ratings" json:"ratings"`
	ReviewText       string             `bson:"review_text" json:"reviewText"`
	Position         string             `bson:"position,omitempty" json:"position,omitempty"`
	EmploymentStatus EmploymentStatus   `bson:"employment_status" json:"employmentStatus"`
	Pros             string             `bson:"pros,omitempty" json:"pros,omitempty"`
	Cons             string             `bson:"cons,omitempty" json:"cons,omitempty"`
	IsVisible        bool               `bson:"is_visible" json:"isVisible"`
	FlaggedForReview bool               `bson:"flagged_for_review" json:"flaggedForReview"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Stats aggregates the visible reviews of one company.
type Stats struct {
	AvgWorkCulture  float64 `bson:"avg_work_culture" json:"avgWorkCulture"`
	AvgSalary       float64 `bson:"avg_salary" json:"avgSalary"`
	AvgCareerGrowth float64 `bson:"avg_career_growth" json:"avgCareerGrowth"`
	AvgOverall      float64 `bson:"avg_overall" json:"avgOverall"`
	TotalReviews    int     `bson:"total_reviews" json:"totalReviews"`
}

type CompanyReviews struct {
	Reviews []*Review `json:"reviews"`
	Stats   Stats     `json:"stats"`
}

type RatingsInput struct {
	WorkCulture  int `json:"workCulture" validate:"required,min=1,max=5"`
	Salary       int `json:"salary" validate:"required,min=1,max=5"`
	CareerGrowth int `json:"careerGrowth" validate:"required,min=1,max=5"`
}

type CreateReviewRequest struct {
	CompanyID        string       `json:"companyId" validate:"required"`
	Ratings          RatingsInput `json:"ratings"`
	ReviewText       string       `json:"reviewText" validate:"required,max=1000"`
	Position         string       `json:"position"`
	EmploymentStatus string       `json:"employmentStatus" validate:"required,oneof=Current Former Intern"`
	Pros             string       `json:"pros"`
	Cons             string       `json:"cons"`
}

type RatingsPatch struct {
	WorkCulture  *int `json:"workCulture" validate:"omitempty,min=1,max=5"`
	Salary       *int `json:"salary" validate:"omitempty,min=1,max=5"`
	CareerGrowth *int `json:"careerGrowth" validate:"omitempty,min=1,max=5"`
}

// UpdateReviewRequest merges present fields into the stored review.
type UpdateReviewRequest struct {
	Ratings          *RatingsPatch `json:"ratings"`
	ReviewText       *string       `json:"reviewText" validate:"omitempty,max=1000"`
	Position         *string       `json:"position"`
	EmploymentStatus *string       `json:"employmentStatus" validate:"omitempty,oneof=Current Former Intern"`
	Pros             *string       `json:"pros"`
	Cons             *string       `json:"cons"`
}
