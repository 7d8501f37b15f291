package reviews

import (
	"context"
	"errors"

	"PlacementHub/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateReview = errors.New("review already exists")
	ErrReviewNotFound  = errors.New("review not found")
)

type Store interface {
	Create(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	FindByCompanyAndReviewer(ctx context.Context, company, reviewer primitive.ObjectID) (*Review, error)
	FindVisibleByCompany(ctx context.Context, company primitive.ObjectID) ([]*Review, error)
	FindByReviewer(ctx context.Context, reviewer primitive.ObjectID) ([]*Review, error)
	CompanyStats(ctx context.Context, company primitive.ObjectID) (Stats, error)
	Replace(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{collection: db.Collection("reviews")}
}

// EnsureIndexes creates the one-review-per-company index and the listing
// index.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "reviewer_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("company_reviewer_unique"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "is_visible", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("company_visible_created_at"),
		},
	)
}

func (r *ReviewRepository) Create(ctx context.Context, review *Review) error {
	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ReviewRepository) FindByCompanyAndReviewer(ctx context.Context, company, reviewer primitive.ObjectID) (*Review, error) {
	return r.findOne(ctx, bson.M{"company_id": company, "reviewer_id": reviewer})
}

func (r *ReviewRepository) findOne(ctx context.Context, filter bson.M) (*Review, error) {
	var review Review
	err := r.collection.FindOne(ctx, filter).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) FindVisibleByCompany(ctx context.Context, company primitive.ObjectID) ([]*Review, error) {
	return r.find(ctx, bson.M{"company_id": company, "is_visible": true})
}

func (r *ReviewRepository) FindByReviewer(ctx context.Context, reviewer primitive.ObjectID) ([]*Review, error) {
	return r.find(ctx, bson.M{"reviewer_id": reviewer})
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	reviews := []*Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CompanyStats averages the visible reviews of company. A company without
// reviews yields zero stats.
func (r *ReviewRepository) CompanyStats(ctx context.Context, company primitive.ObjectID) (Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "company_id", Value: company}, {Key: "is_visible", Value: true}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg_work_culture", Value: bson.D{{Key: "$avg", Value: "$ratings.work_culture"}}},
			{Key: "avg_salary", Value: bson.D{{Key: "$avg", Value: "$ratings.salary"}}},
			{Key: "avg_career_growth", Value: bson.D{{Key: "$avg", Value: "$ratings.career_growth"}}},
			{Key: "avg_overall", Value: bson.D{{Key: "$avg", Value: "$ratings.overall"}}},
			{Key: "total_reviews", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, err
	}
	var out []Stats
	if err := cursor.All(ctx, &out); err != nil {
		return Stats{}, err
	}
	if len(out) == 0 {
		return Stats{}, nil
	}
	return out[0], nil
}

func (r *ReviewRepository) Replace(ctx context.Context, review *Review) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": review.ID}, review)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}
