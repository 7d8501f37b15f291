package jobs

import (
	"context"
	"errors"

	"PlacementHub/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrJobNotFound = errors.New("job not found")

type Store interface {
	Create(ctx context.Context, job *Job) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Job, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]*Job, error)
	List(ctx context.Context, filter ListFilter) ([]*Job, error)
	Replace(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type JobRepository struct {
	collection *mongo.Collection
}

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{collection: db.Collection("jobs")}
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "posted_by", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("posted_by_created_at"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("status_type_created_at"),
		},
	)
}

func (r *JobRepository) Create(ctx context.Context, job *Job) error {
	_, err := r.collection.InsertOne(ctx, job)
	return err
}

func (r *JobRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Job, error) {
	var job Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]*Job, error) {
	return r.find(ctx, bson.M{"posted_by": owner})
}

func (r *JobRepository) List(ctx context.Context, filter ListFilter) ([]*Job, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	return r.find(ctx, query)
}

// find returns matches newest first.
func (r *JobRepository) find(ctx context.Context, filter bson.M) ([]*Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	jobs := []*Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) Replace(ctx context.Context, job *Job) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": job.ID}, job)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrJobNotFound
	}
	return nil
}
