package messages

import (
	"context"
	"errors"
	"time"

	"PlacementHub/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMessageNotFound = errors.New("message not found")

type Store interface {
	Create(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Message, error)
	Between(ctx context.Context, a, b primitive.ObjectID) ([]*Message, error)
	MarkReadFrom(ctx context.Context, sender, receiver primitive.ObjectID, at time.Time) (int64, error)
	Threads(ctx context.Context, user primitive.ObjectID) ([]Thread, error)
	CountUnread(ctx context.Context, receiver primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{collection: db.Collection("messages")}
}

func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("sender_receiver_created_at"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "is_read", Value: 1}},
			Options: options.Index().SetName("receiver_is_read"),
		},
	)
}

func (r *MessageRepository) Create(ctx context.Context, msg *Message) error {
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *MessageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Message, error) {
	var msg Message
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func betweenFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": a, "receiver_id": b},
		bson.M{"sender_id": b, "receiver_id": a},
	}}
}

// Between returns the messages exchanged by a and b, oldest first.
func (r *MessageRepository) Between(ctx context.Context, a, b primitive.ObjectID) ([]*Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, betweenFilter(a, b), opts)
	if err != nil {
		return nil, err
	}
	msgs := []*Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkReadFrom marks every unread message from sender to receiver as read.
func (r *MessageRepository) MarkReadFrom(ctx context.Context, sender, receiver primitive.ObjectID, at time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"sender_id": sender, "receiver_id": receiver, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": at, "updated_at": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Threads groups every message user sent or received by partner, most
// recently active partner first.
func (r *MessageRepository) Threads(ctx context.Context, user primitive.ObjectID) ([]Thread, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "sender_id", Value: user}},
			bson.D{{Key: "receiver_id", Value: user}},
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$sender_id", user}}},
				"$receiver_id",
				"$sender_id",
			}}}},
			{Key: "last_message", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
			{Key: "unread_count", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$receiver_id", user}}},
					bson.D{{Key: "$eq", Value: bson.A{"$is_read", false}}},
				}}},
				1,
				0,
			}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "last_message.created_at", Value: -1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	threads := []Thread{}
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, receiver primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"receiver_id": receiver, "is_read": false})
}

func (r *MessageRepository) MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"is_read": true, "read_at": at, "updated_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}
