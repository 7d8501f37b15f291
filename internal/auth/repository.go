package auth

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

var (
	ErrDuplicateEmail  = errors.New("email already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrLedgerEntryGone = errors.New("ledger entry not found")
)

// AccountStore is the credential store. Finders return nil, nil when no
// document matches.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Account, error)
	Create(ctx context.Context, account *Account) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error
}

// Ledger holds issued one-time codes keyed by email. Finders return nil, nil
// when no document matches.
type Ledger interface {
	Put(ctx context.Context, entry *LedgerEntry) error
	FindByEmail(ctx context.Context, email string) (*LedgerEntry, error)
	FindByEmailAndCode(ctx context.Context, email, code string) (*LedgerEntry, error)
	Reissue(ctx context.Context, id primitive.ObjectID, code string, expiresAt, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AccountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{collection: db.Collection("users")}
}

// EnsureIndexes creates the unique email index. Concurrent signup
// confirmations for one email rely on it to produce a single account.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*Account, error) {
	var account Account
	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *Account) error {
	_, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	update := bson.M{"$set": bson.M{"password_hash": hash, "updated_at": at}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ledgerRepository backs both code ledgers; they differ only in collection.
type ledgerRepository struct {
	collection *mongo.Collection
}

// EnsureIndexes creates the TTL index that purges expired entries and the
// unique index that keeps one entry per email.
func (r *ledgerRepository) EnsureIndexes(ctx context.Context) error {
	return config.EnsureIndexes(ctx, r.collection,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
		mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	)
}

// Put stores entry as the only entry for its email, overwriting any earlier
// code in a single upsert. entry is refreshed with the stored document.
func (r *ledgerRepository) Put(ctx context.Context, entry *LedgerEntry) error {
	set := bson.M{
		"code":       entry.Code,
		"expires_at": entry.ExpiresAt,
		"created_at": entry.CreatedAt,
		"updated_at": entry.UpdatedAt,
	}
	update := bson.M{"$set": set, "$setOnInsert": bson.M{"_id": entry.ID}}
	if entry.Payload != nil {
		set["payload"] = entry.Payload
	} else {
		update["$unset"] = bson.M{"payload": ""}
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return r.collection.FindOneAndUpdate(ctx, bson.M{"email": entry.Email}, update, opts).Decode(entry)
}

func (r *ledgerRepository) FindByEmail(ctx context.Context, email string) (*LedgerEntry, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *ledgerRepository) FindByEmailAndCode(ctx context.Context, email, code string) (*LedgerEntry, error) {
	return r.findOne(ctx, bson.M{"email": email, "code": code})
}

func (r *ledgerRepository) findOne(ctx context.Context, filter bson.M) (*LedgerEntry, error) {
	var entry LedgerEntry
	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Reissue replaces the code and expiry of an existing entry in place.
func (r *ledgerRepository) Reissue(ctx context.Context, id primitive.ObjectID, code string, expiresAt, at time.Time) error {
	update := bson.M{"$set": bson.M{"code": code, "expires_at": expiresAt, "updated_at": at}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrLedgerEntryGone
	}
	return nil
}

func (r *ledgerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// PendingRegistrationRepository stores signup codes with their candidate
// payload.
type PendingRegistrationRepository struct {
	*ledgerRepository
}

func NewPendingRegistrationRepository(db *mongo.Database) *PendingRegistrationRepository {
	return &PendingRegistrationRepository{&ledgerRepository{collection: db.Collection("pending_registrations")}}
}

// PasswordResetRepository stores password reset codes.
type PasswordResetRepository struct {
	*ledgerRepository
}

func NewPasswordResetRepository(db *mongo.Database) *PasswordResetRepository {
	return &PasswordResetRepository{&ledgerRepository{collection: db.Collection("password_resets")}}
}
