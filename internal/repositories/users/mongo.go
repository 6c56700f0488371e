package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

const collectionName = "users"

// MongoRepository implements Repository over a MongoDB collection.
//
// Inserts go through a majority write concern: account creation is a rare,
// correctness-critical operation where durability outweighs latency.
type MongoRepository struct {
	coll    *mongo.Collection
	durable *mongo.Collection
	logger  logging.Logger
}

// NewMongoRepository constructs a repository bound to the users collection
// of the given database.
func NewMongoRepository(db *mongo.Database, logger logging.Logger) *MongoRepository {
	return &MongoRepository{
		coll: db.Collection(collectionName),
		durable: db.Collection(collectionName,
			options.Collection().SetWriteConcern(writeconcern.Majority())),
		logger: logger,
	}
}

// EnsureIndexes creates the unique index on email that backs duplicate
// detection. Without it concurrent inserts of the same email could both
// succeed.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("%w: creating email index: %w", common.ErrOperationFailed, err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) error {
	if user.Email == "" {
		return fmt.Errorf("%w: email must not be empty", common.ErrInvalidArgument)
	}

	if _, err := r.durable.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Error(ctx, "could not insert user", "email", user.Email, "error", err)
			return fmt.Errorf("%w: user with email %q already exists", common.ErrDuplicate, user.Email)
		}
		return fmt.Errorf("%w: inserting user %q: %w", common.ErrOperationFailed, user.Email, err)
	}
	return nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: finding user %q: %w", common.ErrOperationFailed, email, err)
	}
	return user, nil
}

func (r *MongoRepository) ReplacePreferences(ctx context.Context, email string, preferences map[string]any) error {
	if preferences == nil {
		return fmt.Errorf("%w: preferences must not be nil", common.ErrInvalidArgument)
	}

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"preferences": preferences}})
	if err != nil {
		return fmt.Errorf("%w: updating preferences for %q: %w", common.ErrOperationFailed, email, err)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, email string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return 0, fmt.Errorf("%w: deleting user %q: %w", common.ErrOperationFailed, email, err)
	}
	return res.DeletedCount, nil
}
