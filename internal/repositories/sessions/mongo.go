package sessions

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

const collectionName = "sessions"

// MongoRepository implements Repository over a MongoDB collection.
type MongoRepository struct {
	coll   *mongo.Collection
	logger logging.Logger
}

// NewMongoRepository constructs a repository bound to the sessions
// collection of the given database.
func NewMongoRepository(db *mongo.Database, logger logging.Logger) *MongoRepository {
	return &MongoRepository{coll: db.Collection(collectionName), logger: logger}
}

// EnsureIndexes creates the non-unique index on user_id that lookups and
// deletions key on. Uniqueness is not constrained here; one session per
// user is maintained by the atomic upsert instead.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("%w: creating user_id index: %w", common.ErrOperationFailed, err)
	}
	return nil
}

func (r *MongoRepository) Upsert(ctx context.Context, userID, jwt string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id must not be empty", common.ErrInvalidArgument)
	}

	// A single atomic upsert. Emulating this with a lookup followed by an
	// insert or update would let two concurrent logins for the same user
	// create duplicate session records.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"jwt": jwt}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: upserting session for %q: %w", common.ErrOperationFailed, userID, err)
	}
	return nil
}

func (r *MongoRepository) FindByUserID(ctx context.Context, userID string) (*models.Session, error) {
	session := &models.Session{}
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: finding session for %q: %w", common.ErrOperationFailed, userID, err)
	}
	return session, nil
}

func (r *MongoRepository) DeleteByUserID(ctx context.Context, userID string) bool {
	deleted, err := r.Delete(ctx, userID)
	if err != nil {
		r.logger.Warn(ctx, "session deletion failed", "user_id", userID, "error", err)
		return false
	}
	return deleted == 1
}

func (r *MongoRepository) Delete(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("%w: deleting session for %q: %w", common.ErrOperationFailed, userID, err)
	}
	return res.DeletedCount, nil
}
