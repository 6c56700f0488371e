package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Session binds an opaque authentication token to a user identifier.
// UserID is an indexed field, not an enforced foreign key; at most one
// session exists per user, maintained by atomic upsert rather than a
// uniqueness constraint.
type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID string             `bson:"user_id"`
	JWT    string             `bson:"jwt"`
}
