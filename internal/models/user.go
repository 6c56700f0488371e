// Package models declares the record shapes persisted by AccountKeeper.
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is an account record. Email is the natural key: a unique index on
// the users collection guarantees at most one record per email.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name"`
	HashedPassword string             `bson:"password_hash"`
	Preferences    map[string]any     `bson:"preferences,omitempty"`
}
