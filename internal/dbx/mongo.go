// Package dbx bootstraps the MongoDB client used by the repositories.
package dbx

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect builds a MongoDB client with bounded connect and per-operation
// timeouts and verifies connectivity with a ping. Account-management calls
// must fail fast instead of hanging on an unreachable backend, so both
// bounds are mandatory.
func Connect(ctx context.Context, uri string, connectTimeout, operationTimeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(connectTimeout).
		SetTimeout(operationTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}
