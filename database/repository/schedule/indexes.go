// File: database/repository/schedule/indexes.go
package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureScheduleIndexes creates the indexes the repository relies on. The
// partial unique index over the binding key, filtered to active documents, is
// what makes the at-most-one-active invariant hold under concurrent creates
// without any process-level locking.
func EnsureScheduleIndexes(ctx context.Context, coll *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "boundType", Value: 1},
				{Key: "boundEntityId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}).
				SetName("uniq_active_binding"),
		},
		{
			Keys: bson.D{
				{Key: "boundType", Value: 1},
				{Key: "boundEntityId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index().SetName("binding_history"),
		},
		{
			Keys:    bson.D{{Key: "restaurantId", Value: 1}},
			Options: options.Index().SetName("by_restaurant"),
		},
	}

	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create schedule indexes: %w", err)
	}
	return nil
}
