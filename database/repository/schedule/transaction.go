// File: database/repository/schedule/transaction.go
package scheduleRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tavolo/models"
)

// ReplaceActive retires the incumbent active schedule and installs the
// replacement inside one Mongo transaction, so no reader ever observes the
// binding with zero or two active schedules.
func (r *mongoScheduleRepo) ReplaceActive(ctx context.Context, incumbentID string, replacement *models.Schedule) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	if replacement.ID == "" {
		replacement.ID = uuid.New().String()
	}

	txnFn := func(sc mongo.SessionContext) error {
		// A zero match means the incumbent was already deactivated under us;
		// the insert below is still guarded by the unique index either way.
		_, err := r.coll.UpdateOne(sc,
			bson.M{"id": incumbentID, "isActive": true},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}, "$inc": bson.M{"version": 1}},
		)
		if err != nil {
			return fmt.Errorf("deactivate incumbent failed: %w", err)
		}
		if _, err := r.coll.InsertOne(sc, replacement); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicateActive
			}
			return fmt.Errorf("insert replacement failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}
