// File: database/repository/schedule/scheduleMongoCrud.go
package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tavolo/models"
)

const opTimeout = 5 * time.Second

func (r *mongoScheduleRepo) Insert(ctx context.Context, s *models.Schedule) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateActive
		}
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepo) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var s models.Schedule
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule by id: %w", err)
	}
	return &s, nil
}

func (r *mongoScheduleRepo) Update(ctx context.Context, s *models.Schedule, expectedVersion int) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	stored := *s
	stored.Version = expectedVersion + 1

	filter := bson.M{"id": s.ID, "version": expectedVersion}
	res, err := r.coll.ReplaceOne(ctx, filter, &stored)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateActive
		}
		return fmt.Errorf("update schedule: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing document from a lost version race.
		count, err := r.coll.CountDocuments(ctx, bson.M{"id": s.ID})
		if err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionMismatch
	}
	s.Version = stored.Version
	return nil
}

func (r *mongoScheduleRepo) ListByBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error) {
	filter := bson.M{"boundType": boundType, "boundEntityId": entityID}
	return r.find(ctx, filter)
}

func (r *mongoScheduleRepo) FindActiveByBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error) {
	filter := bson.M{"boundType": boundType, "boundEntityId": entityID, "isActive": true}
	return r.find(ctx, filter)
}

func (r *mongoScheduleRepo) ListActive(ctx context.Context) ([]models.Schedule, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

func (r *mongoScheduleRepo) find(ctx context.Context, filter bson.M) ([]models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find schedules: %w", err)
	}
	defer cursor.Close(ctx)

	var schedules []models.Schedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	return schedules, nil
}
