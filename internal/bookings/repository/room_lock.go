package repository

import (
	"context"
	"time"

	bookingserrors "roomline/internal/bookings/errors"
	"roomline/pkg/config"
	"roomline/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockCollectionName = "Room_locks"

// RoomLockRepository provides the advisory lock that serializes writers of
// the same room across service instances.
type RoomLockRepository interface {
	Acquire(ctx context.Context, lock *model.RoomLock) error
	Release(ctx context.Context, lockID, lease string) error
}

type mongoRoomLockRepository struct {
	collection *mongo.Collection
}

func NewRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		collection: db.Collection(lockCollectionName),
	}
}

func (r *mongoRoomLockRepository) Acquire(ctx context.Context, lock *model.RoomLock) error {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// A stale lock past its expiry can be stolen by swapping the lease.
			res, updErr := r.collection.UpdateOne(ctx,
				bson.M{"_id": lock.ID, "expires_at": bson.M{"$lt": time.Now()}},
				bson.M{"$set": bson.M{
					"lease":      lock.Lease,
					"expires_at": lock.ExpiresAt,
					"created_at": lock.CreatedAt,
				}},
			)
			if updErr == nil && res.ModifiedCount == 1 {
				return nil
			}
			return bookingserrors.ErrLockHeld
		}
		return err
	}

	return nil
}

// Release deletes the lock only when the lease matches, so an expired lock
// stolen by another request is never released by the original holder.
func (r *mongoRoomLockRepository) Release(ctx context.Context, lockID, lease string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "lease": lease})
	return err
}
