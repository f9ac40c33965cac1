package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookline/pkg/config"
	"bookline/pkg/model"
)

const LockCollectionName = "confirm_locks"

// ConfirmLockRepository provides advisory locks keyed by slot
// coordinates. A TTL index on expires_at reaps abandoned locks.
type ConfirmLockRepository interface {
	Create(ctx context.Context, lock *model.ConfirmLock) (*model.ConfirmLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoConfirmLockRepository struct {
	collection *mongo.Collection
}

func NewConfirmLockRepository(cfg *config.Config) ConfirmLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoConfirmLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create returns a duplicate key error when the lock is already held.
func (r *mongoConfirmLockRepository) Create(ctx context.Context, lock *model.ConfirmLock) (*model.ConfirmLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}
	return lock, nil
}

func (r *mongoConfirmLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
