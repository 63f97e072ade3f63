package lock

import (
	"context"
	"fmt"
	"time"

	"officehub/pkg/logger"
	"officehub/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LockCollectionName = "Room_locks"

	maxRetryInterval = 500 * time.Millisecond
	releaseTimeout   = 5 * time.Second
)

// MongoLocker is an advisory lock shared by every instance using the same
// database. The unique _id makes the insert the acquisition; a TTL index on
// expires_at reclaims locks whose holder died.
type MongoLocker struct {
	collection    *mongo.Collection
	ttl           time.Duration
	retryInterval time.Duration
	log           *logger.Logger
}

func NewMongoLocker(db *mongo.Database, ttl, retryInterval time.Duration, log *logger.Logger) *MongoLocker {
	return &MongoLocker{
		collection:    db.Collection(LockCollectionName),
		ttl:           ttl,
		retryInterval: retryInterval,
		log:           log,
	}
}

func lockID(roomID string) string {
	return "room_lock_" + roomID
}

func (l *MongoLocker) Acquire(ctx context.Context, roomID string) (ReleaseFunc, error) {
	id := lockID(roomID)
	owner := uuid.NewString()
	wait := l.retryInterval

	for {
		now := time.Now().UTC()
		_, err := l.collection.InsertOne(ctx, model.RoomLock{
			ID:        id,
			Owner:     owner,
			ExpiresAt: now.Add(l.ttl),
			CreatedAt: now,
		})
		if err == nil {
			return once(func() { l.release(id, owner) }), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to insert room lock: %w", err)
		}

		// The TTL monitor only runs once a minute, so steal expired locks here.
		if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": id, "expires_at": bson.M{"$lt": now}}); err != nil {
			l.log.Warn("Failed to clear expired room lock", "room_id", roomID, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: room %s: %w", ErrNotAcquired, roomID, ctx.Err())
		case <-time.After(wait):
		}
		wait = min(wait*2, maxRetryInterval)
	}
}

func (l *MongoLocker) release(id, owner string) {
	// The request context may already be cancelled; the lock must still go.
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": id, "owner": owner}); err != nil {
		l.log.Warn("Failed to release room lock", "lock_id", id, "error", err)
	}
}
