package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "officehub/internal/bookings/errors"
	"officehub/pkg/config"
	mongodb "officehub/pkg/db/mongo"
	"officehub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Meeting_room_bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	// FindOverlapping returns the room's bookings intersecting [start, end).
	FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]*model.Booking, error)
	// FindActiveFrom returns bookings with end_time >= from sorted by start_time.
	// An empty roomID matches every room.
	FindActiveFrom(ctx context.Context, roomID string, from time.Time) ([]*model.Booking, error)
	DeleteByRoomAndID(ctx context.Context, roomID, id string) (*model.Booking, error)
	DeleteByRoom(ctx context.Context, roomID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateID, booking.ID)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]*model.Booking, error) {
	filter := bson.M{
		"room_id":    roomID,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	return r.find(ctx, filter)
}

func (r *mongoBookingRepository) FindActiveFrom(ctx context.Context, roomID string, from time.Time) ([]*model.Booking, error) {
	filter := bson.M{"end_time": bson.M{"$gte": from}}
	if roomID != "" {
		filter["room_id"] = roomID
	}
	return r.find(ctx, filter)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "start_time", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	for _, b := range bookings {
		toUTC(b)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) DeleteByRoomAndID(ctx context.Context, roomID, id string) (*model.Booking, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id, "room_id": roomID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete booking: %w", err)
	}
	toUTC(&booking)
	return &booking, nil
}

func (r *mongoBookingRepository) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	return r.deleteMany(ctx, bson.M{"room_id": roomID})
}

func (r *mongoBookingRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.deleteMany(ctx, bson.M{})
}

func (r *mongoBookingRepository) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookings: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// BSON dates come back in the local zone.
func toUTC(b *model.Booking) {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
}
