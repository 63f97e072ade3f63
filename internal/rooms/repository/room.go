package repository

import (
	"context"
	"errors"
	"fmt"

	roomserrors "officehub/internal/rooms/errors"
	"officehub/pkg/config"
	mongodb "officehub/pkg/db/mongo"
	"officehub/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Meeting_rooms"
)

type RoomRepository interface {
	// FindAll returns every room sorted by location, floor and name.
	FindAll(ctx context.Context) ([]*model.MeetingRoom, error)
	FindByID(ctx context.Context, id string) (*model.MeetingRoom, error)
	Count(ctx context.Context) (int64, error)
	// UpsertMany inserts the rooms whose id is not stored yet and leaves
	// existing ones untouched. It returns how many were inserted.
	UpsertMany(ctx context.Context, rooms []*model.MeetingRoom) (int64, error)
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomRepository) FindAll(ctx context.Context) ([]*model.MeetingRoom, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "location", Value: 1},
		{Key: "floor", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.MeetingRoom{}
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode meeting rooms: %w", err)
	}
	for _, room := range rooms {
		room.CreatedAt = room.CreatedAt.UTC()
	}
	return rooms, nil
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.MeetingRoom, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var room model.MeetingRoom
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find meeting room: %w", err)
	}
	room.CreatedAt = room.CreatedAt.UTC()
	return &room, nil
}

func (r *mongoRoomRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count meeting rooms: %w", err)
	}
	return count, nil
}

func (r *mongoRoomRepository) UpsertMany(ctx context.Context, rooms []*model.MeetingRoom) (int64, error) {
	if len(rooms) == 0 {
		return 0, nil
	}

	ctx, cancel := mongodb.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(rooms))
	for _, room := range rooms {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": room.ID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"name":       room.Name,
				"location":   room.Location,
				"floor":      room.Floor,
				"capacity":   room.Capacity,
				"equipment":  room.Equipment,
				"created_at": room.CreatedAt,
			}}).
			SetUpsert(true))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to seed meeting rooms: %w", err)
	}
	return result.UpsertedCount, nil
}
