package repository

import (
	"context"
	"sort"
	"sync"

	roomserrors "officehub/internal/rooms/errors"
	"officehub/pkg/model"
)

type memoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]model.MeetingRoom
}

func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoomRepository{
		rooms: make(map[string]model.MeetingRoom),
	}
}

func (r *memoryRoomRepository) FindAll(ctx context.Context) ([]*model.MeetingRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*model.MeetingRoom, 0, len(r.rooms))
	for _, room := range r.rooms {
		room := room
		rooms = append(rooms, &room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return a.Name < b.Name
	})
	return rooms, nil
}

func (r *memoryRoomRepository) FindByID(ctx context.Context, id string) (*model.MeetingRoom, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return &room, nil
}

func (r *memoryRoomRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rooms)), nil
}

func (r *memoryRoomRepository) UpsertMany(ctx context.Context, rooms []*model.MeetingRoom) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var inserted int64
	for _, room := range rooms {
		if _, exists := r.rooms[room.ID]; exists {
			continue
		}
		r.rooms[room.ID] = *room
		inserted++
	}
	return inserted, nil
}
