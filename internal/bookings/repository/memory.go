package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "officehub/internal/bookings/errors"
	"officehub/pkg/model"
)

// memoryBookingRepository backs STORAGE_DRIVER=memory and the tests.
type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		bookings: make(map[string]model.Booking),
	}
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bookings[booking.ID]; exists {
		return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateID, booking.ID)
	}
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *memoryBookingRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]*model.Booking, error) {
	return r.collect(ctx, func(b *model.Booking) bool {
		return b.RoomID == roomID && b.StartTime.Before(end) && b.EndTime.After(start)
	})
}

func (r *memoryBookingRepository) FindActiveFrom(ctx context.Context, roomID string, from time.Time) ([]*model.Booking, error) {
	return r.collect(ctx, func(b *model.Booking) bool {
		return (roomID == "" || b.RoomID == roomID) && !b.EndTime.Before(from)
	})
}

func (r *memoryBookingRepository) collect(ctx context.Context, match func(*model.Booking) bool) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Booking{}
	for _, b := range r.bookings {
		b := b
		if match(&b) {
			out = append(out, &b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryBookingRepository) DeleteByRoomAndID(ctx context.Context, roomID, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.RoomID != roomID {
		return nil, bookingserrors.ErrNotFound
	}
	delete(r.bookings, id)
	return &b, nil
}

func (r *memoryBookingRepository) DeleteByRoom(ctx context.Context, roomID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, b := range r.bookings {
		if b.RoomID == roomID {
			delete(r.bookings, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryBookingRepository) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.bookings))
	r.bookings = make(map[string]model.Booking)
	return n, nil
}

func (r *memoryBookingRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bookings)), nil
}
