package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	roomserrors "officehub/internal/rooms/errors"
	"officehub/internal/rooms/repository"
	"officehub/internal/rooms/seed"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/model"
	"officehub/pkg/timeutil"
)

// BookingReader is the read side of the booking store that the status view needs.
type BookingReader interface {
	FindActiveFrom(ctx context.Context, roomID string, from time.Time) ([]*model.Booking, error)
}

type RoomService interface {
	// Seed writes the room catalogue when the collection is empty.
	Seed(ctx context.Context) (int64, error)
	// EnsureSeeded runs Seed at most once per process unless it failed.
	EnsureSeeded(ctx context.Context) error
	Get(ctx context.Context, id string) (*model.MeetingRoom, error)
	ListWithStatus(ctx context.Context, filter model.RoomFilter) ([]*model.RoomStatusView, error)
	Locations(ctx context.Context) ([]string, error)
	Floors(ctx context.Context, location string) ([]int, error)
}

type roomService struct {
	repo     repository.RoomRepository
	bookings BookingReader
	cfg      *config.Config
	clock    timeutil.Clock

	seedMu sync.Mutex
	seeded bool
}

type Option func(*roomService)

func WithClock(clock timeutil.Clock) Option {
	return func(s *roomService) { s.clock = clock }
}

func NewRoomService(repo repository.RoomRepository, bookings BookingReader, cfg *config.Config, opts ...Option) RoomService {
	s := &roomService{
		repo:     repo,
		bookings: bookings,
		cfg:      cfg,
		clock:    timeutil.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *roomService) Seed(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count meeting rooms", "error", err)
		return 0, apperrors.StorageUnavailable("Failed to read meeting rooms", err)
	}
	if count > 0 {
		s.cfg.Log.Debug("Meeting rooms already seeded", "count", count)
		return 0, nil
	}

	inserted, err := s.repo.UpsertMany(ctx, seed.Rooms(s.clock.Now()))
	if err != nil {
		s.cfg.Log.Error("Failed to seed meeting rooms", "error", err)
		return 0, apperrors.StorageUnavailable("Failed to seed meeting rooms", err)
	}

	s.cfg.Log.Info("Meeting rooms seeded", "inserted", inserted)
	return inserted, nil
}

func (s *roomService) EnsureSeeded(ctx context.Context) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	if s.seeded {
		return nil
	}
	if _, err := s.Seed(ctx); err != nil {
		return err
	}
	s.seeded = true
	return nil
}

func (s *roomService) Get(ctx context.Context, id string) (*model.MeetingRoom, error) {
	if id == "" {
		return nil, apperrors.RoomNotFound(id)
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.RoomNotFound(id)
		}
		s.cfg.Log.Error("Failed to load meeting room", "room_id", id, "error", err)
		return nil, apperrors.StorageUnavailable("Failed to load meeting room", err)
	}
	return room, nil
}

func (s *roomService) ListWithStatus(ctx context.Context, filter model.RoomFilter) ([]*model.RoomStatusView, error) {
	switch filter.Status {
	case "", model.RoomStatusOccupied, model.RoomStatusVacant:
	default:
		return nil, apperrors.InvalidInput("status must be one of: occupied vacant").
			WithDetails(map[string]any{"status": filter.Status})
	}

	now := s.clock.Now()

	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list meeting rooms", "error", err)
		return nil, apperrors.StorageUnavailable("Failed to list meeting rooms", err)
	}

	bookings, err := s.bookings.FindActiveFrom(ctx, "", now)
	if err != nil {
		s.cfg.Log.Error("Failed to list live bookings", "error", err)
		return nil, apperrors.StorageUnavailable("Failed to list bookings", err)
	}

	views := BuildStatus(rooms, bookings, now)
	return applyFilter(views, filter), nil
}

// BuildStatus annotates rooms with the bookings that have not ended by now.
// bookings must be sorted by start time. A room is occupied when some
// booking satisfies start <= now <= end; the earliest such booking is the
// current one.
func BuildStatus(rooms []*model.MeetingRoom, bookings []*model.Booking, now time.Time) []*model.RoomStatusView {
	byRoom := make(map[string][]*model.Booking, len(rooms))
	for _, b := range bookings {
		if b.EndTime.Before(now) {
			continue
		}
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	views := make([]*model.RoomStatusView, 0, len(rooms))
	for _, room := range rooms {
		view := &model.RoomStatusView{
			MeetingRoom: *room,
			Status:      model.RoomStatusVacant,
			Bookings:    byRoom[room.ID],
		}
		if view.Bookings == nil {
			view.Bookings = []*model.Booking{}
		}
		for _, b := range view.Bookings {
			if !b.StartTime.After(now) && !b.EndTime.Before(now) {
				view.Status = model.RoomStatusOccupied
				view.CurrentBooking = b
				break
			}
		}
		views = append(views, view)
	}
	return views
}

func applyFilter(views []*model.RoomStatusView, filter model.RoomFilter) []*model.RoomStatusView {
	if filter.Location == "" && filter.Floor == nil && filter.Status == "" {
		return views
	}

	out := make([]*model.RoomStatusView, 0, len(views))
	for _, v := range views {
		if filter.Location != "" && v.Location != filter.Location {
			continue
		}
		if filter.Floor != nil && v.Floor != *filter.Floor {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *roomService) Locations(ctx context.Context) ([]string, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list meeting rooms", "error", err)
		return nil, apperrors.StorageUnavailable("Failed to list meeting rooms", err)
	}

	seen := make(map[string]struct{})
	locations := []string{}
	for _, r := range rooms {
		if _, ok := seen[r.Location]; ok {
			continue
		}
		seen[r.Location] = struct{}{}
		locations = append(locations, r.Location)
	}
	sort.Strings(locations)
	return locations, nil
}

// Floors lists the distinct floors, limited to one location when given.
func (s *roomService) Floors(ctx context.Context, location string) ([]int, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list meeting rooms", "error", err)
		return nil, apperrors.StorageUnavailable("Failed to list meeting rooms", err)
	}

	seen := make(map[int]struct{})
	floors := []int{}
	for _, r := range rooms {
		if location != "" && r.Location != location {
			continue
		}
		if _, ok := seen[r.Floor]; ok {
			continue
		}
		seen[r.Floor] = struct{}{}
		floors = append(floors, r.Floor)
	}
	sort.Ints(floors)
	return floors, nil
}
