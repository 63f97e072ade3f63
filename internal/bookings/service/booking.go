package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "officehub/internal/bookings/errors"
	"officehub/internal/bookings/events"
	"officehub/internal/bookings/lock"
	"officehub/internal/bookings/repository"
	"officehub/internal/bookings/validator"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/metrics"
	"officehub/pkg/model"
	"officehub/pkg/sanitizer"
	"officehub/pkg/timeutil"

	"github.com/google/uuid"
)

// RoomFinder resolves a room id. It returns a RoomNotFound AppError for unknown ids.
type RoomFinder interface {
	Get(ctx context.Context, id string) (*model.MeetingRoom, error)
}

type BookingService interface {
	Create(ctx context.Context, roomID string, req *model.BookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, roomID, bookingID string) error
	// ClearRoom removes every booking of one room and returns how many were removed.
	ClearRoom(ctx context.Context, roomID string) (int64, error)
	// ClearAll removes every booking of every room.
	ClearAll(ctx context.Context) (int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     RoomFinder
	locker    lock.RoomLocker
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	clock     timeutil.Clock
	metrics   *metrics.Metrics
}

type Option func(*bookingService)

func WithClock(clock timeutil.Clock) Option {
	return func(s *bookingService) { s.clock = clock }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *bookingService) { s.metrics = m }
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms RoomFinder,
	locker lock.RoomLocker,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &bookingService{
		repo:      repo,
		rooms:     rooms,
		locker:    locker,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		clock:     timeutil.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Intervals that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FindConflict returns the first booking in existing that overlaps [start, end), or nil.
func FindConflict(existing []*model.Booking, start, end time.Time) *model.Booking {
	for _, b := range existing {
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			return b
		}
	}
	return nil
}

func (s *bookingService) Create(ctx context.Context, roomID string, req *model.BookingRequest) (*model.Booking, error) {
	booking, err := s.create(ctx, roomID, req)
	s.recordOutcome(err)
	if err != nil {
		return nil, err
	}

	s.publisher.BookingCreated(ctx, booking)
	return booking, nil
}

func (s *bookingService) create(ctx context.Context, roomID string, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "room_id", roomID, "error", err)
		return nil, validationError(err)
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	start, err := timeutil.Normalize(req.StartTime)
	if err != nil {
		return nil, apperrors.InvalidTimestamp("start_time", req.StartTime)
	}
	end, err := timeutil.Normalize(req.EndTime)
	if err != nil {
		return nil, apperrors.InvalidTimestamp("end_time", req.EndTime)
	}

	now := s.clock.Now()
	if start.Before(now) {
		return nil, apperrors.PastBookingRejected(start, now)
	}
	if !end.After(start) {
		return nil, apperrors.InvalidInterval(start, end)
	}

	ctx, release, err := s.acquire(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.repo.FindOverlapping(ctx, room.ID, start, end)
	if err != nil {
		s.cfg.Log.Error("Failed to load overlapping bookings", "room_id", room.ID, "error", err)
		return nil, apperrors.StorageUnavailable("Failed to check room availability", err)
	}
	if conflict := FindConflict(existing, start, end); conflict != nil {
		s.cfg.Log.Info("Booking conflict",
			"room_id", room.ID,
			"conflicting_booking", conflict.ID,
			"start_time", start,
			"end_time", end,
		)
		return nil, apperrors.BookingConflict(room.Name, conflict.ID, conflict.StartTime, conflict.EndTime)
	}

	booking := &model.Booking{
		ID:           uuid.New().String(),
		RoomID:       room.ID,
		RoomName:     room.Name,
		EmployeeName: sanitizer.SanitizeName(req.EmployeeName),
		EmployeeID:   sanitizer.SanitizeEmployeeID(req.EmployeeID),
		StartTime:    start,
		EndTime:      end,
		Purpose:      sanitizer.SanitizeText(req.Purpose),
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", room.ID, "error", err)
		if errors.Is(err, bookingserrors.ErrDuplicateID) {
			return nil, apperrors.Internal("Failed to create booking", err)
		}
		return nil, apperrors.StorageUnavailable("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"employee_id", booking.EmployeeID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, roomID, bookingID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if bookingID == "" {
		return apperrors.BookingNotFound(room.ID, bookingID)
	}

	lockedCtx, release, err := s.acquire(ctx, room.ID)
	if err != nil {
		return err
	}
	removed, err := s.repo.DeleteByRoomAndID(lockedCtx, room.ID, bookingID)
	release()
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.BookingNotFound(room.ID, bookingID)
		}
		s.cfg.Log.Error("Failed to cancel booking", "room_id", room.ID, "id", bookingID, "error", err)
		return apperrors.StorageUnavailable("Failed to cancel booking", err)
	}

	s.metrics.BookingOutcome(metrics.OutcomeCancelled)
	s.cfg.Log.Info("Booking cancelled successfully", "id", bookingID, "room_id", room.ID)
	s.publisher.BookingCancelled(ctx, removed)
	return nil
}

func (s *bookingService) ClearRoom(ctx context.Context, roomID string) (int64, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return 0, err
	}

	lockedCtx, release, err := s.acquire(ctx, room.ID)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.DeleteByRoom(lockedCtx, room.ID)
	release()
	if err != nil {
		s.cfg.Log.Error("Failed to clear room bookings", "room_id", room.ID, "error", err)
		return 0, apperrors.StorageUnavailable("Failed to clear room bookings", err)
	}

	s.metrics.BookingOutcome(metrics.OutcomeCleared)
	s.cfg.Log.Info("Room bookings cleared", "room_id", room.ID, "count", count)
	s.publisher.BookingsCleared(ctx, room.ID, count)
	return count, nil
}

// ClearAll does not take room locks. A booking committed concurrently
// either lands before the delete and is removed, or after it and survives.
func (s *bookingService) ClearAll(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to clear all bookings", "error", err)
		return 0, apperrors.StorageUnavailable("Failed to clear bookings", err)
	}

	s.metrics.BookingOutcome(metrics.OutcomeCleared)
	s.cfg.Log.Info("All bookings cleared", "count", count)
	s.publisher.BookingsCleared(ctx, "", count)
	return count, nil
}

// acquire locks roomID and returns a context that ends before a distributed
// lease can lapse. Work done under the lock must use that context; release
// unlocks the room and cancels it.
func (s *bookingService) acquire(ctx context.Context, roomID string) (context.Context, lock.ReleaseFunc, error) {
	started := time.Now()
	unlock, err := s.locker.Acquire(ctx, roomID)
	s.metrics.ObserveLockWait(time.Since(started))
	if err != nil {
		s.cfg.Log.Warn("Failed to acquire room lock", "room_id", roomID, "error", err)
		return nil, nil, apperrors.StorageUnavailable("Room is busy, please retry", err)
	}

	lease := s.cfg.LockLease()
	if lease <= 0 {
		return ctx, unlock, nil
	}
	lockedCtx, cancel := context.WithTimeout(ctx, lease)
	return lockedCtx, func() {
		cancel()
		unlock()
	}, nil
}

func (s *bookingService) recordOutcome(err error) {
	if err == nil {
		s.metrics.BookingOutcome(metrics.OutcomeCreated)
		return
	}

	switch {
	case apperrors.HasCode(err, apperrors.CodeBookingConflict):
		s.metrics.BookingOutcome(metrics.OutcomeConflict)
	case apperrors.HasCode(err, apperrors.CodeStorageUnavailable),
		apperrors.HasCode(err, apperrors.CodeInternal):
		s.metrics.BookingOutcome(metrics.OutcomeFailed)
	default:
		s.metrics.BookingOutcome(metrics.OutcomeRejected)
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid booking request", verrs.Details())
	}
	return apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
}
