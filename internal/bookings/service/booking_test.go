package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"officehub/internal/bookings/events"
	"officehub/internal/bookings/lock"
	"officehub/internal/bookings/repository"
	"officehub/internal/bookings/validator"
	roomsrepo "officehub/internal/rooms/repository"
	roomsservice "officehub/internal/rooms/service"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/kafka"
	"officehub/pkg/logger"
	"officehub/pkg/model"
	"officehub/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ovalRoom = "ifc_oval_14"

// 2030-03-04 is a Monday; every test starts the day at 08:00 UTC.
var dayStart = time.Date(2030, 3, 4, 8, 0, 0, 0, time.UTC)

func at(hhmm string) string {
	return "2030-03-04T" + hhmm
}

type fixture struct {
	svc      BookingService
	rooms    roomsservice.RoomService
	repo     repository.BookingRepository
	clock    *timeutil.FixedClock
	recorder *recordingPublisher
}

type recordingPublisher struct {
	mu        sync.Mutex
	created   []*model.Booking
	cancelled []*model.Booking
	cleared   []int64
}

func (p *recordingPublisher) BookingCreated(_ context.Context, b *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, b)
}

func (p *recordingPublisher) BookingCancelled(_ context.Context, b *model.Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, b)
}

func (p *recordingPublisher) BookingsCleared(_ context.Context, _ string, count int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = append(p.cleared, count)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{Log: logger.Discard()}
	clock := timeutil.NewFixedClock(dayStart)
	bookingRepo := repository.NewMemoryBookingRepository()

	rooms := roomsservice.NewRoomService(roomsrepo.NewMemoryRoomRepository(), bookingRepo, cfg, roomsservice.WithClock(clock))
	_, err := rooms.Seed(context.Background())
	require.NoError(t, err)

	recorder := &recordingPublisher{}
	svc := NewBookingService(
		bookingRepo,
		rooms,
		lock.NewLocalLocker(),
		validator.NewBookingValidator(cfg.Log),
		recorder,
		cfg,
		WithClock(clock),
	)

	return &fixture{svc: svc, rooms: rooms, repo: bookingRepo, clock: clock, recorder: recorder}
}

func request(start, end string) *model.BookingRequest {
	return &model.BookingRequest{
		EmployeeName: "  Asha   Rao ",
		EmployeeID:   "e 100",
		StartTime:    start,
		EndTime:      end,
		Purpose:      "Design review",
	}
}

func (f *fixture) book(t *testing.T, start, end string) *model.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), ovalRoom, request(at(start), at(end)))
	require.NoError(t, err)
	return b
}

func TestOverlaps(t *testing.T) {
	base := dayStart.Add(2 * time.Hour)
	h := time.Hour

	tests := []struct {
		name             string
		aStart, aEnd     time.Time
		bStart, bEnd     time.Time
		expectedOverlaps bool
	}{
		{"identical", base, base.Add(h), base, base.Add(h), true},
		{"partial tail", base, base.Add(h), base.Add(h / 2), base.Add(2 * h), true},
		{"contained", base, base.Add(3 * h), base.Add(h), base.Add(2 * h), true},
		{"adjacent after", base, base.Add(h), base.Add(h), base.Add(2 * h), false},
		{"adjacent before", base.Add(h), base.Add(2 * h), base, base.Add(h), false},
		{"disjoint", base, base.Add(h), base.Add(3 * h), base.Add(4 * h), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedOverlaps, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.expectedOverlaps, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestFindConflict(t *testing.T) {
	base := dayStart.Add(2 * time.Hour)
	existing := []*model.Booking{
		{ID: "a", StartTime: base, EndTime: base.Add(time.Hour)},
		{ID: "b", StartTime: base.Add(2 * time.Hour), EndTime: base.Add(3 * time.Hour)},
	}

	assert.Nil(t, FindConflict(existing, base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.Nil(t, FindConflict(nil, base, base.Add(time.Hour)))

	conflict := FindConflict(existing, base.Add(30*time.Minute), base.Add(150*time.Minute))
	require.NotNil(t, conflict)
	assert.Equal(t, "a", conflict.ID)
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)

	b := f.book(t, "10:00", "11:00")

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, ovalRoom, b.RoomID)
	assert.Equal(t, "OVAL MEETING ROOM", b.RoomName)
	assert.Equal(t, "Asha Rao", b.EmployeeName)
	assert.Equal(t, "E100", b.EmployeeID)
	assert.Equal(t, time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC), b.StartTime)
	assert.Equal(t, dayStart, b.CreatedAt)
	require.Len(t, f.recorder.created, 1)
	assert.Equal(t, b.ID, f.recorder.created[0].ID)
}

func TestCreate_SequentialBookingsSortedByStart(t *testing.T) {
	f := newFixture(t)

	f.book(t, "14:00", "15:00")
	f.book(t, "09:00", "10:00")
	f.book(t, "11:00", "12:00")

	live, err := f.repo.FindActiveFrom(context.Background(), ovalRoom, dayStart)
	require.NoError(t, err)
	require.Len(t, live, 3)
	for i := 1; i < len(live); i++ {
		assert.True(t, live[i-1].StartTime.Before(live[i].StartTime))
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		roomID   string
		req      *model.BookingRequest
		wantCode string
	}{
		{
			name:     "missing employee id",
			roomID:   ovalRoom,
			req:      &model.BookingRequest{EmployeeName: "Asha", StartTime: at("10:00"), EndTime: at("11:00")},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unknown room",
			roomID:   "broom_cupboard",
			req:      request(at("10:00"), at("11:00")),
			wantCode: apperrors.CodeRoomNotFound,
		},
		{
			name:     "unparseable start",
			roomID:   ovalRoom,
			req:      request("tomorrow at ten", at("11:00")),
			wantCode: apperrors.CodeInvalidTimestamp,
		},
		{
			name:     "unparseable end",
			roomID:   ovalRoom,
			req:      request(at("10:00"), "2030-13-40T99:00"),
			wantCode: apperrors.CodeInvalidTimestamp,
		},
		{
			name:     "start in the past",
			roomID:   ovalRoom,
			req:      request(at("07:59"), at("09:00")),
			wantCode: apperrors.CodePastBooking,
		},
		{
			name:     "past start wins over bad interval",
			roomID:   ovalRoom,
			req:      request(at("07:00"), at("06:00")),
			wantCode: apperrors.CodePastBooking,
		},
		{
			name:     "end equals start",
			roomID:   ovalRoom,
			req:      request(at("10:00"), at("10:00")),
			wantCode: apperrors.CodeInvalidInterval,
		},
		{
			name:     "end before start",
			roomID:   ovalRoom,
			req:      request(at("11:00"), at("10:00")),
			wantCode: apperrors.CodeInvalidInterval,
		},
		{
			name:     "unknown room wins over bad timestamp",
			roomID:   "nowhere",
			req:      request("garbage", "garbage"),
			wantCode: apperrors.CodeRoomNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Create(context.Background(), tt.roomID, tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Empty(t, f.recorder.created)
		})
	}
}

func TestCreate_StartingExactlyNowIsAccepted(t *testing.T) {
	f := newFixture(t)
	f.book(t, "08:00", "08:30")
}

func TestCreate_ZuluAndOffsetInputs(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), ovalRoom, request("2030-03-04T10:00:00Z", "2030-03-04T11:00:00.000Z"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC), b.StartTime)

	// The offset is dropped and the wall clock kept.
	b, err = f.svc.Create(context.Background(), ovalRoom, request("2030-03-04T12:00:00+05:30", "2030-03-04T13:00:00+05:30"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 3, 4, 12, 0, 0, 0, time.UTC), b.StartTime)
}

func TestCreate_OverlapConflicts(t *testing.T) {
	f := newFixture(t)
	first := f.book(t, "10:00", "11:00")

	_, err := f.svc.Create(context.Background(), ovalRoom, request(at("10:30"), at("11:30")))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingConflict))

	appErr := apperrors.AsAppError(err)
	assert.Contains(t, appErr.Message, "OVAL MEETING ROOM")
	assert.Equal(t, first.ID, appErr.Details["conflicting_booking"])
}

func TestCreate_AdjacentBookingsCoexist(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00", "11:00")
	f.book(t, "11:00", "12:00")
	f.book(t, "09:00", "10:00")

	count, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCreate_DifferentRoomsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	f.book(t, "10:00", "11:00")

	_, err := f.svc.Create(context.Background(), "ifc_board_14", request(at("10:00"), at("11:00")))
	assert.NoError(t, err)
}

func TestCreate_ParallelOverlappingRequests(t *testing.T) {
	for _, n := range []int{2, 5, 25} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			f := newFixture(t)

			var wg sync.WaitGroup
			var mu sync.Mutex
			var successes, conflicts int

			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					// Every pair of these intervals overlaps around 10:30.
					start := fmt.Sprintf("10:%02d", i%30)
					_, err := f.svc.Create(context.Background(), ovalRoom, request(at(start), at("11:00")))

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						successes++
					case apperrors.HasCode(err, apperrors.CodeBookingConflict):
						conflicts++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(i)
			}
			wg.Wait()

			assert.Equal(t, 1, successes)
			assert.Equal(t, n-1, conflicts)

			count, err := f.repo.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestOvalRoomScenario(t *testing.T) {
	f := newFixture(t)
	first := f.book(t, "10:00", "11:00")

	_, err := f.svc.Create(context.Background(), ovalRoom, request(at("10:30"), at("11:30")))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingConflict))

	f.book(t, "11:00", "12:00")

	f.clock.Set(time.Date(2030, 3, 4, 10, 30, 0, 0, time.UTC))
	views, err := f.rooms.ListWithStatus(context.Background(), model.RoomFilter{})
	require.NoError(t, err)

	var oval *model.RoomStatusView
	for _, v := range views {
		if v.ID == ovalRoom {
			oval = v
		}
	}
	require.NotNil(t, oval)
	assert.Equal(t, model.RoomStatusOccupied, oval.Status)
	require.NotNil(t, oval.CurrentBooking)
	assert.Equal(t, first.ID, oval.CurrentBooking.ID)
	assert.Len(t, oval.Bookings, 2)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "10:00", "11:00")

	require.NoError(t, f.svc.Cancel(context.Background(), ovalRoom, b.ID))
	require.Len(t, f.recorder.cancelled, 1)
	assert.Equal(t, b.ID, f.recorder.cancelled[0].ID)

	err := f.svc.Cancel(context.Background(), ovalRoom, b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingNotFound), "second cancel must fail, got %v", err)

	// The freed slot can be booked again.
	f.book(t, "10:00", "11:00")
}

func TestCancel_Errors(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "10:00", "11:00")

	err := f.svc.Cancel(context.Background(), ovalRoom, "does-not-exist")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingNotFound))

	err = f.svc.Cancel(context.Background(), "ifc_board_14", b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBookingNotFound), "booking belongs to another room")

	err = f.svc.Cancel(context.Background(), "nowhere", b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRoomNotFound))
}

func TestClearRoomAndClearAll(t *testing.T) {
	f := newFixture(t)
	f.book(t, "09:00", "10:00")
	f.book(t, "10:00", "11:00")
	_, err := f.svc.Create(context.Background(), "ifc_board_14", request(at("09:00"), at("10:00")))
	require.NoError(t, err)

	cleared, err := f.svc.ClearRoom(context.Background(), ovalRoom)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	_, err = f.svc.ClearRoom(context.Background(), "nowhere")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRoomNotFound))

	cleared, err = f.svc.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	cleared, err = f.svc.ClearAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), cleared)
	assert.Equal(t, []int64{2, 1, 0}, f.recorder.cleared)

	views, err := f.rooms.ListWithStatus(context.Background(), model.RoomFilter{})
	require.NoError(t, err)
	for _, v := range views {
		assert.Equal(t, model.RoomStatusVacant, v.Status, v.ID)
		assert.Empty(t, v.Bookings, v.ID)
		assert.Nil(t, v.CurrentBooking, v.ID)
	}
}

type mockBookingRepository struct {
	repository.BookingRepository
	findOverlappingFunc func(ctx context.Context, roomID string, start, end time.Time) ([]*model.Booking, error)
	createFunc          func(ctx context.Context, booking *model.Booking) error
}

func (m *mockBookingRepository) FindOverlapping(ctx context.Context, roomID string, start, end time.Time) ([]*model.Booking, error) {
	return m.findOverlappingFunc(ctx, roomID, start, end)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return m.createFunc(ctx, booking)
}

func TestCreate_StorageFailures(t *testing.T) {
	cfg := &config.Config{Log: logger.Discard()}
	clock := timeutil.NewFixedClock(dayStart)
	rooms := roomsservice.NewRoomService(roomsrepo.NewMemoryRoomRepository(), repository.NewMemoryBookingRepository(), cfg)
	_, err := rooms.Seed(context.Background())
	require.NoError(t, err)

	storageDown := errors.New("server selection timeout")

	tests := []struct {
		name string
		repo *mockBookingRepository
	}{
		{
			name: "overlap query fails",
			repo: &mockBookingRepository{
				findOverlappingFunc: func(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
					return nil, storageDown
				},
			},
		},
		{
			name: "insert fails",
			repo: &mockBookingRepository{
				findOverlappingFunc: func(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
					return nil, nil
				},
				createFunc: func(context.Context, *model.Booking) error {
					return fmt.Errorf("failed to create booking: %w", storageDown)
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBookingService(tt.repo, rooms, lock.NewLocalLocker(), validator.NewBookingValidator(cfg.Log), nil, cfg, WithClock(clock))

			_, err := svc.Create(context.Background(), ovalRoom, request(at("10:00"), at("11:00")))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageUnavailable))
			assert.ErrorIs(t, err, storageDown)
		})
	}
}

type blockedLocker struct{}

func (blockedLocker) Acquire(ctx context.Context, _ string) (lock.ReleaseFunc, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", lock.ErrNotAcquired, ctx.Err())
}

func TestCreate_LockTimeoutIsStorageUnavailable(t *testing.T) {
	cfg := &config.Config{Log: logger.Discard()}
	clock := timeutil.NewFixedClock(dayStart)
	bookingRepo := repository.NewMemoryBookingRepository()
	rooms := roomsservice.NewRoomService(roomsrepo.NewMemoryRoomRepository(), bookingRepo, cfg)
	_, err := rooms.Seed(context.Background())
	require.NoError(t, err)

	svc := NewBookingService(bookingRepo, rooms, blockedLocker{}, validator.NewBookingValidator(cfg.Log), events.NoopPublisher{}, cfg, WithClock(clock))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Create(ctx, ovalRoom, request(at("10:00"), at("11:00")))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageUnavailable))
	assert.ErrorIs(t, err, lock.ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreate_StorageCallsEndBeforeLockLease(t *testing.T) {
	cfg := &config.Config{Log: logger.Discard(), LockBackend: config.LockRedis, LockTTL: 40 * time.Millisecond}
	clock := timeutil.NewFixedClock(dayStart)
	rooms := roomsservice.NewRoomService(roomsrepo.NewMemoryRoomRepository(), repository.NewMemoryBookingRepository(), cfg)
	_, err := rooms.Seed(context.Background())
	require.NoError(t, err)

	var deadline time.Time
	var hasDeadline bool
	repo := &mockBookingRepository{
		findOverlappingFunc: func(ctx context.Context, _ string, _, _ time.Time) ([]*model.Booking, error) {
			deadline, hasDeadline = ctx.Deadline()
			return nil, nil
		},
		createFunc: func(ctx context.Context, _ *model.Booking) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	svc := NewBookingService(repo, rooms, lock.NewLocalLocker(), validator.NewBookingValidator(cfg.Log), nil, cfg, WithClock(clock))

	started := time.Now()
	_, err = svc.Create(context.Background(), ovalRoom, request(at("10:00"), at("11:00")))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageUnavailable))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), time.Second)
	require.True(t, hasDeadline)
	assert.False(t, deadline.After(started.Add(cfg.LockLease())))
}

func TestCreate_LocalLockHasNoLeaseDeadline(t *testing.T) {
	cfg := &config.Config{Log: logger.Discard(), LockBackend: config.LockLocal, LockTTL: 40 * time.Millisecond}
	clock := timeutil.NewFixedClock(dayStart)
	rooms := roomsservice.NewRoomService(roomsrepo.NewMemoryRoomRepository(), repository.NewMemoryBookingRepository(), cfg)
	_, err := rooms.Seed(context.Background())
	require.NoError(t, err)

	var hasDeadline bool
	repo := &mockBookingRepository{
		findOverlappingFunc: func(ctx context.Context, _ string, _, _ time.Time) ([]*model.Booking, error) {
			_, hasDeadline = ctx.Deadline()
			return nil, nil
		},
		createFunc: func(context.Context, *model.Booking) error { return nil },
	}
	svc := NewBookingService(repo, rooms, lock.NewLocalLocker(), validator.NewBookingValidator(cfg.Log), nil, cfg, WithClock(clock))

	_, err = svc.Create(context.Background(), ovalRoom, request(at("10:00"), at("11:00")))
	require.NoError(t, err)
	assert.False(t, hasDeadline)
}

type unreachableBroker struct{}

func (unreachableBroker) Publish(ctx context.Context, _ kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCreate_SlowBrokerDoesNotHoldRequest(t *testing.T) {
	cfg := &config.Config{Log: logger.Discard()}
	clock := timeutil.NewFixedClock(dayStart)
	bookingRepo := repository.NewMemoryBookingRepository()
	rooms := roomsservice.NewRoomService(roomsrepo.NewMemoryRoomRepository(), bookingRepo, cfg)
	_, err := rooms.Seed(context.Background())
	require.NoError(t, err)

	publisher := events.NewKafkaPublisher(unreachableBroker{}, cfg.Log, events.WithPublishTimeout(200*time.Millisecond))
	defer publisher.Close(context.Background())

	svc := NewBookingService(bookingRepo, rooms, lock.NewLocalLocker(), validator.NewBookingValidator(cfg.Log), publisher, cfg, WithClock(clock))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	booking, err := svc.Create(ctx, ovalRoom, request(at("10:00"), at("11:00")))
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 100*time.Millisecond)

	require.NoError(t, svc.Cancel(ctx, ovalRoom, booking.ID))
	_, err = svc.ClearAll(ctx)
	require.NoError(t, err)
	assert.NoError(t, ctx.Err())
}
