package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"officehub/internal/rooms/repository"
	"officehub/pkg/config"
	apperrors "officehub/pkg/errors"
	"officehub/pkg/logger"
	"officehub/pkg/model"
	"officehub/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2030, 3, 4, 10, 30, 0, 0, time.UTC)

type stubBookings struct {
	bookings []*model.Booking
	err      error
	calls    int
}

func (s *stubBookings) FindActiveFrom(_ context.Context, roomID string, from time.Time) ([]*model.Booking, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []*model.Booking
	for _, b := range s.bookings {
		if (roomID == "" || b.RoomID == roomID) && !b.EndTime.Before(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, bookings BookingReader) (RoomService, repository.RoomRepository) {
	t.Helper()
	repo := repository.NewMemoryRoomRepository()
	svc := NewRoomService(repo, bookings, &config.Config{Log: logger.Discard()}, WithClock(timeutil.NewFixedClock(now)))
	_, err := svc.Seed(context.Background())
	require.NoError(t, err)
	return svc, repo
}

func hm(h, m int) time.Time {
	return time.Date(2030, 3, 4, h, m, 0, 0, time.UTC)
}

func TestSeed_IsIdempotent(t *testing.T) {
	svc, repo := newTestService(t, &stubBookings{})

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)

	inserted, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, inserted)

	count, err = repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)
}

func TestEnsureSeeded_ConcurrentCallers(t *testing.T) {
	repo := repository.NewMemoryRoomRepository()
	svc := NewRoomService(repo, &stubBookings{}, &config.Config{Log: logger.Discard()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.EnsureSeeded(context.Background()))
		}()
	}
	wg.Wait()

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)
}

func TestGet(t *testing.T) {
	svc, _ := newTestService(t, &stubBookings{})

	room, err := svc.Get(context.Background(), "ifc_board_14")
	require.NoError(t, err)
	assert.Equal(t, "BOARD ROOM", room.Name)
	assert.Equal(t, 20, room.Capacity)

	_, err = svc.Get(context.Background(), "ifc_missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRoomNotFound))
}

func TestBuildStatus(t *testing.T) {
	rooms := []*model.MeetingRoom{
		{ID: "oval", Name: "OVAL"},
		{ID: "board", Name: "BOARD"},
		{ID: "burj", Name: "BURJ"},
	}
	current := &model.Booking{ID: "cur", RoomID: "oval", StartTime: hm(10, 0), EndTime: hm(11, 0)}
	later := &model.Booking{ID: "later", RoomID: "oval", StartTime: hm(11, 0), EndTime: hm(12, 0)}
	endsNow := &model.Booking{ID: "ends-now", RoomID: "board", StartTime: hm(9, 30), EndTime: now}
	ended := &model.Booking{ID: "ended", RoomID: "burj", StartTime: hm(9, 0), EndTime: hm(10, 0)}

	views := BuildStatus(rooms, []*model.Booking{ended, endsNow, current, later}, now)
	require.Len(t, views, 3)

	oval, board, burj := views[0], views[1], views[2]

	assert.Equal(t, model.RoomStatusOccupied, oval.Status)
	assert.Equal(t, "cur", oval.CurrentBooking.ID)
	assert.Len(t, oval.Bookings, 2)

	// Both ends are inclusive for occupancy.
	assert.Equal(t, model.RoomStatusOccupied, board.Status)
	assert.Equal(t, "ends-now", board.CurrentBooking.ID)

	assert.Equal(t, model.RoomStatusVacant, burj.Status)
	assert.Nil(t, burj.CurrentBooking)
	assert.NotNil(t, burj.Bookings)
	assert.Empty(t, burj.Bookings)
}

func TestBuildStatus_StartsExactlyNow(t *testing.T) {
	rooms := []*model.MeetingRoom{{ID: "oval"}}
	b := &model.Booking{ID: "b", RoomID: "oval", StartTime: now, EndTime: hm(11, 0)}

	views := BuildStatus(rooms, []*model.Booking{b}, now)
	assert.Equal(t, model.RoomStatusOccupied, views[0].Status)
}

func TestListWithStatus(t *testing.T) {
	bookings := &stubBookings{bookings: []*model.Booking{
		{ID: "cur", RoomID: "ifc_oval_14", StartTime: hm(10, 0), EndTime: hm(11, 0)},
		{ID: "next", RoomID: "noida_conf_1", StartTime: hm(15, 0), EndTime: hm(16, 0)},
	}}
	svc, _ := newTestService(t, bookings)

	views, err := svc.ListWithStatus(context.Background(), model.RoomFilter{})
	require.NoError(t, err)
	require.Len(t, views, 15)
	assert.Equal(t, 1, bookings.calls, "bookings are read in a single query")

	// Sorted by location, then floor, then name.
	for i := 1; i < len(views); i++ {
		prev, cur := views[i-1], views[i]
		if prev.Location == cur.Location {
			if prev.Floor == cur.Floor {
				assert.LessOrEqual(t, prev.Name, cur.Name)
			} else {
				assert.Less(t, prev.Floor, cur.Floor)
			}
		} else {
			assert.Less(t, prev.Location, cur.Location)
		}
	}

	occupied, err := svc.ListWithStatus(context.Background(), model.RoomFilter{Status: model.RoomStatusOccupied})
	require.NoError(t, err)
	require.Len(t, occupied, 1)
	assert.Equal(t, "ifc_oval_14", occupied[0].ID)

	floor := 14
	ifc14, err := svc.ListWithStatus(context.Background(), model.RoomFilter{Location: "IFC", Floor: &floor, Status: model.RoomStatusVacant})
	require.NoError(t, err)
	assert.Len(t, ifc14, 8)

	noida, err := svc.ListWithStatus(context.Background(), model.RoomFilter{Location: "Noida"})
	require.NoError(t, err)
	require.Len(t, noida, 1)
	assert.Equal(t, model.RoomStatusVacant, noida[0].Status)
	assert.Len(t, noida[0].Bookings, 1)
}

func TestListWithStatus_Errors(t *testing.T) {
	svc, _ := newTestService(t, &stubBookings{err: errors.New("connection refused")})

	_, err := svc.ListWithStatus(context.Background(), model.RoomFilter{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorageUnavailable))

	_, err = svc.ListWithStatus(context.Background(), model.RoomFilter{Status: "haunted"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestLocationsAndFloors(t *testing.T) {
	svc, _ := newTestService(t, &stubBookings{})

	locations, err := svc.Locations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Central Office 75", "IFC", "Noida", "Office 75", "Project Office"}, locations)

	floors, err := svc.Floors(context.Background(), "IFC")
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12, 14}, floors)

	floors, err = svc.Floors(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 11, 12, 14}, floors)

	floors, err = svc.Floors(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, floors)
}
