package service

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexuios/internal/db"
	"nexuios/internal/entities"
	"nexuios/internal/errs"
	"nexuios/internal/repository"
)

type memRooms struct {
	rooms map[int]*db.Room
}

func (m *memRooms) FindRoom(_ context.Context, id int) (*db.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	copied := *room
	return &copied, nil
}

func (m *memRooms) SetAvailability(_ context.Context, id int, available bool) error {
	if room, ok := m.rooms[id]; ok {
		room.Availability = available
	}
	return nil
}

type memReservations struct {
	byID   map[int]*db.Reservation
	nextID int
}

func (m *memReservations) FindByID(_ context.Context, id int) (*db.Reservation, error) {
	res, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *res
	return &copied, nil
}

func (m *memReservations) FindOverlapping(_ context.Context, roomID int, date, start, end string, excludeID int) ([]db.Reservation, error) {
	var out []db.Reservation
	for _, res := range m.byID {
		if res.RoomID != roomID || res.Date != date || res.ID == excludeID {
			continue
		}
		if res.StartTime < end && start < res.EndTime {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *memReservations) ListForDate(_ context.Context, roomID int, date string) ([]db.Reservation, error) {
	var out []db.Reservation
	for _, res := range m.byID {
		if res.RoomID == roomID && res.Date == date {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *memReservations) Create(_ context.Context, res *db.Reservation) error {
	m.nextID++
	res.ID = m.nextID
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	copied := *res
	m.byID[res.ID] = &copied
	return nil
}

func (m *memReservations) Update(_ context.Context, res *db.Reservation) error {
	res.UpdatedAt = time.Now()
	copied := *res
	m.byID[res.ID] = &copied
	return nil
}

func (m *memReservations) Delete(_ context.Context, id int) error {
	delete(m.byID, id)
	return nil
}

// memUow hands the callback the in-memory stores; conflicts>0 makes the next
// calls fail with a retryable conflict first.
type memUow struct {
	rooms        *memRooms
	reservations *memReservations
	conflicts    int
	calls        int
}

func (u *memUow) InRoomLock(_ context.Context, _ int, _ string, fn func(repository.RoomStore, repository.ReservationStore) error) error {
	u.calls++
	if u.conflicts > 0 {
		u.conflicts--
		return errs.Conflict("The booking could not be completed due to concurrent activity.")
	}
	return fn(u.rooms, u.reservations)
}

func newTestBooking(rooms ...*db.Room) (*BookingService, *memRooms, *memReservations, *memUow) {
	mr := &memRooms{rooms: map[int]*db.Room{}}
	for _, room := range rooms {
		mr.rooms[room.ID] = room
	}
	mres := &memReservations{byID: map[int]*db.Reservation{}}
	uow := &memUow{rooms: mr, reservations: mres}
	svc := NewBookingService(uow, mr, mres, nil, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }
	return svc, mr, mres, uow
}

func sharedRoom(id, seats int) *db.Room {
	return &db.Room{ID: id, Name: "shared", NumSeats: seats, RoomType: db.TypeSharedSpace, Availability: true}
}

func exclusiveRoom(id, seats int) *db.Room {
	return &db.Room{ID: id, Name: "meeting", NumSeats: seats, RoomType: db.TypeRoom, Availability: true}
}

func request(roomID int, typ, date, start, end string, seats int) *entities.ReservationRequest {
	return &entities.ReservationRequest{
		RoomID:    roomID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Type:      typ,
		NumSeats:  seats,
	}
}

func TestCreateReservationRoomChecks(t *testing.T) {
	tests := []struct {
		name string
		room *db.Room
		req  *entities.ReservationRequest
		kind errs.Kind
	}{
		{
			name: "missing room",
			room: nil,
			req:  request(99, db.TypeRoom, "2026-02-01", "09:00", "10:00", 0),
			kind: errs.KindRoomUnavailable,
		},
		{
			name: "room flagged unavailable",
			room: &db.Room{ID: 1, NumSeats: 4, RoomType: db.TypeRoom, Availability: false},
			req:  request(1, db.TypeRoom, "2026-02-01", "09:00", "10:00", 0),
			kind: errs.KindRoomUnavailable,
		},
		{
			name: "type mismatch",
			room: exclusiveRoom(1, 4),
			req:  request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 2),
			kind: errs.KindTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc *BookingService
			if tt.room != nil {
				svc, _, _, _ = newTestBooking(tt.room)
			} else {
				svc, _, _, _ = newTestBooking()
			}
			_, err := svc.CreateReservation(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestCreateReservationExclusiveRoom(t *testing.T) {
	svc, _, _, _ := newTestBooking(exclusiveRoom(1, 4))
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", "09:00", "10:00", 0))
	require.NoError(t, err)

	// Adjacent slot: ends exactly when the other starts, and vice versa.
	_, err = svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", "10:00", "11:00", 0))
	require.NoError(t, err)
	_, err = svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", "08:00", "09:00", 0))
	require.NoError(t, err)

	// Contained interval overlaps.
	_, err = svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", "09:30", "09:45", 0))
	require.Error(t, err)
	assert.Equal(t, errs.KindSlotTaken, errs.KindOf(err))

	// Same window on another date is fine.
	_, err = svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-02", "09:30", "09:45", 0))
	require.NoError(t, err)
}

func TestCreateReservationSharedCapacity(t *testing.T) {
	svc, _, _, _ := newTestBooking(sharedRoom(1, 10))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 6))
	require.NoError(t, err)
	require.True(t, res.NumSeats.Valid)
	assert.EqualValues(t, 6, res.NumSeats.Int64)

	// 6+5 > 10 during the shared 09:30-10:00 window.
	_, err = svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "09:30", "10:30", 5))
	require.Error(t, err)
	assert.Equal(t, errs.KindCapacityExceeded, errs.KindOf(err))

	// 6+4 fits exactly.
	_, err = svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "09:30", "10:30", 4))
	require.NoError(t, err)

	// Adjacent booking sees none of the earlier seats.
	_, err = svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "10:30", "11:30", 10))
	require.NoError(t, err)
}

func TestCreateReservationSharedBlockedByExclusiveRow(t *testing.T) {
	svc, _, reservations, _ := newTestBooking(sharedRoom(1, 10))
	ctx := context.Background()

	// Legacy row with exclusive type on a shared room: treated as full occupancy.
	reservations.byID[50] = &db.Reservation{
		ID: 50, RoomID: 1, Date: "2026-02-01", StartTime: "09:00", EndTime: "12:00", Type: db.TypeRoom,
	}
	reservations.nextID = 50

	_, err := svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "10:00", "11:00", 1))
	require.Error(t, err)
	assert.Equal(t, errs.KindCapacityExceeded, errs.KindOf(err))
}

func TestCreateReservationEchoesFields(t *testing.T) {
	svc, _, _, _ := newTestBooking(sharedRoom(3, 8))
	ctx := context.Background()

	res, err := svc.CreateReservation(ctx, request(3, db.TypeSharedSpace, "2026-03-01", "13:00", "15:30", 2))
	require.NoError(t, err)

	fetched, err := svc.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.RoomID, fetched.RoomID)
	assert.Equal(t, "2026-03-01", fetched.Date)
	assert.Equal(t, "13:00", fetched.StartTime)
	assert.Equal(t, "15:30", fetched.EndTime)
	assert.Equal(t, db.TypeSharedSpace, fetched.Type)
	assert.Equal(t, res.NumSeats, fetched.NumSeats)
}

func TestUpdateReservation(t *testing.T) {
	svc, _, _, _ := newTestBooking(sharedRoom(1, 10))
	ctx := context.Background()

	_, err := svc.UpdateReservation(ctx, 404, request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 2))
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	a, err := svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 3))
	require.NoError(t, err)
	_, err = svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "09:30", "10:30", 4))
	require.NoError(t, err)

	// A's own 3 seats are excluded, but 4+8 > 10 still fails.
	_, err = svc.UpdateReservation(ctx, a.ID, request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 8))
	require.Error(t, err)
	assert.Equal(t, errs.KindCapacityExceeded, errs.KindOf(err))

	// 4+6 fits once A's prior seats are out of the sum.
	updated, err := svc.UpdateReservation(ctx, a.ID, request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 6))
	require.NoError(t, err)
	assert.EqualValues(t, 6, updated.NumSeats.Int64)

	// Every mutable field is replaced.
	moved, err := svc.UpdateReservation(ctx, a.ID, request(1, db.TypeSharedSpace, "2026-02-05", "14:00", "16:00", 1))
	require.NoError(t, err)
	fetched, err := svc.GetReservation(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, moved.Date, fetched.Date)
	assert.Equal(t, "14:00", fetched.StartTime)
	assert.Equal(t, "16:00", fetched.EndTime)
	assert.EqualValues(t, 1, fetched.NumSeats.Int64)
}

func TestUpdateReservationAdjacentAccepted(t *testing.T) {
	svc, _, _, _ := newTestBooking(exclusiveRoom(1, 4))
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", "09:00", "10:00", 0))
	require.NoError(t, err)
	second, err := svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", "11:00", "12:00", 0))
	require.NoError(t, err)

	// Moving the second to start exactly at the first's end must pass.
	_, err = svc.UpdateReservation(ctx, second.ID, request(1, db.TypeRoom, "2026-02-01", "10:00", "11:00", 0))
	require.NoError(t, err)
	_ = first
}

func TestCancelReservation(t *testing.T) {
	svc, rooms, reservations, _ := newTestBooking(&db.Room{
		ID: 1, NumSeats: 4, RoomType: db.TypeRoom, Availability: false,
	})
	ctx := context.Background()

	err := svc.CancelReservation(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))

	// Past-dated: deleted, availability untouched.
	reservations.byID[1] = &db.Reservation{ID: 1, RoomID: 1, Date: "2026-01-10", StartTime: "09:00", EndTime: "10:00", Type: db.TypeRoom}
	require.NoError(t, svc.CancelReservation(ctx, 1))
	assert.NotContains(t, reservations.byID, 1)
	assert.False(t, rooms.rooms[1].Availability)

	// Same-day counts as not strictly future: no release.
	reservations.byID[2] = &db.Reservation{ID: 2, RoomID: 1, Date: "2026-01-15", StartTime: "09:00", EndTime: "10:00", Type: db.TypeRoom}
	require.NoError(t, svc.CancelReservation(ctx, 2))
	assert.False(t, rooms.rooms[1].Availability)

	// Future-dated: deleted and the room is released.
	reservations.byID[3] = &db.Reservation{ID: 3, RoomID: 1, Date: "2026-01-20", StartTime: "09:00", EndTime: "10:00", Type: db.TypeRoom}
	require.NoError(t, svc.CancelReservation(ctx, 3))
	assert.NotContains(t, reservations.byID, 3)
	assert.True(t, rooms.rooms[1].Availability)
}

func TestRemainingSeats(t *testing.T) {
	svc, _, reservations, _ := newTestBooking(sharedRoom(1, 10))
	ctx := context.Background()

	remaining, err := svc.RemainingSeats(ctx, 1, "2026-02-01")
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)

	// 4 seats 09:00-11:00 and 5 seats 10:00-12:00 peak at 9 between 10 and 11.
	seats := func(n int64) sql.NullInt64 { return sql.NullInt64{Int64: n, Valid: true} }
	reservations.byID[1] = &db.Reservation{ID: 1, RoomID: 1, Date: "2026-02-01", StartTime: "09:00", EndTime: "11:00", NumSeats: seats(4), Type: db.TypeSharedSpace}
	reservations.byID[2] = &db.Reservation{ID: 2, RoomID: 1, Date: "2026-02-01", StartTime: "10:00", EndTime: "12:00", NumSeats: seats(5), Type: db.TypeSharedSpace}

	remaining, err = svc.RemainingSeats(ctx, 1, "2026-02-01")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	// Back-to-back bookings never stack: 11:00-12:00 next to 12:00-13:00.
	reservations.byID[3] = &db.Reservation{ID: 3, RoomID: 1, Date: "2026-02-02", StartTime: "11:00", EndTime: "12:00", NumSeats: seats(7), Type: db.TypeSharedSpace}
	reservations.byID[4] = &db.Reservation{ID: 4, RoomID: 1, Date: "2026-02-02", StartTime: "12:00", EndTime: "13:00", NumSeats: seats(7), Type: db.TypeSharedSpace}
	remaining, err = svc.RemainingSeats(ctx, 1, "2026-02-02")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	// An exclusive row consumes the whole capacity.
	reservations.byID[5] = &db.Reservation{ID: 5, RoomID: 1, Date: "2026-02-03", StartTime: "09:00", EndTime: "10:00", Type: db.TypeRoom}
	remaining, err = svc.RemainingSeats(ctx, 1, "2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, err = svc.RemainingSeats(ctx, 99, "2026-02-01")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestConflictRetriedOnce(t *testing.T) {
	svc, _, _, uow := newTestBooking(sharedRoom(1, 10))
	ctx := context.Background()

	uow.conflicts = 1
	_, err := svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "09:00", "10:00", 2))
	require.NoError(t, err)
	assert.Equal(t, 2, uow.calls)

	uow.conflicts = 2
	_, err = svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", "10:00", "11:00", 2))
	require.Error(t, err)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
}

// Committed exclusive reservations on the same room and date must never
// overlap, whatever interval pairs are thrown at the engine.
func TestExclusiveReservationsNeverOverlap(t *testing.T) {
	svc, _, reservations, _ := newTestBooking(exclusiveRoom(1, 4))
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))

	clock := func(minutes int) string {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute).Format("15:04")
	}

	for i := 0; i < 200; i++ {
		start := rng.Intn(23 * 60)
		end := start + 15 + rng.Intn(120)
		if end > 24*60-1 {
			end = 24*60 - 1
		}
		svc.CreateReservation(ctx, request(1, db.TypeRoom, "2026-02-01", clock(start), clock(end), 0))
	}

	committed, err := reservations.ListForDate(ctx, 1, "2026-02-01")
	require.NoError(t, err)
	require.NotEmpty(t, committed)
	for i := range committed {
		for j := range committed {
			if i == j {
				continue
			}
			overlap := committed[i].StartTime < committed[j].EndTime && committed[j].StartTime < committed[i].EndTime
			assert.Falsef(t, overlap, "reservations %d and %d overlap: [%s,%s) vs [%s,%s)",
				committed[i].ID, committed[j].ID,
				committed[i].StartTime, committed[i].EndTime,
				committed[j].StartTime, committed[j].EndTime)
		}
	}
}

// At any instant, the seats held by overlapping shared bookings must stay
// within capacity after any sequence of accepted requests.
func TestSharedSeatsNeverExceedCapacity(t *testing.T) {
	const capacity = 10
	svc, _, reservations, _ := newTestBooking(sharedRoom(1, capacity))
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	clock := func(minutes int) string {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute).Format("15:04")
	}

	for i := 0; i < 300; i++ {
		start := rng.Intn(23 * 60)
		end := start + 15 + rng.Intn(180)
		if end > 24*60-1 {
			end = 24*60 - 1
		}
		svc.CreateReservation(ctx, request(1, db.TypeSharedSpace, "2026-02-01", clock(start), clock(end), 1+rng.Intn(capacity)))
	}

	committed, err := reservations.ListForDate(ctx, 1, "2026-02-01")
	require.NoError(t, err)
	require.NotEmpty(t, committed)
	assert.LessOrEqual(t, peakOccupancy(capacity, committed), capacity)
}
