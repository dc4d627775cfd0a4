package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"nexuios/internal/db"
	"nexuios/internal/entities"
	"nexuios/internal/errs"
	"nexuios/internal/metrics"
	"nexuios/internal/repository"
)

// UnitOfWork serializes a booking's check-then-act sequence per (room, date).
type UnitOfWork interface {
	InRoomLock(ctx context.Context, roomID int, date string, fn func(rooms repository.RoomStore, reservations repository.ReservationStore) error) error
}

// ReservationDirectory covers the read-only listing endpoints.
type ReservationDirectory interface {
	ListReservations(ctx context.Context) ([]db.Reservation, error)
	Search(ctx context.Context, q string) ([]entities.ReservationResponse, error)
	ListRecent(ctx context.Context, limit int) ([]entities.ReservationResponse, error)
}

// BookingService decides whether a reservation request fits a room's type and
// capacity against the overlapping reservations, and commits or rejects the
// change atomically.
type BookingService struct {
	uow          UnitOfWork
	rooms        repository.RoomStore
	reservations repository.ReservationStore
	directory    ReservationDirectory
	log          zerolog.Logger
	now          func() time.Time
}

func NewBookingService(uow UnitOfWork, rooms repository.RoomStore, reservations repository.ReservationStore, directory ReservationDirectory, log zerolog.Logger) *BookingService {
	return &BookingService{
		uow:          uow,
		rooms:        rooms,
		reservations: reservations,
		directory:    directory,
		log:          log,
		now:          time.Now,
	}
}

// CreateReservation validates the request against the room and its
// overlapping reservations under the room lock, then persists it. The room
// row itself is never touched: the seat pool is always recomputed from the
// live overlap set, so cancellations never have to reconcile a counter.
func (s *BookingService) CreateReservation(ctx context.Context, req *entities.ReservationRequest) (*db.Reservation, error) {
	res := reservationFromRequest(req)
	err := s.locked(ctx, req.RoomID, req.Date, func(rooms repository.RoomStore, reservations repository.ReservationStore) error {
		room, err := checkRoom(ctx, rooms, req)
		if err != nil {
			return err
		}
		overlapping, err := reservations.FindOverlapping(ctx, req.RoomID, req.Date, req.StartTime, req.EndTime, 0)
		if err != nil {
			return err
		}
		if err := checkCapacity(room, overlapping, req); err != nil {
			return err
		}
		return reservations.Create(ctx, res)
	})
	if err != nil {
		s.reject(err, "create")
		return nil, err
	}
	metrics.IncReservationCreated()
	s.log.Info().Int("reservation_id", res.ID).Int("room_id", res.RoomID).Str("date", res.Date).Msg("reservation created")
	return res, nil
}

// UpdateReservation reruns the create checks with the target excluded from
// the overlap set; available seats are recomputed from scratch each time, not
// adjusted incrementally. Every mutable field is replaced on success.
func (s *BookingService) UpdateReservation(ctx context.Context, id int, req *entities.ReservationRequest) (*db.Reservation, error) {
	existing, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errs.NotFound("Reservation not found.")
	}

	res := reservationFromRequest(req)
	res.ID = id
	err = s.locked(ctx, req.RoomID, req.Date, func(rooms repository.RoomStore, reservations repository.ReservationStore) error {
		target, err := reservations.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if target == nil {
			return errs.NotFound("Reservation not found.")
		}
		room, err := checkRoom(ctx, rooms, req)
		if err != nil {
			return err
		}
		overlapping, err := reservations.FindOverlapping(ctx, req.RoomID, req.Date, req.StartTime, req.EndTime, id)
		if err != nil {
			return err
		}
		if err := checkCapacity(room, overlapping, req); err != nil {
			return err
		}
		res.CreatedAt = target.CreatedAt
		return reservations.Update(ctx, res)
	})
	if err != nil {
		s.reject(err, "update")
		return nil, err
	}
	metrics.IncReservationUpdated()
	return res, nil
}

// CancelReservation deletes the reservation. When its date is still in the
// future the owning room's availability flag is reset to true, a best-effort
// release that does not attempt any seat accounting.
func (s *BookingService) CancelReservation(ctx context.Context, id int) error {
	existing, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errs.NotFound("Reservation not found.")
	}

	err = s.locked(ctx, existing.RoomID, existing.Date, func(rooms repository.RoomStore, reservations repository.ReservationStore) error {
		target, err := reservations.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if target == nil {
			return errs.NotFound("Reservation not found.")
		}
		if target.Date > s.today() {
			if err := rooms.SetAvailability(ctx, target.RoomID, true); err != nil {
				return err
			}
		}
		return reservations.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	metrics.IncReservationCancelled()
	s.log.Info().Int("reservation_id", id).Msg("reservation cancelled")
	return nil
}

func (s *BookingService) GetReservation(ctx context.Context, id int) (*db.Reservation, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errs.NotFound("Reservation not found.")
	}
	return res, nil
}

func (s *BookingService) ListReservations(ctx context.Context) ([]db.Reservation, error) {
	return s.directory.ListReservations(ctx)
}

func (s *BookingService) SearchReservations(ctx context.Context, q string) ([]entities.ReservationResponse, error) {
	return s.directory.Search(ctx, q)
}

func (s *BookingService) RecentReservations(ctx context.Context) ([]entities.ReservationResponse, error) {
	return s.directory.ListRecent(ctx, 10)
}

// RemainingSeats reports capacity minus the peak concurrent occupancy on the
// date, using the same half-open interval semantics as the booking checks.
func (s *BookingService) RemainingSeats(ctx context.Context, roomID int, date string) (int, error) {
	room, err := s.rooms.FindRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if room == nil {
		return 0, errs.NotFound("Room not found")
	}
	reservations, err := s.reservations.ListForDate(ctx, roomID, date)
	if err != nil {
		return 0, err
	}
	return room.NumSeats - peakOccupancy(room.NumSeats, reservations), nil
}

// locked runs fn under the (room, date) lock, retrying once transparently
// when the unit of work reports a concurrency conflict.
func (s *BookingService) locked(ctx context.Context, roomID int, date string, fn func(rooms repository.RoomStore, reservations repository.ReservationStore) error) error {
	err := s.uow.InRoomLock(ctx, roomID, date, fn)
	if errs.IsKind(err, errs.KindConflict) {
		s.log.Warn().Int("room_id", roomID).Str("date", date).Msg("booking conflict, retrying once")
		err = s.uow.InRoomLock(ctx, roomID, date, fn)
	}
	return err
}

func (s *BookingService) today() string {
	return s.now().Format("2006-01-02")
}

func (s *BookingService) reject(err error, op string) {
	kind := errs.KindOf(err)
	metrics.IncBookingRejected(reasonLabel(kind))
	s.log.Info().Str("op", op).Str("reason", reasonLabel(kind)).Msg("booking rejected")
}

func reservationFromRequest(req *entities.ReservationRequest) *db.Reservation {
	res := &db.Reservation{
		RoomID:    req.RoomID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Type:      req.Type,
	}
	if req.Type == db.TypeSharedSpace {
		res.NumSeats = sql.NullInt64{Int64: int64(req.NumSeats), Valid: true}
	}
	return res
}

// checkRoom enforces existence, the availability flag, and the type match.
func checkRoom(ctx context.Context, rooms repository.RoomStore, req *entities.ReservationRequest) (*db.Room, error) {
	room, err := rooms.FindRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil || !room.Availability {
		return nil, errs.RoomUnavailable()
	}
	if req.Type != room.RoomType {
		return nil, errs.TypeMismatch()
	}
	return room, nil
}

// checkCapacity applies the slot rules against the overlap set: an exclusive
// room tolerates no overlap at all, a shared space tolerates overlaps as long
// as the aggregate seat count stays within capacity. A single overlapping
// exclusive booking consumes the whole capacity.
func checkCapacity(room *db.Room, overlapping []db.Reservation, req *entities.ReservationRequest) error {
	if req.Type == db.TypeRoom {
		if len(overlapping) > 0 {
			return errs.SlotTaken()
		}
		return nil
	}
	reserved := 0
	for i := range overlapping {
		if overlapping[i].Type == db.TypeRoom {
			reserved = room.NumSeats
			break
		}
		reserved += int(overlapping[i].NumSeats.Int64)
	}
	if reserved+req.NumSeats > room.NumSeats {
		return errs.CapacityExceeded()
	}
	return nil
}

// peakOccupancy sweeps the day's reservation boundaries and returns the
// highest number of seats held at any instant. Intervals are half-open, so a
// reservation ending exactly when another starts releases its seats first.
func peakOccupancy(capacity int, reservations []db.Reservation) int {
	type event struct {
		at    string
		delta int
	}
	events := make([]event, 0, 2*len(reservations))
	for i := range reservations {
		seats := reservations[i].Seats(capacity)
		events = append(events,
			event{at: reservations[i].StartTime, delta: seats},
			event{at: reservations[i].EndTime, delta: -seats},
		)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].delta < events[j].delta
	})

	peak, current := 0, 0
	for _, ev := range events {
		current += ev.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}

func reasonLabel(kind errs.Kind) string {
	switch kind {
	case errs.KindRoomUnavailable:
		return "room_unavailable"
	case errs.KindTypeMismatch:
		return "type_mismatch"
	case errs.KindSlotTaken:
		return "slot_taken"
	case errs.KindCapacityExceeded:
		return "capacity_exceeded"
	case errs.KindNotFound:
		return "not_found"
	case errs.KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}
