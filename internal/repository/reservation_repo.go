package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nexuios/internal/db"
	"nexuios/internal/entities"
)

type ReservationRepository struct {
	q querier
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{q: database}
}

const reservationColumns = `id, room_id, date::text, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), num_seats, type, created_at, updated_at`

func scanReservation(row interface{ Scan(dest ...any) error }) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.RoomID, &res.Date, &res.StartTime, &res.EndTime,
		&res.NumSeats, &res.Type, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByID returns (nil, nil) when the reservation does not exist.
func (r *ReservationRepository) FindByID(ctx context.Context, id int) (*db.Reservation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation %d: %w", id, err)
	}
	return res, nil
}

// FindOverlapping returns the reservations for a room on a date whose
// [start_time, end_time) window intersects [start, end). Touching endpoints
// do not overlap: both comparisons are strict. excludeID skips the
// reservation being updated; pass 0 to exclude nothing.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomID int, date, start, end string, excludeID int) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1
		  AND date = $2::date
		  AND start_time < $4::time
		  AND end_time > $3::time
		  AND id <> $5
		ORDER BY start_time`
	rows, err := r.q.QueryContext(ctx, query, roomID, date, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error querying overlapping reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListForDate returns every reservation for the room on the given date.
func (r *ReservationRepository) ListForDate(ctx context.Context, roomID int, date string) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1 AND date = $2::date
		ORDER BY start_time`
	rows, err := r.q.QueryContext(ctx, query, roomID, date)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations for room %d on %s: %w", roomID, date, err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListForRoom returns every reservation for the room across all dates.
func (r *ReservationRepository) ListForRoom(ctx context.Context, roomID int) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = $1
		ORDER BY date, start_time`
	rows, err := r.q.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations for room %d: %w", roomID, err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepository) ListReservations(ctx context.Context) ([]db.Reservation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY date, start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepository) Create(ctx context.Context, res *db.Reservation) error {
	query := `
		INSERT INTO reservations (room_id, date, start_time, end_time, num_seats, type, created_at, updated_at)
		VALUES ($1, $2::date, $3::time, $4::time, $5, $6, now(), now())
		RETURNING id, created_at, updated_at`
	return r.q.QueryRowContext(ctx, query,
		res.RoomID, res.Date, res.StartTime, res.EndTime, res.NumSeats, res.Type,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

func (r *ReservationRepository) Update(ctx context.Context, res *db.Reservation) error {
	query := `
		UPDATE reservations
		SET room_id = $1, date = $2::date, start_time = $3::time, end_time = $4::time,
			num_seats = $5, type = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at`
	return r.q.QueryRowContext(ctx, query,
		res.RoomID, res.Date, res.StartTime, res.EndTime, res.NumSeats, res.Type, res.ID,
	).Scan(&res.UpdatedAt)
}

func (r *ReservationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reservation %d: %w", id, err)
	}
	return nil
}

// Search matches q loosely against reservation fields and the room name,
// mirroring the legacy search endpoint.
func (r *ReservationRepository) Search(ctx context.Context, q string) ([]entities.ReservationResponse, error) {
	pattern := "%" + q + "%"
	query := `
		SELECT r.id, r.room_id, r.date::text, to_char(r.start_time, 'HH24:MI'), to_char(r.end_time, 'HH24:MI'),
			r.num_seats, r.type, r.created_at, r.updated_at, rooms.name
		FROM reservations r
		JOIN rooms ON rooms.id = r.room_id
		WHERE r.id::text LIKE $1
		   OR rooms.name LIKE $1
		   OR r.date::text LIKE $1
		   OR to_char(r.start_time, 'HH24:MI') LIKE $1
		   OR to_char(r.end_time, 'HH24:MI') LIKE $1
		   OR r.num_seats::text LIKE $1
		   OR r.type LIKE $1
		ORDER BY r.date, r.start_time`
	rows, err := r.q.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("error searching reservations: %w", err)
	}
	defer rows.Close()
	return collectJoined(rows)
}

// ListRecent returns the newest reservations with their room names.
func (r *ReservationRepository) ListRecent(ctx context.Context, limit int) ([]entities.ReservationResponse, error) {
	query := `
		SELECT r.id, r.room_id, r.date::text, to_char(r.start_time, 'HH24:MI'), to_char(r.end_time, 'HH24:MI'),
			r.num_seats, r.type, r.created_at, r.updated_at, rooms.name
		FROM reservations r
		JOIN rooms ON rooms.id = r.room_id
		ORDER BY r.created_at DESC
		LIMIT $1`
	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying recent reservations: %w", err)
	}
	defer rows.Close()
	return collectJoined(rows)
}

func collectReservations(rows *sql.Rows) ([]db.Reservation, error) {
	var out []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func collectJoined(rows *sql.Rows) ([]entities.ReservationResponse, error) {
	var out []entities.ReservationResponse
	for rows.Next() {
		var res db.Reservation
		var roomName string
		err := rows.Scan(
			&res.ID, &res.RoomID, &res.Date, &res.StartTime, &res.EndTime,
			&res.NumSeats, &res.Type, &res.CreatedAt, &res.UpdatedAt, &roomName,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		resp := entities.NewReservationResponse(&res)
		resp.RoomName = roomName
		out = append(out, resp)
	}
	return out, rows.Err()
}
