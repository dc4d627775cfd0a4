package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nexuios/internal/db"
)

type RoomRepository struct {
	q querier
}

func NewRoomRepository(database *sql.DB) *RoomRepository {
	return &RoomRepository{q: database}
}

const roomColumns = `id, name, description, price, num_seats, room_type, availability, thumbnail, images, created_at, updated_at`

func scanRoom(row interface{ Scan(dest ...any) error }) (*db.Room, error) {
	var room db.Room
	var images []byte
	err := row.Scan(
		&room.ID, &room.Name, &room.Description, &room.Price, &room.NumSeats,
		&room.RoomType, &room.Availability, &room.Thumbnail, &images,
		&room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &room.Images); err != nil {
			return nil, fmt.Errorf("decoding room images: %w", err)
		}
	}
	return &room, nil
}

// FindRoom returns (nil, nil) when no room with the given id exists.
func (r *RoomRepository) FindRoom(ctx context.Context, id int) (*db.Room, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying room %d: %w", id, err)
	}
	return room, nil
}

func (r *RoomRepository) ListRooms(ctx context.Context) ([]db.Room, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying rooms: %w", err)
	}
	defer rows.Close()

	var rooms []db.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepository) CreateRoom(ctx context.Context, room *db.Room) error {
	images, err := marshalImages(room.Images)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO rooms (name, description, price, num_seats, room_type, availability, thumbnail, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`
	return r.q.QueryRowContext(ctx, query,
		room.Name, room.Description, room.Price, room.NumSeats, room.RoomType,
		room.Availability, room.Thumbnail, images,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
}

func (r *RoomRepository) UpdateRoom(ctx context.Context, room *db.Room) error {
	images, err := marshalImages(room.Images)
	if err != nil {
		return err
	}
	query := `
		UPDATE rooms
		SET name = $1, description = $2, price = $3, num_seats = $4,
			availability = $5, thumbnail = $6, images = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at`
	return r.q.QueryRowContext(ctx, query,
		room.Name, room.Description, room.Price, room.NumSeats,
		room.Availability, room.Thumbnail, images, room.ID,
	).Scan(&room.UpdatedAt)
}

// DeleteRoom removes the room; its reservations go with it via ON DELETE CASCADE.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id int) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("error deleting room %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *RoomRepository) SetAvailability(ctx context.Context, id int, available bool) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE rooms SET availability = $1, updated_at = now() WHERE id = $2`,
		available, id,
	)
	if err != nil {
		return fmt.Errorf("error updating room %d availability: %w", id, err)
	}
	return nil
}

func marshalImages(images []string) (any, error) {
	if images == nil {
		return nil, nil
	}
	out, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encoding room images: %w", err)
	}
	return out, nil
}
