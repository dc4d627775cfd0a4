package repository

import (
	"context"

	"nexuios/internal/db"
)

// RoomStore is the room access the booking engine needs. FindRoom returns
// (nil, nil) when the room does not exist.
type RoomStore interface {
	FindRoom(ctx context.Context, id int) (*db.Room, error)
	SetAvailability(ctx context.Context, id int, available bool) error
}

// ReservationStore is the reservation access the booking engine needs.
type ReservationStore interface {
	FindByID(ctx context.Context, id int) (*db.Reservation, error)
	FindOverlapping(ctx context.Context, roomID int, date, start, end string, excludeID int) ([]db.Reservation, error)
	ListForDate(ctx context.Context, roomID int, date string) ([]db.Reservation, error)
	Create(ctx context.Context, res *db.Reservation) error
	Update(ctx context.Context, res *db.Reservation) error
	Delete(ctx context.Context, id int) error
}
