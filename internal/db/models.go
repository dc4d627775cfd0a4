package db

import (
	"database/sql"
	"time"
)

const (
	TypeRoom        = "room"
	TypeSharedSpace = "sharedSpace"
)

// ValidType reports whether t is one of the two room/reservation types.
func ValidType(t string) bool {
	return t == TypeRoom || t == TypeSharedSpace
}

type Room struct {
	ID           int
	Name         string
	Description  string
	Price        float64
	NumSeats     int
	RoomType     string
	Availability bool
	Thumbnail    sql.NullString
	Images       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation is a booking row. Date is "YYYY-MM-DD" and the times are
// zero-padded "HH:MM", so string comparison matches the SQL ordering.
// NumSeats is set only for sharedSpace reservations.
type Reservation struct {
	ID        int
	RoomID    int
	Date      string
	StartTime string
	EndTime   string
	NumSeats  sql.NullInt64
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Seats returns the seat count a reservation occupies against a room of the
// given capacity: its own seats for sharedSpace, the full capacity for an
// exclusive room booking.
func (r *Reservation) Seats(capacity int) int {
	if r.Type == TypeRoom {
		return capacity
	}
	return int(r.NumSeats.Int64)
}
