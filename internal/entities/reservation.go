package entities

import (
	"time"

	"nexuios/internal/db"
)

// ReservationRequest is the validated input consumed by the booking engine.
// NumSeats is meaningful only when Type is sharedSpace.
type ReservationRequest struct {
	RoomID    int    `json:"room_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	NumSeats  int    `json:"num_seats"`
	Type      string `json:"type"`
}

type ReservationResponse struct {
	ID        int       `json:"id"`
	RoomID    int       `json:"room_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	NumSeats  *int      `json:"num_seats"`
	Type      string    `json:"type"`
	RoomName  string    `json:"room_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewReservationResponse(res *db.Reservation) ReservationResponse {
	out := ReservationResponse{
		ID:        res.ID,
		RoomID:    res.RoomID,
		Date:      res.Date,
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Type:      res.Type,
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
	if res.NumSeats.Valid {
		seats := int(res.NumSeats.Int64)
		out.NumSeats = &seats
	}
	return out
}
