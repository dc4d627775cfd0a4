package entities

import (
	"time"

	"nexuios/internal/db"
)

type RoomRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price"`
	NumSeats     *int     `json:"num_seats"`
	RoomType     string   `json:"room_type"`
	Availability *bool    `json:"availability"`
	Thumbnail    string   `json:"thumbnail"`
	Images       []string `json:"images"`
}

type RoomResponse struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	NumSeats     int       `json:"num_seats"`
	RoomType     string    `json:"room_type"`
	Availability bool      `json:"availability"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Images       []string  `json:"images,omitempty"`
	ImagesURL    []string  `json:"images_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoomDetail is the room show payload: the room, its reservations and the
// seats still free on the requested date.
type RoomDetail struct {
	Data           RoomResponse          `json:"data"`
	Reservations   []ReservationResponse `json:"reservations"`
	RemainingSeats int                   `json:"remaining_seats"`
}

// NewRoomResponse builds the API view of a room. assetBase, when set, is
// prepended to stored thumbnail and image references.
func NewRoomResponse(room *db.Room, assetBase string) RoomResponse {
	out := RoomResponse{
		ID:           room.ID,
		Name:         room.Name,
		Description:  room.Description,
		Price:        room.Price,
		NumSeats:     room.NumSeats,
		RoomType:     room.RoomType,
		Availability: room.Availability,
		Images:       room.Images,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
	if room.Thumbnail.Valid {
		out.Thumbnail = room.Thumbnail.String
		if assetBase != "" {
			out.ThumbnailURL = assetBase + "/thumbnails/" + room.Thumbnail.String
		}
	}
	if assetBase != "" {
		for _, img := range room.Images {
			out.ImagesURL = append(out.ImagesURL, assetBase+"/images/"+img)
		}
	}
	return out
}
