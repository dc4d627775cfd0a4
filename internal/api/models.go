package api

import (
	"time"

	"nexuios/internal/db"
	"nexuios/internal/entities"
)

// reservationPayload is the raw reservation body. Pointer fields distinguish
// absent from zero so required-field messages match the legacy contract.
type reservationPayload struct {
	RoomID    *int    `json:"room_id"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	NumSeats  *int    `json:"num_seats"`
	Type      *string `json:"type"`
}

// validate returns field-level messages keyed by field name; empty means the
// payload is acceptable. today is "YYYY-MM-DD".
func (p *reservationPayload) validate(today string) map[string][]string {
	fieldErrors := map[string][]string{}
	add := func(field, msg string) {
		fieldErrors[field] = append(fieldErrors[field], msg)
	}

	if p.RoomID == nil {
		add("room_id", "The room ID field is required.")
	}

	switch {
	case p.Date == nil || *p.Date == "":
		add("date", "The date field is required.")
	default:
		if _, err := time.Parse("2006-01-02", *p.Date); err != nil {
			add("date", "The date field must be a valid date.")
		} else if *p.Date < today {
			add("date", "The date field must be equal to or greater than today's date.")
		}
	}

	startValid := false
	switch {
	case p.StartTime == nil || *p.StartTime == "":
		add("start_time", "The start time field is required.")
	case !validClock(*p.StartTime):
		add("start_time", "The start time field must be in H:i format.")
	default:
		startValid = true
	}

	switch {
	case p.EndTime == nil || *p.EndTime == "":
		add("end_time", "The end time field is required.")
	case !validClock(*p.EndTime):
		add("end_time", "The end time field must be in H:i format.")
	case startValid && *p.EndTime <= *p.StartTime:
		add("end_time", "The end time field must be greater than the start time field.")
	}

	switch {
	case p.Type == nil || *p.Type == "":
		add("type", "The type field is required.")
	case !db.ValidType(*p.Type):
		add("type", "The selected type is invalid.")
	case *p.Type == db.TypeSharedSpace:
		if p.NumSeats == nil {
			add("num_seats", "The number of seats field is required for shared space type.")
		} else if *p.NumSeats < 1 {
			add("num_seats", "The number of seats field must be at least 1.")
		}
	}

	return fieldErrors
}

// toRequest converts a validated payload. A num_seats value sent with a
// room-type reservation is ignored, as the legacy API did.
func (p *reservationPayload) toRequest() entities.ReservationRequest {
	req := entities.ReservationRequest{
		RoomID:    *p.RoomID,
		Date:      *p.Date,
		StartTime: *p.StartTime,
		EndTime:   *p.EndTime,
		Type:      *p.Type,
	}
	if req.Type == db.TypeSharedSpace && p.NumSeats != nil {
		req.NumSeats = *p.NumSeats
	}
	return req
}

// validClock accepts zero-padded 24h "HH:MM" only: anything else would break
// the string ordering the overlap checks rely on.
func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

type roomPayload struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	NumSeats     *int     `json:"num_seats"`
	RoomType     *string  `json:"room_type"`
	Availability *bool    `json:"availability"`
	Thumbnail    string   `json:"thumbnail"`
	Images       []string `json:"images"`
}

// validate checks a room body. The room type and availability flag are only
// required on create; updates leave the type alone entirely.
func (p *roomPayload) validate(create bool) map[string][]string {
	fieldErrors := map[string][]string{}
	add := func(field, msg string) {
		fieldErrors[field] = append(fieldErrors[field], msg)
	}

	if p.Name == nil || *p.Name == "" {
		add("name", "The name field is required.")
	}
	if p.Description == nil || *p.Description == "" {
		add("description", "The description field is required.")
	}
	if p.Price == nil {
		add("price", "The price field is required.")
	}
	if p.NumSeats == nil {
		add("num_seats", "The number of seats field is required.")
	} else if *p.NumSeats < 1 {
		add("num_seats", "The number of seats field must be at least 1.")
	}
	if create {
		switch {
		case p.RoomType == nil || *p.RoomType == "":
			add("room_type", "The room type field is required.")
		case !db.ValidType(*p.RoomType):
			add("room_type", "The selected room type is invalid.")
		}
		if p.Availability == nil {
			add("availability", "The availability field is required.")
		}
	}

	return fieldErrors
}

func (p *roomPayload) toRequest() entities.RoomRequest {
	req := entities.RoomRequest{
		Name:         *p.Name,
		Description:  *p.Description,
		Price:        p.Price,
		NumSeats:     p.NumSeats,
		Availability: p.Availability,
		Thumbnail:    p.Thumbnail,
		Images:       p.Images,
	}
	if p.RoomType != nil {
		req.RoomType = *p.RoomType
	}
	return req
}
