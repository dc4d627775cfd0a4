package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validReservationPayload() reservationPayload {
	return reservationPayload{
		RoomID:    intPtr(1),
		Date:      strPtr("2026-02-01"),
		StartTime: strPtr("09:00"),
		EndTime:   strPtr("10:00"),
		Type:      strPtr("sharedSpace"),
		NumSeats:  intPtr(2),
	}
}

func TestReservationPayloadValidate(t *testing.T) {
	const today = "2026-01-15"

	tests := []struct {
		name    string
		mutate  func(p *reservationPayload)
		field   string
		message string
	}{
		{
			name:    "missing room id",
			mutate:  func(p *reservationPayload) { p.RoomID = nil },
			field:   "room_id",
			message: "The room ID field is required.",
		},
		{
			name:    "missing date",
			mutate:  func(p *reservationPayload) { p.Date = nil },
			field:   "date",
			message: "The date field is required.",
		},
		{
			name:    "malformed date",
			mutate:  func(p *reservationPayload) { p.Date = strPtr("01/02/2026") },
			field:   "date",
			message: "The date field must be a valid date.",
		},
		{
			name:    "past date",
			mutate:  func(p *reservationPayload) { p.Date = strPtr("2026-01-14") },
			field:   "date",
			message: "The date field must be equal to or greater than today's date.",
		},
		{
			name:    "missing start time",
			mutate:  func(p *reservationPayload) { p.StartTime = nil },
			field:   "start_time",
			message: "The start time field is required.",
		},
		{
			name:    "unpadded start time",
			mutate:  func(p *reservationPayload) { p.StartTime = strPtr("9:00") },
			field:   "start_time",
			message: "The start time field must be in H:i format.",
		},
		{
			name:    "end before start",
			mutate:  func(p *reservationPayload) { p.EndTime = strPtr("08:00") },
			field:   "end_time",
			message: "The end time field must be greater than the start time field.",
		},
		{
			name:    "end equals start",
			mutate:  func(p *reservationPayload) { p.EndTime = strPtr("09:00") },
			field:   "end_time",
			message: "The end time field must be greater than the start time field.",
		},
		{
			name:    "missing type",
			mutate:  func(p *reservationPayload) { p.Type = nil },
			field:   "type",
			message: "The type field is required.",
		},
		{
			name:    "unknown type",
			mutate:  func(p *reservationPayload) { p.Type = strPtr("suite") },
			field:   "type",
			message: "The selected type is invalid.",
		},
		{
			name:    "shared space without seats",
			mutate:  func(p *reservationPayload) { p.NumSeats = nil },
			field:   "num_seats",
			message: "The number of seats field is required for shared space type.",
		},
		{
			name:    "zero seats",
			mutate:  func(p *reservationPayload) { p.NumSeats = intPtr(0) },
			field:   "num_seats",
			message: "The number of seats field must be at least 1.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validReservationPayload()
			tt.mutate(&payload)
			fieldErrors := payload.validate(today)
			assert.Contains(t, fieldErrors, tt.field)
			assert.Contains(t, fieldErrors[tt.field], tt.message)
		})
	}
}

func TestReservationPayloadValidateAccepts(t *testing.T) {
	const today = "2026-01-15"

	payload := validReservationPayload()
	assert.Empty(t, payload.validate(today))

	// Today's date is allowed.
	payload.Date = strPtr(today)
	assert.Empty(t, payload.validate(today))

	// Room type needs no seats; a stray num_seats is ignored, not rejected.
	payload = validReservationPayload()
	payload.Type = strPtr("room")
	payload.NumSeats = nil
	assert.Empty(t, payload.validate(today))
	payload.NumSeats = intPtr(3)
	assert.Empty(t, payload.validate(today))
	req := payload.toRequest()
	assert.Zero(t, req.NumSeats)
}

func TestRoomPayloadValidate(t *testing.T) {
	valid := roomPayload{
		Name:         strPtr("Atlas"),
		Description:  strPtr("Top floor"),
		Price:        func() *float64 { v := 25.0; return &v }(),
		NumSeats:     intPtr(12),
		RoomType:     strPtr("sharedSpace"),
		Availability: func() *bool { v := true; return &v }(),
	}
	assert.Empty(t, valid.validate(true))

	missing := roomPayload{}
	fieldErrors := missing.validate(true)
	assert.Contains(t, fieldErrors["name"], "The name field is required.")
	assert.Contains(t, fieldErrors["description"], "The description field is required.")
	assert.Contains(t, fieldErrors["price"], "The price field is required.")
	assert.Contains(t, fieldErrors["num_seats"], "The number of seats field is required.")
	assert.Contains(t, fieldErrors["room_type"], "The room type field is required.")
	assert.Contains(t, fieldErrors["availability"], "The availability field is required.")

	// Updates do not require type or availability.
	update := valid
	update.RoomType = nil
	update.Availability = nil
	assert.Empty(t, update.validate(false))

	bad := valid
	bad.NumSeats = intPtr(0)
	assert.Contains(t, bad.validate(true)["num_seats"], "The number of seats field must be at least 1.")
}

func TestValidClock(t *testing.T) {
	assert.True(t, validClock("00:00"))
	assert.True(t, validClock("09:30"))
	assert.True(t, validClock("23:59"))
	assert.False(t, validClock("9:30"))
	assert.False(t, validClock("24:00"))
	assert.False(t, validClock("12:60"))
	assert.False(t, validClock("12-30"))
	assert.False(t, validClock(""))
}
