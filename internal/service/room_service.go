package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"nexuios/internal/db"
	"nexuios/internal/entities"
	"nexuios/internal/errs"
	"nexuios/internal/repository"
)

// RoomService covers the room CRUD endpoints. Stored thumbnail and image
// references are passed through untouched; file handling lives elsewhere.
type RoomService struct {
	rooms        *repository.RoomRepository
	reservations *repository.ReservationRepository
	booking      *BookingService
	assetBase    string
	log          zerolog.Logger
	now          func() time.Time
}

func NewRoomService(rooms *repository.RoomRepository, reservations *repository.ReservationRepository, booking *BookingService, assetBase string, log zerolog.Logger) *RoomService {
	return &RoomService{
		rooms:        rooms,
		reservations: reservations,
		booking:      booking,
		assetBase:    assetBase,
		log:          log,
		now:          time.Now,
	}
}

func (s *RoomService) ListRooms(ctx context.Context) ([]entities.RoomResponse, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.RoomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, entities.NewRoomResponse(&rooms[i], s.assetBase))
	}
	return out, nil
}

// GetRoomDetail returns the room, all of its reservations, and the seats
// still free today.
func (s *RoomService) GetRoomDetail(ctx context.Context, id int) (*entities.RoomDetail, error) {
	room, err := s.rooms.FindRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errs.NotFound("Room not found")
	}

	reservations, err := s.reservations.ListForRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	remaining, err := s.booking.RemainingSeats(ctx, id, s.now().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}

	detail := &entities.RoomDetail{
		Data:           entities.NewRoomResponse(room, s.assetBase),
		Reservations:   make([]entities.ReservationResponse, 0, len(reservations)),
		RemainingSeats: remaining,
	}
	for i := range reservations {
		detail.Reservations = append(detail.Reservations, entities.NewReservationResponse(&reservations[i]))
	}
	return detail, nil
}

func (s *RoomService) CreateRoom(ctx context.Context, req *entities.RoomRequest) (*db.Room, error) {
	room := &db.Room{
		Name:         req.Name,
		Description:  req.Description,
		Price:        *req.Price,
		NumSeats:     *req.NumSeats,
		RoomType:     req.RoomType,
		Availability: req.Availability == nil || *req.Availability,
		Images:       req.Images,
	}
	if req.Thumbnail != "" {
		room.Thumbnail = sql.NullString{String: req.Thumbnail, Valid: true}
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.log.Info().Int("room_id", room.ID).Str("room_type", room.RoomType).Msg("room created")
	return room, nil
}

// UpdateRoom replaces the room's mutable fields. The room type is fixed at
// creation: reservations mirror it, so changing it would orphan their types.
func (s *RoomService) UpdateRoom(ctx context.Context, id int, req *entities.RoomRequest) (*db.Room, error) {
	room, err := s.rooms.FindRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, errs.NotFound("Room not found")
	}

	room.Name = req.Name
	room.Description = req.Description
	room.Price = *req.Price
	room.NumSeats = *req.NumSeats
	if req.Availability != nil {
		room.Availability = *req.Availability
	}
	if req.Thumbnail != "" {
		room.Thumbnail = sql.NullString{String: req.Thumbnail, Valid: true}
	}
	if req.Images != nil {
		room.Images = req.Images
	}
	if err := s.rooms.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes the room and, through the schema cascade, every
// reservation that references it.
func (s *RoomService) DeleteRoom(ctx context.Context, id int) error {
	deleted, err := s.rooms.DeleteRoom(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errs.NotFound("Room not found")
	}
	s.log.Info().Int("room_id", id).Msg("room deleted")
	return nil
}

func (s *RoomService) RoomResponse(room *db.Room) entities.RoomResponse {
	return entities.NewRoomResponse(room, s.assetBase)
}
