package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"nexuios/internal/service"
)

type RoomHandler struct {
	Service *service.RoomService
	log     zerolog.Logger
}

func NewRoomHandler(svc *service.RoomService, log zerolog.Logger) *RoomHandler {
	return &RoomHandler{Service: svc, log: log}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Service.ListRooms(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": rooms})
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var payload roomPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fieldErrors := payload.validate(true); len(fieldErrors) > 0 {
		respondValidation(w, fieldErrors)
		return
	}

	req := payload.toRequest()
	room, err := h.Service.CreateRoom(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Room created successfully",
		"data":    h.Service.RoomResponse(room),
	})
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Room not found")
		return
	}
	detail, err := h.Service.GetRoomDetail(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Room not found")
		return
	}

	var payload roomPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fieldErrors := payload.validate(false); len(fieldErrors) > 0 {
		respondValidation(w, fieldErrors)
		return
	}

	req := payload.toRequest()
	room, err := h.Service.UpdateRoom(r.Context(), id, &req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Room updated successfully",
		"data":    h.Service.RoomResponse(room),
	})
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Room not found")
		return
	}
	if err := h.Service.DeleteRoom(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Room deleted successfully")
}
