package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"nexuios/internal/entities"
	"nexuios/internal/service"
)

type ReservationHandler struct {
	Service *service.BookingService
	log     zerolog.Logger
	now     func() time.Time
}

func NewReservationHandler(svc *service.BookingService, log zerolog.Logger) *ReservationHandler {
	return &ReservationHandler{Service: svc, log: log, now: time.Now}
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var payload reservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fieldErrors := payload.validate(h.today()); len(fieldErrors) > 0 {
		respondValidation(w, fieldErrors)
		return
	}

	req := payload.toRequest()
	res, err := h.Service.CreateReservation(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Reservation created successfully.",
		"data":    entities.NewReservationResponse(res),
	})
}

func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Reservation not found.")
		return
	}

	var payload reservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if fieldErrors := payload.validate(h.today()); len(fieldErrors) > 0 {
		respondValidation(w, fieldErrors)
		return
	}

	req := payload.toRequest()
	res, err := h.Service.UpdateReservation(r.Context(), id, &req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Reservation updated successfully.",
		"data":    entities.NewReservationResponse(res),
	})
}

func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Reservation not found.")
		return
	}
	if err := h.Service.CancelReservation(r.Context(), id); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondMessage(w, http.StatusOK, "Reservation deleted successfully.")
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Reservation not found.")
		return
	}
	res, err := h.Service.GetReservation(r.Context(), id)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    entities.NewReservationResponse(res),
	})
}

func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.Service.ListReservations(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	out := make([]entities.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, entities.NewReservationResponse(&reservations[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    out,
	})
}

func (h *ReservationHandler) SearchReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondMessage(w, http.StatusNotFound, "Reservation not found.")
		return
	}
	results, err := h.Service.SearchReservations(r.Context(), q)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if results == nil {
		results = []entities.ReservationResponse{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"result": results})
}

func (h *ReservationHandler) RecentReservations(w http.ResponseWriter, r *http.Request) {
	results, err := h.Service.RecentReservations(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if results == nil {
		results = []entities.ReservationResponse{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": results})
}

func (h *ReservationHandler) today() string {
	return h.now().Format("2006-01-02")
}
