package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"nexuios/internal/errs"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondValidation(w http.ResponseWriter, fieldErrors map[string][]string) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors})
}

// respondError maps a service failure onto the wire contract: classified
// kinds keep their human-readable message and status, anything else is an
// opaque 500.
func respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var e *errs.Error
	if errors.As(err, &e) && e.Kind != errs.KindInternal {
		if e.Kind == errs.KindConflict {
			log.Warn().Err(err).Msg("booking conflict surfaced to client")
		}
		respondMessage(w, e.HTTPStatus(), e.Message)
		return
	}
	log.Error().Err(err).Msg("request failed")
	respondMessage(w, http.StatusInternalServerError, "Internal server error.")
}
