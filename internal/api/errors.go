package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"mta/internal/domain"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	ItemID    int64  `json:"item_id,omitempty"`
	Requested int64  `json:"requested,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeServiceError maps domain errors to HTTP statuses:
// malformed input 400, missing entity 404, state conflicts 409.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *domain.ValidationError
		insufficient *domain.InsufficientAvailabilityError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: validation.Field})
	case errors.Is(err, domain.ErrInvalidIdentifier):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "national_id"})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &insufficient):
		available := insufficient.Available
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     err.Error(),
			ItemID:    insufficient.ItemID,
			Requested: insufficient.Requested,
			Available: &available,
		})
	case errors.Is(err, domain.ErrDuplicateIdentifier),
		errors.Is(err, domain.ErrInUse),
		errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
