package api

import (
	"net/http"
	"strconv"

	"mta/internal/domain"
)

func (s *HTTPServer) handleAvailabilityReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	report, err := s.services.Availability.Report(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]availabilityDTO, 0, len(report))
	for _, a := range report {
		out = append(out, toAvailabilityDTO(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (s *HTTPServer) handleItemAvailability(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var exclude int64
	if raw := r.URL.Query().Get("exclude_booking_id"); raw != "" {
		exclude, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || exclude < 0 {
			writeServiceError(w, r, domain.NewValidationError("exclude_booking_id", "must be a non-negative integer"))
			return
		}
	}

	a, err := s.services.Availability.AvailableQuantity(r.Context(), itemID, from, to, exclude)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAvailabilityDTO(a))
}
