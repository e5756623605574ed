package api

import (
	"fmt"
	"net/http"
	"time"

	"mta/internal/export"

	"github.com/rs/zerolog"
)

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.services.Bookings.ListBookingsWithLineItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	b, err := s.services.Bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var body bookingRequestDTO
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	b, err := s.services.Bookings.CreateBooking(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body bookingRequestDTO
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	b, err := s.services.Bookings.UpdateBooking(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

func (s *HTTPServer) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body statusRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.services.Bookings.SetStatus(r.Context(), id, body.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	b, err := s.services.Bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := s.services.Bookings.DeleteBooking(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSweep closes expired bookings; ?today=YYYY-MM-DD overrides the server date.
func (s *HTTPServer) handleSweep(w http.ResponseWriter, r *http.Request) {
	var (
		closed int
		err    error
	)
	if raw := r.URL.Query().Get("today"); raw != "" {
		today, perr := parseDateField("today", raw)
		if perr != nil {
			writeServiceError(w, r, perr)
			return
		}
		closed, err = s.services.Bookings.SweepExpired(r.Context(), today)
	} else {
		closed, err = s.services.Bookings.SweepNow(r.Context())
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"closed": closed})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.services.Bookings.ListBookingsWithLineItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := export.WriteBookings(w, bookings); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("export write failed")
	}
}
