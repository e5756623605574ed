package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mta/internal/config"
	"mta/internal/domain"

	"github.com/rs/zerolog"
)

const healthPath = "/healthz"

// Services bundles the application services the API dispatches to.
type Services struct {
	Items        domain.ItemService
	Customers    domain.CustomerService
	Availability domain.AvailabilityService
	Bookings     domain.BookingService
	Reports      domain.ReportService
}

// HTTPServer exposes the JSON API.
type HTTPServer struct {
	cfg      config.APIConfig
	services Services
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, services Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "http").Logger()

	srv := &HTTPServer{cfg: cfg, services: services, logger: &l}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := requestIDMiddleware(srv.logger, recoverMiddleware(accessLogMiddleware(srv.auth.Wrap(mux))))

	readTimeout := cfg.HTTP.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.HTTP.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+healthPath, s.handleHealth)

	mux.HandleFunc("GET /api/v1/items", s.handleListItems)
	mux.HandleFunc("POST /api/v1/items", s.handleCreateItem)
	mux.HandleFunc("GET /api/v1/items/{id}", s.handleGetItem)
	mux.HandleFunc("PUT /api/v1/items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /api/v1/items/{id}", s.handleDeleteItem)

	mux.HandleFunc("GET /api/v1/customers", s.handleListCustomers)
	mux.HandleFunc("POST /api/v1/customers", s.handleCreateCustomer)
	mux.HandleFunc("GET /api/v1/customers/{id}", s.handleGetCustomer)
	mux.HandleFunc("PUT /api/v1/customers/{id}", s.handleUpdateCustomer)
	mux.HandleFunc("DELETE /api/v1/customers/{id}", s.handleDeleteCustomer)

	mux.HandleFunc("GET /api/v1/bookings", s.handleListBookings)
	mux.HandleFunc("POST /api/v1/bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/export", s.handleExportBookings)
	mux.HandleFunc("POST /api/v1/bookings/sweep", s.handleSweep)
	mux.HandleFunc("GET /api/v1/bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("PUT /api/v1/bookings/{id}", s.handleUpdateBooking)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", s.handleDeleteBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/status", s.handleSetStatus)

	mux.HandleFunc("GET /api/v1/availability", s.handleAvailabilityReport)
	mux.HandleFunc("GET /api/v1/availability/{itemID}", s.handleItemAvailability)

	mux.HandleFunc("GET /api/v1/reports/summary", s.handleReportSummary)
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
