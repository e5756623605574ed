package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mta/internal/domain"
	"mta/internal/events"
	"mta/internal/metrics"
	"mta/internal/models"
	"mta/internal/worker"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo         domain.Repository
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	location     *time.Location
	now          func() time.Time
	logger       *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, location *time.Location, logger *zerolog.Logger) *BookingService {
	if location == nil {
		location = time.UTC
	}
	return &BookingService{
		repo:         repo,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		location:     location,
		now:          time.Now,
		logger:       componentLogger(logger, "booking_service"),
	}
}

// SetClock replaces the service clock; "today" for the expiry sweep is
// derived from it in the configured location.
func (s *BookingService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *BookingService) today() time.Time {
	return models.DateOnly(s.now().In(s.location))
}

func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingWithLines, error) {
	booking, lines, err := prepareBooking(req)
	if err != nil {
		s.recordOutcome("create", err)
		return nil, err
	}

	now := s.now().UTC()
	booking.Status = models.StatusActive
	booking.CreatedAt = now
	booking.UpdatedAt = now

	// Проверка доступности и запись в одной транзакции
	if err := s.repo.CreateBookingWithLines(ctx, booking, lines); err != nil {
		s.recordOutcome("create", err)
		return nil, err
	}
	s.recordOutcome("create", nil)

	result := &models.BookingWithLines{Booking: *booking, Lines: lines}
	s.logger.Info().
		Int64("booking_id", result.ID).
		Int64("customer_id", result.CustomerID).
		Str("total", result.TotalValue.StringFixed(2)).
		Msg("Booking created")

	s.publishEvent(events.EventBookingCreated, result, "")
	s.enqueueSync(ctx, worker.TaskUpsert, result.ID, result, "")
	return result, nil
}

// UpdateBooking replaces the dates, customer and all lines of an active
// booking. The booking's own lines do not count against availability.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID int64, req models.BookingRequest) (*models.BookingWithLines, error) {
	if bookingID <= 0 {
		return nil, domain.NewValidationError("id", "is required")
	}
	booking, lines, err := prepareBooking(req)
	if err != nil {
		s.recordOutcome("update", err)
		return nil, err
	}

	// Просроченная бронь должна стать closed до проверки статуса
	s.sweepFirst(ctx)

	booking.ID = bookingID
	booking.UpdatedAt = s.now().UTC()

	if err := s.repo.ReplaceBooking(ctx, booking, lines); err != nil {
		s.recordOutcome("update", err)
		return nil, err
	}
	s.recordOutcome("update", nil)

	result := &models.BookingWithLines{Booking: *booking, Lines: lines}
	s.logger.Info().Int64("booking_id", bookingID).Msg("Booking updated")

	s.publishEvent(events.EventBookingUpdated, result, "")
	s.enqueueSync(ctx, worker.TaskUpsert, bookingID, result, "")
	return result, nil
}

// SetStatus closes or cancels an active booking.
func (s *BookingService) SetStatus(ctx context.Context, bookingID int64, status string) error {
	if status != models.StatusClosed && status != models.StatusCancelled {
		err := domain.NewValidationError("status", fmt.Sprintf("must be %q or %q", models.StatusClosed, models.StatusCancelled))
		s.recordOutcome("set_status", err)
		return err
	}

	s.sweepFirst(ctx)
	if err := s.repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		s.recordOutcome("set_status", err)
		return err
	}
	s.recordOutcome("set_status", nil)
	s.logger.Info().Int64("booking_id", bookingID).Str("status", status).Msg("Booking status changed")

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("reload after status change failed")
		booking = &models.BookingWithLines{Booking: models.Booking{ID: bookingID, Status: status}}
	}
	s.publishEvent(events.EventBookingStatusChanged, booking, models.StatusActive)
	s.enqueueSync(ctx, worker.TaskUpdateStatus, bookingID, nil, status)
	return nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, bookingID int64) error {
	if err := s.repo.DeleteBooking(ctx, bookingID); err != nil {
		s.recordOutcome("delete", err)
		return err
	}
	s.recordOutcome("delete", nil)
	s.logger.Info().Int64("booking_id", bookingID).Msg("Booking deleted")

	s.publishEvent(events.EventBookingDeleted, &models.BookingWithLines{Booking: models.Booking{ID: bookingID}}, "")
	s.enqueueSync(ctx, worker.TaskDelete, bookingID, nil, "")
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.BookingWithLines, error) {
	s.sweepFirst(ctx)
	return s.repo.GetBooking(ctx, id)
}

// ListBookingsWithLineItems returns every booking, latest start date first.
func (s *BookingService) ListBookingsWithLineItems(ctx context.Context) ([]*models.BookingWithLines, error) {
	s.sweepFirst(ctx)
	return s.repo.ListBookingsWithLineItems(ctx)
}

// SweepExpired closes active bookings that ended before today and returns
// how many it closed.
func (s *BookingService) SweepExpired(ctx context.Context, today time.Time) (int, error) {
	ids, err := s.repo.SweepExpired(ctx, models.DateOnly(today))
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired bookings: %w", err)
	}

	metrics.AddBookingsSwept(len(ids))
	for _, id := range ids {
		s.publishEvent(events.EventBookingClosedBySweep,
			&models.BookingWithLines{Booking: models.Booking{ID: id, Status: models.StatusClosed}},
			models.StatusActive)
		s.enqueueSync(ctx, worker.TaskUpdateStatus, id, nil, models.StatusClosed)
	}
	return len(ids), nil
}

// SweepNow runs the sweep for the service clock's today.
func (s *BookingService) SweepNow(ctx context.Context) (int, error) {
	return s.SweepExpired(ctx, s.today())
}

// sweepFirst closes expired bookings before any path that depends on
// booking status. A failed sweep does not fail the caller.
func (s *BookingService) sweepFirst(ctx context.Context) {
	if _, err := s.SweepNow(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("expiry sweep failed")
	}
}

// prepareBooking validates req and builds the header and lines with
// server-computed totals.
func prepareBooking(req models.BookingRequest) (*models.Booking, []models.LineItem, error) {
	if err := validateStruct(req); err != nil {
		return nil, nil, fmt.Errorf("invalid booking: %w", err)
	}

	start, end, err := normalizeRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[int64]struct{}, len(req.Lines))
	for i, l := range req.Lines {
		if l.UnitPrice.IsNegative() {
			return nil, nil, domain.NewValidationError(fmt.Sprintf("lines[%d].unit_price", i), "must not be negative")
		}
		if _, dup := seen[l.ItemID]; dup {
			return nil, nil, domain.NewValidationError(fmt.Sprintf("lines[%d].item_id", i), fmt.Sprintf("duplicate item %d", l.ItemID))
		}
		seen[l.ItemID] = struct{}{}
	}

	lines, total := models.BuildLines(req.Lines)
	return &models.Booking{
		CustomerID: req.CustomerID,
		StartDate:  start,
		EndDate:    end,
		TotalValue: total,
	}, lines, nil
}

func (s *BookingService) recordOutcome(operation string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case domain.IsInsufficientAvailability(err):
		outcome = "rejected"
		metrics.IncAvailabilityRejection()
	case domain.IsValidation(err):
		outcome = "invalid"
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		outcome = "conflict"
	default:
		outcome = "error"
		s.logger.Error().Err(err).Str("operation", operation).Msg("booking operation failed")
	}
	metrics.IncBookingOp(operation, outcome)
}

func (s *BookingService) publishEvent(eventType string, booking *models.BookingWithLines, prevStatus string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		Status:     booking.Status,
		PrevStatus: prevStatus,
		OccurredAt: s.now().UTC(),
	}
	if !booking.StartDate.IsZero() {
		payload.StartDate = models.FormatDate(booking.StartDate)
		payload.EndDate = models.FormatDate(booking.EndDate)
		payload.TotalValue = booking.TotalValue.StringFixed(2)
	}
	for _, li := range booking.Lines {
		payload.ItemIDs = append(payload.ItemIDs, li.ItemID)
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, bookingID int64, booking *models.BookingWithLines, status string) {
	if s.sheetsWorker == nil {
		return
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, bookingID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", bookingID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
