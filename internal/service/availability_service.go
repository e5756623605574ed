package service

import (
	"context"
	"fmt"
	"time"

	"mta/internal/domain"
	"mta/internal/models"

	"github.com/rs/zerolog"
)

// AvailabilityService answers "how many units of an item are free over
// [start, end]". All methods are reads.
type AvailabilityService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		logger: componentLogger(logger, "availability_service"),
	}
}

func (s *AvailabilityService) CommittedQuantity(ctx context.Context, itemID int64, start, end time.Time, excludeBookingID int64) (int64, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return 0, err
	}
	return s.repo.CommittedQuantity(ctx, itemID, start, end, excludeBookingID)
}

func (s *AvailabilityService) AvailableQuantity(ctx context.Context, itemID int64, start, end time.Time, excludeBookingID int64) (*models.Availability, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	committed, err := s.repo.CommittedQuantity(ctx, itemID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}

	return availabilityOf(item, start, end, committed), nil
}

// Report lists availability for every item over the range, in catalog order.
func (s *AvailabilityService) Report(ctx context.Context, start, end time.Time) ([]*models.Availability, error) {
	start, end, err := normalizeRange(start, end)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	committed, err := s.repo.CommittedByItem(ctx, start, end)
	if err != nil {
		return nil, err
	}

	report := make([]*models.Availability, 0, len(items))
	for _, item := range items {
		report = append(report, availabilityOf(item, start, end, committed[item.ID]))
	}
	return report, nil
}

func availabilityOf(item *models.Item, start, end time.Time, committed int64) *models.Availability {
	return &models.Availability{
		ItemID:      item.ID,
		ItemName:    item.Name,
		Description: item.Description,
		From:        start,
		To:          end,
		Total:       item.TotalQuantity,
		Committed:   committed,
		Available:   models.AvailableQuantity(item.TotalQuantity, committed),
	}
}

// normalizeRange truncates both ends to dates and rejects inverted ranges.
func normalizeRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		return start, end, domain.NewValidationError("start_date", "is required")
	}
	if end.IsZero() {
		return start, end, domain.NewValidationError("end_date", "is required")
	}
	start, end = models.DateOnly(start), models.DateOnly(end)
	if end.Before(start) {
		return start, end, domain.NewValidationError("end_date",
			fmt.Sprintf("%s is before start date %s", models.FormatDate(end), models.FormatDate(start)))
	}
	return start, end, nil
}
