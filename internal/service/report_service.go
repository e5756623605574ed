package service

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"mta/internal/domain"
	"mta/internal/events"
	"mta/internal/metrics"
	"mta/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type expirySweeper interface {
	SweepNow(ctx context.Context) (int, error)
}

// ReportService builds the revenue and occupancy summary for bookings that
// start within a date range. Cancelled bookings are left out.
type ReportService struct {
	repo     domain.BookingRepository
	cache    domain.ReportCache
	sweeper  expirySweeper
	cacheTTL time.Duration
	logger   *zerolog.Logger

	// растёт при каждой инвалидации
	generation atomic.Uint64
}

func NewReportService(repo domain.BookingRepository, cache domain.ReportCache, sweeper expirySweeper, cacheTTL time.Duration, logger *zerolog.Logger) *ReportService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultReportCacheTTL * time.Second
	}
	return &ReportService{
		repo:     repo,
		cache:    cache,
		sweeper:  sweeper,
		cacheTTL: cacheTTL,
		logger:   componentLogger(logger, "report_service"),
	}
}

// SubscribeInvalidation drops cached summaries whenever a booking changes.
func (s *ReportService) SubscribeInvalidation(bus *events.EventBus) {
	if bus == nil || s.cache == nil {
		return
	}
	bus.Subscribe(func(event *events.Event) error {
		s.generation.Add(1)
		return s.cache.Invalidate(context.Background())
	}, events.BookingEventTypes...)
}

func (s *ReportService) Summary(ctx context.Context, from, to time.Time) (*models.ReportSummary, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}

	// Закрытие просроченных публикует события и сбрасывает кэш до чтения
	if s.sweeper != nil {
		if _, err := s.sweeper.SweepNow(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("expiry sweep before report failed")
		}
	}

	key := "summary:" + models.FormatDate(from) + ":" + models.FormatDate(to)
	if s.cache != nil {
		var cached models.ReportSummary
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("report cache get failed")
		}
		metrics.IncReportCache(found)
		if found {
			return &cached, nil
		}
	}

	generation := s.generation.Load()
	bookings, err := s.repo.ListBookingsStartingBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := Summarize(bookings, from, to)

	// A summary computed across an invalidation may be stale; serve it but do not store it.
	if s.cache != nil && s.generation.Load() == generation {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("report cache set failed")
		}
	}
	return summary, nil
}

// Summarize aggregates bookings into a summary. Cancelled bookings are skipped.
func Summarize(bookings []*models.BookingWithLines, from, to time.Time) *models.ReportSummary {
	summary := &models.ReportSummary{
		From:            from,
		To:              to,
		Revenue:         decimal.Zero,
		AverageTicket:   decimal.Zero,
		RevenueByDate:   []models.DateRevenue{},
		OccupancyByItem: []models.ItemQuantity{},
		RevenueByItem:   []models.ItemRevenue{},
		BookingsByMonth: []models.MonthCount{},
	}

	byDate := make(map[string]decimal.Decimal)
	byMonth := make(map[string]int64)
	qtyByItem := make(map[int64]*models.ItemQuantity)
	revByItem := make(map[int64]*models.ItemRevenue)

	for _, b := range bookings {
		if b.Status == models.StatusCancelled {
			continue
		}
		summary.Bookings++

		bookingRevenue := decimal.Zero
		for _, li := range b.Lines {
			bookingRevenue = bookingRevenue.Add(li.LineTotal)
			summary.ItemsRented += li.Quantity

			q, ok := qtyByItem[li.ItemID]
			if !ok {
				q = &models.ItemQuantity{ItemID: li.ItemID, ItemName: li.ItemName}
				qtyByItem[li.ItemID] = q
			}
			q.Quantity += li.Quantity

			r, ok := revByItem[li.ItemID]
			if !ok {
				r = &models.ItemRevenue{ItemID: li.ItemID, ItemName: li.ItemName, Revenue: decimal.Zero}
				revByItem[li.ItemID] = r
			}
			r.Revenue = r.Revenue.Add(li.LineTotal)
		}
		summary.Revenue = summary.Revenue.Add(bookingRevenue)

		day := models.FormatDate(b.StartDate)
		if prev, ok := byDate[day]; ok {
			byDate[day] = prev.Add(bookingRevenue)
		} else {
			byDate[day] = bookingRevenue
		}
		byMonth[b.StartDate.Format("2006-01")]++
	}

	if summary.Bookings > 0 {
		summary.AverageTicket = summary.Revenue.Div(decimal.NewFromInt(summary.Bookings)).Round(2)
	}

	for day, revenue := range byDate {
		summary.RevenueByDate = append(summary.RevenueByDate, models.DateRevenue{Date: day, Revenue: revenue})
	}
	sort.Slice(summary.RevenueByDate, func(i, j int) bool {
		return summary.RevenueByDate[i].Date < summary.RevenueByDate[j].Date
	})

	for month, count := range byMonth {
		summary.BookingsByMonth = append(summary.BookingsByMonth, models.MonthCount{Month: month, Bookings: count})
	}
	sort.Slice(summary.BookingsByMonth, func(i, j int) bool {
		return summary.BookingsByMonth[i].Month < summary.BookingsByMonth[j].Month
	})

	for _, q := range qtyByItem {
		summary.OccupancyByItem = append(summary.OccupancyByItem, *q)
	}
	sort.Slice(summary.OccupancyByItem, func(i, j int) bool {
		a, b := summary.OccupancyByItem[i], summary.OccupancyByItem[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ItemName < b.ItemName
	})

	for _, r := range revByItem {
		summary.RevenueByItem = append(summary.RevenueByItem, *r)
	}
	sort.Slice(summary.RevenueByItem, func(i, j int) bool {
		a, b := summary.RevenueByItem[i], summary.RevenueByItem[j]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		return a.ItemName < b.ItemName
	})
	if len(summary.RevenueByItem) > models.TopItemsLimit {
		summary.RevenueByItem = summary.RevenueByItem[:models.TopItemsLimit]
	}

	return summary
}
