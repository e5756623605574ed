package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mta/internal/config"
	"mta/internal/database"
	"mta/internal/export"
	"mta/internal/logging"
	"mta/internal/models"
)

// Writes bookings to an xlsx file under exports.path. With -from/-to only
// bookings overlapping that range are exported.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		fromFlag = flag.String("from", "", "range start, YYYY-MM-DD")
		toFlag   = flag.String("to", "", "range end, YYYY-MM-DD")
	)
	flag.Parse()

	from, to, err := parseRange(*fromFlag, *toFlag)
	if err != nil {
		return err
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger = logging.Component(logger, "export")

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	location, err := cfg.App.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}
	closed, err := db.SweepExpired(ctx, models.DateOnly(time.Now().In(location)))
	if err != nil {
		return fmt.Errorf("sweep expired bookings: %w", err)
	}
	if len(closed) > 0 {
		logger.Info().Int("closed", len(closed)).Msg("expired bookings closed before export")
	}

	bookings, err := db.ListBookingsWithLineItems(ctx)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}
	if !from.IsZero() {
		bookings = overlapping(bookings, from, to)
	}

	f, err := export.BookingsWorkbook(bookings)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(cfg.Exports.Path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("save export: %w", err)
	}

	logger.Info().Int("bookings", len(bookings)).Str("file", filePath).Msg("export written")
	return nil
}

func parseRange(rawFrom, rawTo string) (time.Time, time.Time, error) {
	if rawFrom == "" && rawTo == "" {
		return time.Time{}, time.Time{}, nil
	}
	if rawFrom == "" || rawTo == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("-from and -to must be given together")
	}
	from, err := models.ParseDate(rawFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -from: %w", err)
	}
	to, err := models.ParseDate(rawTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid -to: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to %s is before -from %s", rawTo, rawFrom)
	}
	return from, to, nil
}

func overlapping(bookings []*models.BookingWithLines, from, to time.Time) []*models.BookingWithLines {
	out := make([]*models.BookingWithLines, 0, len(bookings))
	for _, b := range bookings {
		if models.Overlaps(b.StartDate, b.EndDate, from, to) {
			out = append(out, b)
		}
	}
	return out
}
