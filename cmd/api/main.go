package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mta/internal/api"
	"mta/internal/config"
	"mta/internal/database"
	"mta/internal/domain"
	"mta/internal/events"
	"mta/internal/google"
	"mta/internal/logging"
	"mta/internal/metrics"
	"mta/internal/models"
	"mta/internal/repository"
	"mta/internal/service"
	"mta/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	location, err := cfg.App.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	bus := events.NewEventBus()
	bus.OnError = func(event *events.Event, err error) {
		logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
	}

	var syncWorker domain.SyncWorker
	if sheetsService := initGoogleSheets(ctx, cfg, db, &logger); sheetsService != nil {
		sw := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicyFromConfig(cfg.Sync), &logger)
		sw.SetPollInterval(cfg.Sync.PollInterval)
		go sw.Start(ctx)
		syncWorker = sw
	}

	bookings := service.NewBookingService(db, bus, syncWorker, location, &logger)
	reports := service.NewReportService(db, initReportCache(redisClient, &logger), bookings, cfg.Reports.CacheTTL, &logger)
	reports.SubscribeInvalidation(bus)

	services := api.Services{
		Items:        service.NewItemService(db, &logger),
		Customers:    service.NewCustomerService(db, &logger),
		Availability: service.NewAvailabilityService(db, &logger),
		Bookings:     bookings,
		Reports:      reports,
	}

	if cfg.Backup.Enabled {
		go database.NewBackupService(db, cfg.Backup, &logger).Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	if !cfg.API.HTTP.Enabled {
		logger.Warn().Msg("HTTP API is disabled in config, only background jobs will run")
		<-ctx.Done()
		return nil
	}

	httpServer := api.NewHTTPServer(cfg.API, services, &logger)
	return serve(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// loadItems reads the optional catalog file; a missing file is not an error.
func loadItems(path string) ([]models.Item, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}

	var itemsConfig struct {
		Items []models.Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &itemsConfig); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	return itemsConfig.Items, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	itemsPath := os.Getenv("ITEMS_PATH")
	if itemsPath == "" {
		itemsPath = "configs/items.yaml"
	}
	items, err := loadItems(itemsPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	if len(items) > 0 {
		if err := db.SyncItems(context.Background(), items); err != nil {
			db.Close()
			return nil, fmt.Errorf("sync items: %w", err)
		}
		logger.Info().Int("count", len(items)).Str("items_path", itemsPath).Msg("items catalog synced")
	}
	return db, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initReportCache prefers redis and keeps an in-process copy for outages.
func initReportCache(client *redis.Client, logger *zerolog.Logger) domain.ReportCache {
	memory := repository.NewMemoryReportCache()
	if client == nil {
		return memory
	}
	return repository.NewFailoverReportCache(repository.NewRedisReportCache(client), memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled() {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx,
		cfg.Google.GoogleCredentialsFile,
		cfg.Google.BookingSpreadSheetID,
		cfg.Google.BookingSheetName,
		logger,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets")
		return nil
	}

	if cfg.Google.RebuildOnStart {
		bookings, err := db.ListBookingsWithLineItems(ctx)
		if err == nil {
			err = sheetsService.ReplaceBookingsSheet(ctx, bookings)
		}
		if err != nil {
			logger.Warn().Err(err).Msg("bookings sheet rebuild failed")
		}
	} else if err := sheetsService.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("bookings sheet cache warm-up failed")
	}

	logger.Info().Str("sheet", cfg.Google.BookingSheetName).Msg("google sheets connected")
	return sheetsService
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
