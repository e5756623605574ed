package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mta/internal/database"
	"mta/internal/domain"
	"mta/internal/metrics"
	"mta/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert"
	TaskDelete       = "delete"
	TaskUpdateStatus = "update_status"
)

// sheetTaskPayload is persisted in SyncTask.Payload as JSON.
type sheetTaskPayload struct {
	BookingID int64                    `json:"booking_id"`
	Booking   *models.BookingWithLines `json:"booking,omitempty"`
	Status    string                   `json:"status,omitempty"`
}

// SheetsWorker consumes sync_queue tasks and applies them to the bookings spreadsheet.
type SheetsWorker struct {
	db            *database.DB
	sheets        domain.SheetsWriter
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.SyncTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	// выполненные задачи старше retention удаляются раз в purgeInterval
	retention     time.Duration
	purgeInterval time.Duration
	lastPurge     time.Time
	logger        *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(db *database.DB, sheets domain.SheetsWriter, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "sheets_worker").Logger()

	return &SheetsWorker{
		db:            db,
		sheets:        sheets,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.SyncTask, models.WorkerQueueSize),
		redisQueueKey: "mta:sheets:queue",
		deadLetterKey: "mta:sheets:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		retention:     7 * 24 * time.Hour,
		purgeInterval: time.Hour,
		logger:        &l,
	}
}

// SetPollInterval overrides how long the loop idles when no task is due.
func (w *SheetsWorker) SetPollInterval(d time.Duration) {
	if d > 0 {
		w.pollInterval = d
	}
}

// EnqueueTask persists task to DB and schedules it via redis or in-memory queue.
func (w *SheetsWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.BookingWithLines, status string) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if bookingID == 0 && booking != nil {
		bookingID = booking.ID
	}
	if bookingID == 0 {
		return errors.New("booking id is required")
	}

	payloadBytes, err := json.Marshal(sheetTaskPayload{
		BookingID: bookingID,
		Booking:   booking,
		Status:    status,
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	syncTask := models.SyncTask{
		TaskType:  taskType,
		BookingID: bookingID,
		Payload:   string(payloadBytes),
		Status:    models.SyncStatusPending,
	}

	if err := w.db.CreateSyncTask(ctx, &syncTask); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	if w.redis != nil {
		if err := w.pushRedis(ctx, syncTask); err != nil {
			w.logger.Warn().Err(err).Int64("task_id", syncTask.ID).Msg("Redis push failed, falling back to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- syncTask:
	default:
		w.logger.Warn().Int64("task_id", syncTask.ID).Msg("In-memory queue full, task left for polling")
	}

	return nil
}

// Start launches main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Sheets worker started")
	defer w.logger.Info().Msg("Sheets worker stopped")

	w.reportFailed(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingSyncTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("Failed to fetch pending sync tasks")
			w.sleep(ctx)
			continue
		}
		if len(tasks) == 0 {
			w.purgeCompleted(ctx)
			w.sleep(ctx)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

// reportFailed logs tasks left failed by earlier runs; they are never retried automatically.
func (w *SheetsWorker) reportFailed(ctx context.Context) {
	failed, err := w.db.GetFailedSyncTasks(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to load failed sync tasks")
		return
	}
	if len(failed) > 0 {
		w.logger.Warn().Int("count", len(failed)).Int64("latest_task_id", failed[0].ID).Msg("Failed sync tasks need attention")
	}
}

func (w *SheetsWorker) purgeCompleted(ctx context.Context) {
	now := time.Now()
	if now.Sub(w.lastPurge) < w.purgeInterval {
		return
	}
	w.lastPurge = now

	purged, err := w.db.PurgeCompletedSyncTasks(ctx, now.Add(-w.retention))
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to purge completed sync tasks")
		return
	}
	if purged > 0 {
		w.logger.Debug().Int64("purged", purged).Msg("Completed sync tasks purged")
	}
}

func (w *SheetsWorker) sleep(ctx context.Context) {
	t := time.NewTimer(w.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (w *SheetsWorker) tryLocalQueue() (models.SyncTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.SyncTask{}, false
	}
}

func (w *SheetsWorker) tryRedis(ctx context.Context) (models.SyncTask, bool) {
	if w.redis == nil {
		return models.SyncTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.Nil) {
			return models.SyncTask{}, false
		}
		w.logger.Warn().Err(err).Msg("Redis BRPOP failed")
		return models.SyncTask{}, false
	}
	if len(res) != 2 {
		return models.SyncTask{}, false
	}
	var task models.SyncTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to decode redis task")
		return models.SyncTask{}, false
	}
	return task, true
}

func (w *SheetsWorker) processTask(ctx context.Context, task *models.SyncTask) {
	payload, err := w.decodePayload(task.Payload)
	if err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.handleSheetTask(ctx, task.TaskType, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	metrics.IncSyncTask(task.TaskType, models.SyncStatusCompleted)
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to mark task completed")
	}
}

func (w *SheetsWorker) handleSheetTask(ctx context.Context, taskType string, payload sheetTaskPayload) error {
	switch taskType {
	case TaskUpsert:
		if payload.Booking == nil {
			return errors.New("booking payload missing")
		}
		return w.sheets.UpsertBooking(ctx, payload.Booking)
	case TaskDelete:
		if payload.BookingID == 0 {
			return errors.New("booking id missing")
		}
		return w.sheets.DeleteBookingRow(ctx, payload.BookingID)
	case TaskUpdateStatus:
		if payload.BookingID == 0 || payload.Status == "" {
			return errors.New("booking id or status missing")
		}
		return w.sheets.UpdateBookingStatus(ctx, payload.BookingID, payload.Status)
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *SheetsWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, cause)
		return
	}

	metrics.IncSyncTask(task.TaskType, models.SyncStatusRetry)
	nextTime := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Time("next_retry_at", nextTime).Msg("Sync task failed, scheduling retry")
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to mark task for retry")
	}
}

func (w *SheetsWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	metrics.IncSyncTask(task.TaskType, models.SyncStatusFailed)
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Int64("booking_id", task.BookingID).Msg("Sync task failed permanently")
	if err := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to mark task failed")
	}
	w.pushDeadLetter(ctx, task)
}

func (w *SheetsWorker) decodePayload(raw string) (sheetTaskPayload, error) {
	var payload sheetTaskPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

func (w *SheetsWorker) pushRedis(ctx context.Context, task models.SyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *SheetsWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to encode dead letter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Failed to push dead letter")
	}
}
