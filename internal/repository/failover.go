package repository

import (
	"context"
	"sync/atomic"
	"time"

	"mta/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverReportCache serves from primary (Redis) until it fails, then from
// the fallback. Primary is retried once per recoveryInterval.
type FailoverReportCache struct {
	primary   domain.ReportCache
	fallback  domain.ReportCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverReportCache(primary, fallback domain.ReportCache, logger *zerolog.Logger) *FailoverReportCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverReportCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverReportCache) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary report cache failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

// usePrimary reports whether the primary should be tried for this call.
// A primary coming back after an outage is flushed first: it missed the
// invalidations issued while it was down.
func (r *FailoverReportCache) usePrimary(ctx context.Context) bool {
	if !r.isDown.Load() {
		return true
	}
	if r.now().Sub(time.Unix(0, r.lastCheck.Load())) <= recoveryInterval {
		return false
	}
	if err := r.primary.Invalidate(ctx); err != nil {
		r.markDown(err)
		return false
	}
	r.isDown.Store(false)
	r.logger.Info().Msg("Primary report cache recovered")
	return true
}

func (r *FailoverReportCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if r.usePrimary(ctx) {
		found, err := r.primary.Get(ctx, key, dest)
		if err == nil {
			return found, nil
		}
		r.markDown(err)
	}

	return r.fallback.Get(ctx, key, dest)
}

func (r *FailoverReportCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.usePrimary(ctx) {
		err := r.primary.Set(ctx, key, value, ttl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.Set(ctx, key, value, ttl)
}

// Invalidate clears both layers.
func (r *FailoverReportCache) Invalidate(ctx context.Context) error {
	fallbackErr := r.fallback.Invalidate(ctx)

	if !r.isDown.Load() {
		if err := r.primary.Invalidate(ctx); err != nil {
			r.markDown(err)
		}
	}
	return fallbackErr
}
