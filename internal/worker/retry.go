package worker

import (
	"math"
	"time"

	"mta/internal/config"
)

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// RetryPolicyFromConfig maps the sync section of the config onto a policy.
func RetryPolicyFromConfig(cfg config.SyncConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:    cfg.MaxRetries,
		InitialDelay:  cfg.BaseDelay,
		MaxDelay:      cfg.MaxDelay,
		BackoffFactor: 2,
	}
}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	if r.MaxDelay > 0 && delay > float64(r.MaxDelay) {
		return r.MaxDelay
	}
	d := time.Duration(delay)
	if d <= 0 {
		d = time.Second
	}
	return d
}
