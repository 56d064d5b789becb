package errors

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"semforge/internal/logging"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts  int           // retries after the first attempt (default: 3)
	BaseDelay    time.Duration // base delay for exponential backoff (default: 200ms)
	MaxDelay     time.Duration // cap on the delay between attempts (default: 5s)
	JitterFactor float64       // ±fraction of randomization (default: 0.25)
}

// DefaultRetryConfig returns defaults tuned for local registry and index I/O.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		BaseDelay:    200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		JitterFactor: 0.25,
	}
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// Retry executes fn with exponential backoff. Non-transient errors stop the
// loop immediately and are returned as-is.
func Retry(ctx context.Context, config RetryConfig, fn RetryableFunc) error {
	return RetryWithLog(ctx, config, fn, nil)
}

// RetryWithLog is Retry with attempt-level logging.
func RetryWithLog(ctx context.Context, config RetryConfig, fn RetryableFunc, logger logging.Logger) error {
	logger = logging.OrNop(logger)
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 200 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("retry succeeded after %d attempts", attempt+1)
			}
			return nil
		}
		lastErr = err

		if !IsTransient(err) {
			return err
		}
		if attempt == config.MaxAttempts {
			logger.Warn("max retries (%d) exhausted: %v", config.MaxAttempts+1, err)
			break
		}

		delay := calculateBackoff(attempt, config)
		logger.Debug("attempt %d failed, waiting %v: %v", attempt+1, delay, err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", config.MaxAttempts+1, lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := time.Duration(float64(config.BaseDelay) * math.Pow(2, float64(attempt)))
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	if config.JitterFactor > 0 {
		jitter := (rand.Float64()*2 - 1) * config.JitterFactor * float64(delay)
		delay += time.Duration(jitter)
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}
