package retry

import (
	"context"
	"fmt"
	"time"
)

// Forever disables the attempt cap: Do keeps retrying until the
// function succeeds or the context is cancelled.
const Forever = -1

// Config holds retry configuration
type Config struct {
	MaxRetries     int           // Maximum number of retry attempts; Forever for no cap
	InitialBackoff time.Duration // Initial backoff duration
	MaxBackoff     time.Duration // Maximum backoff duration
	Multiplier     float64       // Backoff multiplier (exponential)
}

// DefaultConfig returns sensible defaults for retries
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// Fixed returns a config that retries forever with a constant interval.
// This is the readiness-gating profile: never give up, never back off.
func Fixed(interval time.Duration) Config {
	return Config{
		MaxRetries:     Forever,
		InitialBackoff: interval,
		MaxBackoff:     interval,
		Multiplier:     1.0,
	}
}

// Do executes fn with backoff retries until success, cancellation, or
// (when MaxRetries >= 0) the attempt cap is reached.
func Do(ctx context.Context, config Config, fn func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; ; attempt++ {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		// Execute function
		err := fn()
		if err == nil {
			return nil // Success
		}

		lastErr = err

		// Don't sleep after last attempt
		if config.MaxRetries >= 0 && attempt == config.MaxRetries {
			break
		}

		// Sleep before the next attempt
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}

		// Calculate next backoff
		backoff = time.Duration(float64(backoff) * config.Multiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", config.MaxRetries, lastErr)
}
