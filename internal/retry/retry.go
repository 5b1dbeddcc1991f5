// Package retry provides a small bounded retry loop for storage operations
// that can fail transiently, such as writes to a SQLite file on a shared
// network path that another machine holds locked.
package retry

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"
)

// Predicate determines whether an error should be retried.
type Predicate func(error) bool

// Config controls retry behavior. Backoff is linear: attempt × Delay.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       250 * time.Millisecond,
	}
}

// Do executes fn with retries using the provided config. Only errors the
// predicate classifies as transient are retried; anything else is returned
// immediately.
func Do(ctx context.Context, config Config, shouldRetry Predicate, fn func() error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var err error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if attempt == config.MaxAttempts || !shouldRetry(err) {
			return err
		}

		if !sleep(ctx, time.Duration(attempt)*config.Delay) {
			return ctx.Err()
		}
	}

	return err
}

// IsTransient reports whether an error is likely to clear on its own:
// lock contention on the database file, a temporary I/O failure, or a
// timeout. Permission and path errors are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	// modernc.org/sqlite surfaces busy/locked states as plain error
	// strings; match the stable SQLite result-code phrases.
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"database is locked",
		"database table is locked",
		"locking protocol",
		"disk i/o error",
		"sqlite_busy",
		"sqlite_ioerr",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}

	return false
}

func sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
