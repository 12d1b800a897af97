// Package polling drives the bounded completion loop for remote providers
// that finish asynchronously. The loop is a small state machine: a submitted
// remote job is checked at a fixed interval until it completes, fails, or the
// attempt budget runs out. The status source is injected so the machine is
// testable without a network.
package polling

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status is the remote job's state as reported by one check.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// CheckFunc reports the remote job's current state. The location return is
// meaningful only when the status is StatusCompleted.
type CheckFunc func(ctx context.Context) (Status, string, error)

// Config bounds the loop. Each remote attempt takes at most
// Interval * MaxAttempts before it is abandoned.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

// ErrTimedOut means the remote job never reached a terminal state within the
// attempt budget. It is a normal, handled outcome for the chain, not a crash.
var ErrTimedOut = errors.New("polling: attempts exhausted")

// ErrRemoteFailed means the remote service explicitly reported failure.
var ErrRemoteFailed = errors.New("polling: remote job failed")

// Await polls until the remote job settles and returns the completed asset's
// location. A check error counts as an explicit remote failure.
func Await(ctx context.Context, cfg Config, check CheckFunc) (string, error) {
	if cfg.MaxAttempts <= 0 {
		return "", fmt.Errorf("polling: max attempts must be positive, got %d", cfg.MaxAttempts)
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(cfg.Interval):
		}

		status, location, err := check(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: attempt %d: %v", ErrRemoteFailed, attempt, err)
		}

		switch status {
		case StatusCompleted:
			return location, nil
		case StatusFailed:
			return "", fmt.Errorf("%w: attempt %d", ErrRemoteFailed, attempt)
		default:
			// Still pending, burn one attempt.
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrTimedOut, cfg.MaxAttempts)
}
