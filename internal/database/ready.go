package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultReadyAttempts = 15
	DefaultReadyDelay    = time.Second

	pingTimeout = 2 * time.Second
)

// Pinger is anything that can tell whether its storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FatalBootError means storage could not be made ready and the process must
// not start serving.
type FatalBootError struct {
	Stage    string
	Attempts int
	Err      error
}

func (e *FatalBootError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("%s failed after %d attempts: %v", e.Stage, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *FatalBootError) Unwrap() error {
	return e.Err
}

// EnsureReady pings p up to attempts times, delay apart. It gives up early
// if ctx is cancelled.
func EnsureReady(ctx context.Context, p Pinger, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	tries := 0
	ping := func() error {
		tries++
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		err := p.Ping(pctx)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"attempt": tries,
				"of":      attempts,
			}).Info("waiting for storage")
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)
	if err := backoff.Retry(ping, policy); err != nil {
		return &FatalBootError{Stage: "storage readiness", Attempts: tries, Err: err}
	}

	log.WithField("attempts", tries).Info("storage is reachable")
	return nil
}
