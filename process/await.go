package process

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/kingsrook/qqq-client/model"
)

var ErrPollTimeout = errors.New("gave up waiting for job")

const DEFAULT_POLL_INTERVAL = time.Second

// NewPollBackOff waits interval between the first polls, growing slowly up to ten
// times interval, and stops after timeout. A zero timeout never stops.
func NewPollBackOff(interval time.Duration, timeout time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.RandomizationFactor = 0
	b.Multiplier = 1.5
	b.MaxInterval = 10 * interval
	b.MaxElapsedTime = timeout
	b.Reset()
	return b
}

// Await polls the session's outstanding job until it is no longer running. The wait
// between polls comes from b; when b stops, Await returns ErrPollTimeout together with
// the last Running outcome.
func Await(ctx context.Context, m *Machine, b backoff.BackOff) (model.JobOutcome, error) {
	b.Reset()
	for {
		outcome, err := m.Poll(ctx)
		if err != nil {
			return outcome, err
		}
		if outcome.Kind != model.JOB_RUNNING {
			return outcome, nil
		}

		next := b.NextBackOff()
		if next == backoff.Stop {
			return outcome, ErrPollTimeout
		}
		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			return outcome, ctx.Err()
		case <-timer.C:
		}
	}
}
