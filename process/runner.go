package process

import (
	"context"
	"errors"
	"fmt"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/logger"
	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/persistence"
)

var ErrTooManySteps = errors.New("process exceeded step limit")

// StepInput supplies the body for the session's pending step.
type StepInput func(ctx context.Context, session *model.ProcessSession) (map[string]any, error)

// Runner drives a session until it terminates: init when uninitialized, await while a job
// is outstanding, and submit Input's body whenever a step is pending.
type Runner struct {
	Input StepInput
	// Store, when set, receives the session after every exchange.
	Store persistence.SessionStore
	// BackOff builds the poll schedule for each job; nil polls every second for ever.
	BackOff  func() backoff.BackOff
	MaxSteps int
}

// Run returns the outcome that terminated the session. An Error outcome is not an error
// of Run; transport failures, contract violations and input failures are.
func (r *Runner) Run(ctx context.Context, m *Machine, params map[string]any) (model.JobOutcome, error) {
	var outcome model.JobOutcome
	exchanged := false
	steps := 0

	for {
		session := m.Session()
		var err error

		switch session.State {
		case model.UNINITIALIZED:
			outcome, err = m.Init(ctx, params)
		case model.STEP_PENDING:
			if r.MaxSteps > 0 && steps >= r.MaxSteps {
				return outcome, fmt.Errorf("%w: %d", ErrTooManySteps, r.MaxSteps)
			}
			var body map[string]any
			if r.Input != nil {
				body, err = r.Input(ctx, session)
				if err != nil {
					return outcome, fmt.Errorf("input for step %s: %w", session.CurrentStep, err)
				}
			}
			steps++
			outcome, err = m.Step(ctx, body)
		case model.ASYNC_PENDING:
			outcome, err = Await(ctx, m, r.backOff())
		case model.COMPLETE, model.FAILED:
			if !exchanged {
				return outcome, ErrSessionTerminated
			}
			logger.Info("process run finished", zap.String("session", session.Id), zap.String("state", string(session.State)))
			return outcome, nil
		default:
			return outcome, fmt.Errorf("%w: %s", ErrInvalidSessionState, session.State)
		}

		if saveErr := r.save(ctx, m); saveErr != nil {
			return outcome, saveErr
		}
		if err != nil {
			return outcome, err
		}
		exchanged = true
	}
}

func (r *Runner) backOff() backoff.BackOff {
	if r.BackOff == nil {
		return NewPollBackOff(DEFAULT_POLL_INTERVAL, 0)
	}
	return r.BackOff()
}

func (r *Runner) save(ctx context.Context, m *Machine) error {
	if r.Store == nil {
		return nil
	}
	session := m.Session()
	if err := r.Store.SaveSession(ctx, session); err != nil {
		logger.Error("error saving process session", zap.String("session", session.Id), zap.Error(err))
		return err
	}
	return nil
}
