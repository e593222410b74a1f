package process

import (
	"context"
	"errors"
	"testing"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/persistence/memory"
)

func zeroBackOff() backoff.BackOff {
	return &backoff.ZeroBackOff{}
}

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("runs to completion", func(t *testing.T) {
		f := &fakeTransport{
			init: []reply{ok(map[string]any{"processUUID": "P1", "nextStep": "setup"})},
			step: []reply{
				ok(map[string]any{"jobUUID": "J1"}),
				ok(map[string]any{"values": map[string]any{"greeted": 2}}),
			},
			status: []reply{
				ok(map[string]any{"jobStatus": nil}),
				ok(map[string]any{"nextStep": "result", "values": map[string]any{"count": 2}}),
			},
		}
		store := memory.NewInMemorySessionStore(0)
		var steps []string
		r := &Runner{
			Input: func(ctx context.Context, session *model.ProcessSession) (map[string]any, error) {
				steps = append(steps, session.CurrentStep)
				return map[string]any{"step": session.CurrentStep}, nil
			},
			Store:   store,
			BackOff: zeroBackOff,
		}
		m := newMachine(f, "greet")

		outcome, err := r.Run(ctx, m, map[string]any{"p": "v"})
		require.NoError(t, err)
		require.Equal(t, model.JOB_COMPLETE, outcome.Kind)
		require.Equal(t, []string{"setup", "result"}, steps)
		require.Equal(t, "result", f.lastCall().body["step"])

		saved, err := store.GetSession(ctx, m.Session().Id)
		require.NoError(t, err)
		require.Equal(t, model.COMPLETE, saved.State)
		require.Equal(t, "P1", saved.ProcessUUID)
		require.Equal(t, 2, saved.Values["count"])
		require.Equal(t, 2, saved.Values["greeted"])
	})

	t.Run("error outcome is not a run error", func(t *testing.T) {
		f := &fakeTransport{init: []reply{ok(map[string]any{"error": "bad input"})}}
		m := newMachine(f, "greet")
		outcome, err := (&Runner{}).Run(ctx, m, nil)
		require.NoError(t, err)
		require.Equal(t, "bad input", outcome.Error.Message)
		require.Equal(t, model.FAILED, m.State())
	})

	t.Run("input failure stops the run", func(t *testing.T) {
		boom := errors.New("no input")
		f := &fakeTransport{init: []reply{ok(map[string]any{"nextStep": "setup", "processUUID": "P1"})}}
		r := &Runner{Input: func(ctx context.Context, session *model.ProcessSession) (map[string]any, error) {
			return nil, boom
		}}
		m := newMachine(f, "greet")
		_, err := r.Run(ctx, m, nil)
		require.ErrorIs(t, err, boom)
		require.Equal(t, model.STEP_PENDING, m.State())
		require.Equal(t, 0, f.callCount(OP_STEP))
	})

	t.Run("step limit", func(t *testing.T) {
		f := &fakeTransport{
			init: []reply{ok(map[string]any{"nextStep": "a", "processUUID": "P1"})},
			step: []reply{ok(map[string]any{"nextStep": "b"}), ok(map[string]any{"nextStep": "c"})},
		}
		m := newMachine(f, "greet")
		_, err := (&Runner{MaxSteps: 2}).Run(ctx, m, nil)
		require.ErrorIs(t, err, ErrTooManySteps)
		require.Equal(t, 2, f.callCount(OP_STEP))
		require.Equal(t, "c", m.Session().CurrentStep)
	})

	t.Run("transport failure is saved and returned", func(t *testing.T) {
		boom := errors.New("unreachable")
		f := &fakeTransport{init: []reply{failed(boom)}}
		store := memory.NewInMemorySessionStore(0)
		m := newMachine(f, "greet")
		_, err := (&Runner{Store: store}).Run(ctx, m, nil)
		require.ErrorIs(t, err, boom)

		saved, err := store.GetSession(ctx, m.Session().Id)
		require.NoError(t, err)
		require.Equal(t, model.UNINITIALIZED, saved.State)
	})

	t.Run("terminated session", func(t *testing.T) {
		f := &fakeTransport{}
		m, err := ResumeMachine(NewDriver(f), NewPoller(f), &model.ProcessSession{Id: "s", ProcessName: "greet", State: model.COMPLETE})
		require.NoError(t, err)
		_, err = (&Runner{}).Run(ctx, m, nil)
		require.ErrorIs(t, err, ErrSessionTerminated)
	})
}
