package process

import (
	"context"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"

	"github.com/kingsrook/qqq-client/model"
)

func startedMachine(t *testing.T, f *fakeTransport) *Machine {
	t.Helper()
	f.init = []reply{ok(map[string]any{"jobUUID": "J1", "processUUID": "P1"})}
	m := newMachine(f, "greet")
	_, err := m.Init(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, model.ASYNC_PENDING, m.State())
	return m
}

func TestAwait(t *testing.T) {
	ctx := context.Background()

	t.Run("polls until complete", func(t *testing.T) {
		f := &fakeTransport{status: []reply{
			ok(map[string]any{"jobStatus": nil}),
			ok(map[string]any{"jobStatus": nil}),
			ok(map[string]any{"nextStep": "review"}),
		}}
		m := startedMachine(t, f)

		outcome, err := Await(ctx, m, &backoff.ZeroBackOff{})
		require.NoError(t, err)
		require.Equal(t, model.JOB_COMPLETE, outcome.Kind)
		require.Equal(t, 3, f.callCount(OP_STATUS))
		require.Equal(t, model.STEP_PENDING, m.State())
	})

	t.Run("stops on error outcome", func(t *testing.T) {
		f := &fakeTransport{status: []reply{ok(map[string]any{"error": "failed"})}}
		m := startedMachine(t, f)

		outcome, err := Await(ctx, m, &backoff.ZeroBackOff{})
		require.NoError(t, err)
		require.Equal(t, model.JOB_ERROR, outcome.Kind)
		require.Equal(t, model.FAILED, m.State())
	})

	t.Run("gives up when the backoff stops", func(t *testing.T) {
		f := &fakeTransport{status: []reply{ok(map[string]any{"jobStatus": nil})}, repeatLast: true}
		m := startedMachine(t, f)

		outcome, err := Await(ctx, m, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2))
		require.ErrorIs(t, err, ErrPollTimeout)
		require.Equal(t, model.JOB_RUNNING, outcome.Kind)
		require.Equal(t, 3, f.callCount(OP_STATUS))
		require.Equal(t, model.ASYNC_PENDING, m.State())
		require.Equal(t, "J1", m.Session().LastJobUUID)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		f := &fakeTransport{status: []reply{ok(map[string]any{"jobStatus": nil})}, repeatLast: true}
		m := startedMachine(t, f)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Await(cctx, m, backoff.NewConstantBackOff(time.Hour))
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, f.callCount(OP_STATUS))
	})

	t.Run("transport failure ends the wait", func(t *testing.T) {
		f := &fakeTransport{status: []reply{failed(context.DeadlineExceeded)}}
		m := startedMachine(t, f)

		_, err := Await(ctx, m, &backoff.ZeroBackOff{})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Equal(t, model.ASYNC_PENDING, m.State())
	})

	t.Run("nothing to wait for", func(t *testing.T) {
		m := newMachine(&fakeTransport{}, "greet")
		_, err := Await(ctx, m, &backoff.ZeroBackOff{})
		require.ErrorIs(t, err, ErrInvalidSessionState)
	})
}

func TestNewPollBackOff(t *testing.T) {
	b := NewPollBackOff(100*time.Millisecond, time.Minute)
	require.Equal(t, 100*time.Millisecond, b.NextBackOff())
	require.Equal(t, 150*time.Millisecond, b.NextBackOff())

	for i := 0; i < 20; i++ {
		require.LessOrEqual(t, b.NextBackOff(), time.Second)
	}
}
