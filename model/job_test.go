package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobOutcomeVariants(t *testing.T) {
	for scenario, tc := range map[string]struct {
		outcome  JobOutcome
		terminal bool
		text     string
	}{
		"started":             {outcome: NewStarted("P1", "J1"), text: "started job J1"},
		"running":             {outcome: NewRunning(nil), text: "running"},
		"complete with step":  {outcome: NewComplete(nil, "review", ""), text: "complete, next step review"},
		"complete":            {outcome: NewComplete(nil, "", ""), terminal: true, text: "complete"},
		"error":               {outcome: NewError("boom", nil), terminal: true, text: "error: boom"},
		"unexpected response": {outcome: UnexpectedResponse(), terminal: true, text: "error: Unexpected server response."},
	} {
		t.Run(scenario, func(t *testing.T) {
			require.Equal(t, tc.terminal, tc.outcome.IsTerminal())
			require.Equal(t, tc.text, tc.outcome.String())

			set := 0
			if tc.outcome.Started != nil {
				set++
			}
			if tc.outcome.Running != nil {
				set++
			}
			if tc.outcome.Complete != nil {
				set++
				require.NotNil(t, tc.outcome.Complete.Values)
			}
			if tc.outcome.Error != nil {
				set++
			}
			require.Equal(t, 1, set)
		})
	}
}

func TestDecodeJobStatus(t *testing.T) {
	status, err := DecodeJobStatus(map[string]any{"message": "Processing", "current": float64(3), "total": "12"})
	require.NoError(t, err)
	require.Equal(t, JobStatus{Message: "Processing", Current: 3, Total: 12}, status)
	require.Equal(t, 25, status.Percent())

	status, err = DecodeJobStatus(nil)
	require.NoError(t, err)
	require.Equal(t, -1, status.Percent())

	_, err = DecodeJobStatus("not a status")
	require.Error(t, err)

	require.Equal(t, 100, JobStatus{Current: 15, Total: 12}.Percent())
}

func TestSessionClone(t *testing.T) {
	s := &ProcessSession{Id: "s", State: STEP_PENDING, Values: map[string]any{"a": 1}}
	c := s.Clone()
	c.Values["a"] = 2
	c.State = FAILED
	require.Equal(t, 1, s.Values["a"])
	require.Equal(t, STEP_PENDING, s.State)
	require.Nil(t, (*ProcessSession)(nil).Clone())

	require.True(t, COMPLETE.IsTerminal())
	require.True(t, FAILED.IsTerminal())
	require.False(t, ASYNC_PENDING.IsTerminal())
}
