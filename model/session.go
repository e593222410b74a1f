package model

import "time"

type SessionState string

const UNINITIALIZED SessionState = "UNINITIALIZED"
const INITIALIZING SessionState = "INITIALIZING"
const STEP_PENDING SessionState = "STEP_PENDING"
const ASYNC_PENDING SessionState = "ASYNC_PENDING"
const COMPLETE SessionState = "COMPLETE"
const FAILED SessionState = "FAILED"

// ProcessSession is one running instance of a backend process as seen by the client.
type ProcessSession struct {
	Id          string         `json:"id"`
	ProcessName string         `json:"processName"`
	ProcessUUID string         `json:"processUUID,omitempty"`
	CurrentStep string         `json:"currentStep,omitempty"`
	LastJobUUID string         `json:"lastJobUUID,omitempty"`
	State       SessionState   `json:"state"`
	Values      map[string]any `json:"values"`
	LastError   string         `json:"lastError,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (s SessionState) IsTerminal() bool {
	return s == COMPLETE || s == FAILED
}

// Clone copies the session including its values map.
func (s *ProcessSession) Clone() *ProcessSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Values = make(map[string]any, len(s.Values))
	for k, v := range s.Values {
		out.Values[k] = v
	}
	return &out
}
