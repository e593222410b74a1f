package process

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/analytics"
	"github.com/kingsrook/qqq-client/logger"
	"github.com/kingsrook/qqq-client/model"
)

var (
	ErrSessionTerminated   = errors.New("process session already terminated")
	ErrInvalidSessionState = errors.New("invalid process session state")
	ErrExchangeInProgress  = errors.New("process exchange in progress")
)

// Machine drives one ProcessSession through init, steps and job polls. At most one
// exchange may be outstanding; a second concurrent call fails with ErrExchangeInProgress.
type Machine struct {
	mu      sync.Mutex
	busy    bool
	driver  *Driver
	poller  *Poller
	session *model.ProcessSession
}

func NewMachine(driver *Driver, poller *Poller, processName string) *Machine {
	now := time.Now().UTC()
	return &Machine{
		driver: driver,
		poller: poller,
		session: &model.ProcessSession{
			Id:          uuid.New().String(),
			ProcessName: processName,
			State:       model.UNINITIALIZED,
			Values:      make(map[string]any),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// ResumeMachine continues a session loaded from a store.
func ResumeMachine(driver *Driver, poller *Poller, session *model.ProcessSession) (*Machine, error) {
	if session == nil || session.ProcessName == "" {
		return nil, fmt.Errorf("%w: session has no process name", ErrInvalidSessionState)
	}
	if (session.State == model.STEP_PENDING || session.State == model.ASYNC_PENDING) && session.ProcessUUID == "" {
		return nil, fmt.Errorf("%w: %s session has no process uuid", ErrInvalidSessionState, session.State)
	}
	s := session.Clone()
	if s.State == model.INITIALIZING {
		// the init exchange never finished, nothing was assigned
		s.State = model.UNINITIALIZED
	}
	return &Machine{driver: driver, poller: poller, session: s}, nil
}

// Session returns a copy of the current session.
func (m *Machine) Session() *model.ProcessSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

func (m *Machine) State() model.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.State
}

// Init starts the process. Valid only before any exchange.
func (m *Machine) Init(ctx context.Context, params map[string]any) (model.JobOutcome, error) {
	snap, err := m.begin(model.UNINITIALIZED)
	if err != nil {
		return model.JobOutcome{}, err
	}
	defer m.end()

	m.setState(model.INITIALIZING)
	outcome, err := m.driver.Init(ctx, snap.ProcessName, params)
	if err != nil {
		m.setState(model.UNINITIALIZED)
		return outcome, err
	}
	return m.apply(OP_INIT, outcome), nil
}

// Step submits body for the session's current step.
func (m *Machine) Step(ctx context.Context, body map[string]any) (model.JobOutcome, error) {
	snap, err := m.begin(model.STEP_PENDING)
	if err != nil {
		return model.JobOutcome{}, err
	}
	defer m.end()

	outcome, err := m.driver.Step(ctx, snap.ProcessName, snap.ProcessUUID, snap.CurrentStep, body)
	if err != nil {
		return outcome, err
	}
	return m.apply(OP_STEP, outcome), nil
}

// Poll checks the outstanding job once.
func (m *Machine) Poll(ctx context.Context) (model.JobOutcome, error) {
	snap, err := m.begin(model.ASYNC_PENDING)
	if err != nil {
		return model.JobOutcome{}, err
	}
	defer m.end()

	outcome, err := m.poller.Status(ctx, snap.ProcessName, snap.ProcessUUID, snap.LastJobUUID)
	if err != nil {
		return outcome, err
	}
	return m.apply(OP_STATUS, outcome), nil
}

func (m *Machine) begin(expected model.SessionState) (*model.ProcessSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return nil, ErrExchangeInProgress
	}
	if m.session.State.IsTerminal() {
		return nil, ErrSessionTerminated
	}
	if m.session.State != expected {
		return nil, fmt.Errorf("%w: session is %s, expected %s", ErrInvalidSessionState, m.session.State, expected)
	}
	m.busy = true
	return m.session.Clone(), nil
}

func (m *Machine) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
}

func (m *Machine) setState(state model.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.State = state
	m.session.UpdatedAt = time.Now().UTC()
}

func (m *Machine) apply(op string, outcome model.JobOutcome) model.JobOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session

	if outcome.Kind == model.JOB_STARTED && outcome.Started.JobUUID == "" {
		// nothing could be polled
		outcome = model.UnexpectedResponse()
	}
	if continues(outcome) && s.ProcessUUID == "" && processUUIDOf(outcome) == "" {
		// steps and polls are addressed by the process uuid
		logger.Warn("process continues without a process uuid", zap.String("process", s.ProcessName), zap.Stringer("outcome", outcome))
		outcome = model.UnexpectedResponse()
	}

	switch outcome.Kind {
	case model.JOB_STARTED:
		m.assignProcessUUID(outcome.Started.ProcessUUID)
		s.LastJobUUID = outcome.Started.JobUUID
		s.State = model.ASYNC_PENDING
		logger.Info("process waiting for job", zap.String("process", s.ProcessName), zap.String("processUUID", s.ProcessUUID), zap.String("jobUUID", s.LastJobUUID))
	case model.JOB_RUNNING:
		logger.Debug("process job running", zap.String("process", s.ProcessName), zap.String("jobUUID", s.LastJobUUID))
	case model.JOB_COMPLETE:
		m.assignProcessUUID(outcome.Complete.ProcessUUID)
		s.LastJobUUID = ""
		for k, v := range outcome.Complete.Values {
			s.Values[k] = v
		}
		if outcome.Complete.NextStep != "" {
			s.CurrentStep = outcome.Complete.NextStep
			s.State = model.STEP_PENDING
			logger.Info("process waiting for step", zap.String("process", s.ProcessName), zap.String("processUUID", s.ProcessUUID), zap.String("step", s.CurrentStep))
		} else {
			s.State = model.COMPLETE
			logger.Info("process completed", zap.String("process", s.ProcessName), zap.String("processUUID", s.ProcessUUID))
		}
	case model.JOB_ERROR:
		s.LastJobUUID = ""
		s.LastError = outcome.Error.Message
		s.State = model.FAILED
		logger.Info("process failed", zap.String("process", s.ProcessName), zap.String("processUUID", s.ProcessUUID), zap.String("error", s.LastError))
	}
	s.UpdatedAt = time.Now().UTC()
	analytics.RecordOutcome(s.Clone(), op, outcome)
	return outcome
}

// assignProcessUUID sets the instance id once; the backend never reassigns it.
func (m *Machine) assignProcessUUID(processUUID string) {
	s := m.session
	if processUUID == "" || processUUID == s.ProcessUUID {
		return
	}
	if s.ProcessUUID != "" {
		logger.Warn("ignoring changed process uuid", zap.String("process", s.ProcessName), zap.String("processUUID", s.ProcessUUID), zap.String("received", processUUID))
		return
	}
	s.ProcessUUID = processUUID
}

// continues reports whether outcome leaves the session waiting on a further exchange.
func continues(outcome model.JobOutcome) bool {
	switch outcome.Kind {
	case model.JOB_STARTED:
		return true
	case model.JOB_COMPLETE:
		return outcome.Complete.NextStep != ""
	}
	return false
}

func processUUIDOf(outcome model.JobOutcome) string {
	switch outcome.Kind {
	case model.JOB_STARTED:
		return outcome.Started.ProcessUUID
	case model.JOB_COMPLETE:
		return outcome.Complete.ProcessUUID
	}
	return ""
}
