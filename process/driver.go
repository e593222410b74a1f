package process

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/analytics"
	"github.com/kingsrook/qqq-client/logger"
	"github.com/kingsrook/qqq-client/model"
)

const OP_INIT = "init"
const OP_STEP = "step"
const OP_STATUS = "status"

// Transport performs the process exchanges against the backend. A returned error means
// the backend could not be reached or answered with something that is not a response
// body at all; application failures come back as a payload carrying an error key.
type Transport interface {
	PostInit(ctx context.Context, processName string, params map[string]any) (map[string]any, error)
	PostStep(ctx context.Context, processName string, processUUID string, step string, body map[string]any) (map[string]any, error)
	GetStatus(ctx context.Context, processName string, processUUID string, jobUUID string) (map[string]any, error)
}

// Driver initializes processes and submits steps, one transport call per invocation
// and no retries.
type Driver struct {
	transport Transport
}

func NewDriver(transport Transport) *Driver {
	return &Driver{transport: transport}
}

// Init starts processName. The outcome is Started, Complete or Error.
func (d *Driver) Init(ctx context.Context, processName string, params map[string]any) (model.JobOutcome, error) {
	start := time.Now()
	payload, err := d.transport.PostInit(ctx, processName, params)
	if err != nil {
		analytics.RecordExchange(ctx, OP_INIT, "", time.Since(start), err)
		logger.Error("process init failed", zap.String("process", processName), zap.Error(err))
		return model.JobOutcome{}, fmt.Errorf("init process %s: %w", processName, err)
	}
	outcome := narrowDirect(Classify(payload))
	analytics.RecordExchange(ctx, OP_INIT, outcome.Kind, time.Since(start), nil)
	logger.Debug("process init", zap.String("process", processName), zap.Stringer("outcome", outcome))
	return outcome, nil
}

// Step submits body for step of a running process instance. The outcome is Started,
// Complete or Error.
func (d *Driver) Step(ctx context.Context, processName string, processUUID string, step string, body map[string]any) (model.JobOutcome, error) {
	start := time.Now()
	payload, err := d.transport.PostStep(ctx, processName, processUUID, step, body)
	if err != nil {
		analytics.RecordExchange(ctx, OP_STEP, "", time.Since(start), err)
		logger.Error("process step failed", zap.String("process", processName), zap.String("processUUID", processUUID), zap.String("step", step), zap.Error(err))
		return model.JobOutcome{}, fmt.Errorf("process %s step %s: %w", processName, step, err)
	}
	outcome := narrowDirect(Classify(payload))
	analytics.RecordExchange(ctx, OP_STEP, outcome.Kind, time.Since(start), nil)
	logger.Debug("process step", zap.String("process", processName), zap.String("processUUID", processUUID), zap.String("step", step), zap.Stringer("outcome", outcome))
	return outcome, nil
}
