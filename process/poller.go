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

// Poller checks the status of an outstanding job. It performs a single check per call;
// cadence and giving up belong to the caller (see Await).
type Poller struct {
	transport Transport
}

func NewPoller(transport Transport) *Poller {
	return &Poller{transport: transport}
}

// Status returns Running, Complete or Error for the job.
func (p *Poller) Status(ctx context.Context, processName string, processUUID string, jobUUID string) (model.JobOutcome, error) {
	start := time.Now()
	payload, err := p.transport.GetStatus(ctx, processName, processUUID, jobUUID)
	if err != nil {
		analytics.RecordExchange(ctx, OP_STATUS, "", time.Since(start), err)
		logger.Error("job status check failed", zap.String("process", processName), zap.String("jobUUID", jobUUID), zap.Error(err))
		return model.JobOutcome{}, fmt.Errorf("status of job %s: %w", jobUUID, err)
	}
	outcome := narrowStatus(Classify(payload))
	analytics.RecordExchange(ctx, OP_STATUS, outcome.Kind, time.Since(start), nil)
	logger.Debug("job status", zap.String("process", processName), zap.String("jobUUID", jobUUID), zap.Stringer("outcome", outcome))
	return outcome, nil
}
