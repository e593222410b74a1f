package analytics

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kingsrook/qqq-client/model"
)

// LogFileDataCollector appends one JSON line per applied outcome.
type LogFileDataCollector struct {
	fileName string
	file     *os.File
	logger   *zap.Logger
}

func NewLogFileDataCollector(fileName string) (*LogFileDataCollector, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.StacktraceKey = ""
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	logFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(fileEncoder, zapcore.Lock(zapcore.AddSync(logFile)), zapcore.InfoLevel)
	return &LogFileDataCollector{
		fileName: fileName,
		file:     logFile,
		logger:   zap.New(core),
	}, nil
}

func (lc *LogFileDataCollector) RecordOutcome(session *model.ProcessSession, op string, outcome model.JobOutcome) {
	fields := []zap.Field{
		zap.String("session", session.Id),
		zap.String("process", session.ProcessName),
		zap.String("processUUID", session.ProcessUUID),
		zap.String("op", op),
		zap.String("outcome", string(outcome.Kind)),
		zap.String("state", string(session.State)),
	}
	switch outcome.Kind {
	case model.JOB_STARTED:
		fields = append(fields, zap.String("jobUUID", outcome.Started.JobUUID))
	case model.JOB_COMPLETE:
		fields = append(fields, zap.String("nextStep", outcome.Complete.NextStep), zap.Any("values", outcome.Complete.Values))
	case model.JOB_ERROR:
		lc.logger.Info("failure", append(fields, zap.String("reason", outcome.Error.Message))...)
		return
	}
	lc.logger.Info("success", fields...)
}

func (lc *LogFileDataCollector) Close() error {
	_ = lc.logger.Sync()
	return lc.file.Close()
}
