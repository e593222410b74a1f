package analytics

import (
	"sync"

	"github.com/kingsrook/qqq-client/model"
)

type DataCollectorConfig struct {
	FileName      string
	CollectorType DataCollectorType
}

type DataCollectorType string

const LOG_FILE_DATA_COLLECTOR DataCollectorType = "LOG_FILE_DATA_COLLECTOR"

// ProcessDataCollector receives every outcome applied to a process session.
type ProcessDataCollector interface {
	RecordOutcome(session *model.ProcessSession, op string, outcome model.JobOutcome)
	Close() error
}

var (
	mu               sync.RWMutex
	processCollector ProcessDataCollector
)

func InitDataCollector(config DataCollectorConfig) error {
	switch config.CollectorType {
	case LOG_FILE_DATA_COLLECTOR:
		c, err := NewLogFileDataCollector(config.FileName)
		if err != nil {
			return err
		}
		SetDataCollector(c)
	}
	return nil
}

// SetDataCollector replaces the active collector; nil disables collection.
func SetDataCollector(c ProcessDataCollector) {
	mu.Lock()
	defer mu.Unlock()
	processCollector = c
}

// RecordOutcome holds the read lock while the collector writes; Close waits for it.
func RecordOutcome(session *model.ProcessSession, op string, outcome model.JobOutcome) {
	mu.RLock()
	defer mu.RUnlock()
	if processCollector == nil {
		return
	}
	processCollector.RecordOutcome(session, op, outcome)
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if processCollector == nil {
		return nil
	}
	err := processCollector.Close()
	processCollector = nil
	return err
}
