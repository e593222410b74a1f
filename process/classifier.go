package process

import (
	"fmt"

	"github.com/kingsrook/qqq-client/model"
)

// Keys of a process response body the classifier looks at. Other keys are ignored.
const KEY_JOB_UUID = "jobUUID"
const KEY_PROCESS_UUID = "processUUID"
const KEY_VALUES = "values"
const KEY_NEXT_STEP = "nextStep"
const KEY_ERROR = "error"
const KEY_JOB_STATUS = "jobStatus"

// Classify maps a raw response body to exactly one outcome. Keys are tested in a fixed
// order, first match wins: a finished job's body may still carry the jobStatus left
// over from its last poll, so values/nextStep and error are checked before jobStatus.
func Classify(payload map[string]any) model.JobOutcome {
	if _, ok := payload[KEY_JOB_UUID]; ok {
		return model.NewStarted(stringValue(payload[KEY_PROCESS_UUID]), stringValue(payload[KEY_JOB_UUID]))
	}

	_, hasValues := payload[KEY_VALUES]
	_, hasNextStep := payload[KEY_NEXT_STEP]
	if hasValues || hasNextStep {
		values, _ := payload[KEY_VALUES].(map[string]any)
		return model.NewComplete(values, stringValue(payload[KEY_NEXT_STEP]), stringValue(payload[KEY_PROCESS_UUID]))
	}

	if msg, ok := payload[KEY_ERROR]; ok {
		return model.NewError(stringValue(msg), payload)
	}

	if status, ok := payload[KEY_JOB_STATUS]; ok {
		return model.NewRunning(status)
	}

	return model.UnexpectedResponse()
}

// narrowDirect enforces that an init or step response is never Running.
func narrowDirect(outcome model.JobOutcome) model.JobOutcome {
	switch outcome.Kind {
	case model.JOB_STARTED, model.JOB_COMPLETE, model.JOB_ERROR:
		return outcome
	}
	return model.UnexpectedResponse()
}

// narrowStatus enforces that a status response is never Started.
func narrowStatus(outcome model.JobOutcome) model.JobOutcome {
	switch outcome.Kind {
	case model.JOB_RUNNING, model.JOB_COMPLETE, model.JOB_ERROR:
		return outcome
	}
	return model.UnexpectedResponse()
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
	}
	return fmt.Sprint(v)
}
