package model

// UNEXPECTED_RESPONSE is the message of every Error outcome synthesized by the client
// rather than reported by the backend.
const UNEXPECTED_RESPONSE = "Unexpected server response."

type JobOutcomeKind string

const JOB_STARTED JobOutcomeKind = "STARTED"
const JOB_RUNNING JobOutcomeKind = "RUNNING"
const JOB_COMPLETE JobOutcomeKind = "COMPLETE"
const JOB_ERROR JobOutcomeKind = "ERROR"

// JobOutcome is the classified result of one process exchange. Exactly one of the
// variant pointers is set, the one matching Kind.
type JobOutcome struct {
	Kind     JobOutcomeKind
	Started  *JobStarted
	Running  *JobRunning
	Complete *JobComplete
	Error    *JobError
}

// JobStarted means the backend accepted the request and runs it asynchronously.
type JobStarted struct {
	ProcessUUID string
	JobUUID     string
}

// JobRunning means a started job has not finished. StatusDetail is the backend's
// jobStatus object, see DecodeJobStatus.
type JobRunning struct {
	StatusDetail any
}

// JobComplete means the step or the whole process finished. An empty NextStep means
// the process has ended.
type JobComplete struct {
	Values      map[string]any
	NextStep    string
	ProcessUUID string
}

type JobError struct {
	Message string
	Detail  any
}

func NewStarted(processUUID string, jobUUID string) JobOutcome {
	return JobOutcome{Kind: JOB_STARTED, Started: &JobStarted{ProcessUUID: processUUID, JobUUID: jobUUID}}
}

func NewRunning(statusDetail any) JobOutcome {
	return JobOutcome{Kind: JOB_RUNNING, Running: &JobRunning{StatusDetail: statusDetail}}
}

func NewComplete(values map[string]any, nextStep string, processUUID string) JobOutcome {
	if values == nil {
		values = make(map[string]any)
	}
	return JobOutcome{Kind: JOB_COMPLETE, Complete: &JobComplete{Values: values, NextStep: nextStep, ProcessUUID: processUUID}}
}

func NewError(message string, detail any) JobOutcome {
	return JobOutcome{Kind: JOB_ERROR, Error: &JobError{Message: message, Detail: detail}}
}

func UnexpectedResponse() JobOutcome {
	return NewError(UNEXPECTED_RESPONSE, nil)
}

// IsTerminal reports whether the outcome ends the process: an error, or a completion
// with no next step.
func (o JobOutcome) IsTerminal() bool {
	switch o.Kind {
	case JOB_ERROR:
		return true
	case JOB_COMPLETE:
		return o.Complete.NextStep == ""
	}
	return false
}

func (o JobOutcome) String() string {
	switch o.Kind {
	case JOB_STARTED:
		return "started job " + o.Started.JobUUID
	case JOB_RUNNING:
		return "running"
	case JOB_COMPLETE:
		if o.Complete.NextStep == "" {
			return "complete"
		}
		return "complete, next step " + o.Complete.NextStep
	case JOB_ERROR:
		return "error: " + o.Error.Message
	}
	return "undefined"
}
