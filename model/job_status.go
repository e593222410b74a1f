package model

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// JobStatus is the progress report the backend attaches to a running job.
type JobStatus struct {
	Message string `mapstructure:"message" json:"message,omitempty"`
	Current int    `mapstructure:"current" json:"current,omitempty"`
	Total   int    `mapstructure:"total" json:"total,omitempty"`
}

func DecodeJobStatus(detail any) (JobStatus, error) {
	var status JobStatus
	if detail == nil {
		return status, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &status,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return status, err
	}
	if err := dec.Decode(detail); err != nil {
		return status, fmt.Errorf("decoding job status: %w", err)
	}
	return status, nil
}

// Percent returns the completed share in [0, 100], or -1 when the total is unknown.
func (s JobStatus) Percent() int {
	if s.Total <= 0 {
		return -1
	}
	pct := s.Current * 100 / s.Total
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
