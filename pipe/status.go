package pipe

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status uint32

const (
	StatusMissing Status = iota
	StatusStarting
	StatusRunning
	StatusComplete
	StatusCompleteWithError
	StatusShutdown
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return ""
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusComplete:
		return "complete"
	case StatusCompleteWithError:
		return "complete with error"
	case StatusShutdown:
		return "shutdown by user"
	}
	return fmt.Sprintf("Status(%d)", uint32(s))
}

func (s Status) MarshalJSON() ([]byte, error) {
	if s > StatusShutdown {
		return nil, fmt.Errorf("unhandled Status value %v in custom MarshalJSON() conversion", uint32(s))
	}
	return json.Marshal(s.String())
}

// RunStatus is the externally visible state of one run.
type RunStatus struct {
	RunId       string    `json:"runId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      Status    `json:"runStatus"`
	CurrentStep string    `json:"currentStep,omitempty"`
	FailedStep  string    `json:"failedStep,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// IsFinished returns false while the run is starting or running.
func (r RunStatus) IsFinished() bool {
	return r.Status != StatusStarting && r.Status != StatusRunning
}
