package stats

import (
	"fmt"
	"sync"
	"time"
)

const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// StepWatcher saves stats for one pipeline step.
// The step owner calls Start() then Finish(); readers may call RenderStats() at any time.
type StepWatcher struct {
	mu        sync.Mutex
	stepName  string
	status    string
	startTime time.Time
	endTime   time.Time
	totalRows int64
	errText   string
}

type Stats struct {
	StepName           string `json:"stepName"`
	StatusText         string `json:"statusText"`
	StatusEmoji        string `json:"statusEmoji"`
	ElapsedTimeMillis  int64  `json:"elapsedTimeMillis"`
	TotalRowsProcessed int64  `json:"totalRowsProcessed"`
	RowsPerSecondAvg   int64  `json:"rowsPerSecondAvg"`
	Error              string `json:"error,omitempty"`
}

func NewStepWatcher(stepName string) *StepWatcher {
	return &StepWatcher{stepName: stepName, status: StatusPending}
}

func (n *StepWatcher) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.status = StatusRunning
	n.startTime = time.Now()
	n.endTime = time.Time{}
	n.totalRows = 0
	n.errText = ""
}

// Finish records the final row count and marks the step complete, or failed if err is not nil.
func (n *StepWatcher) Finish(rows int64, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.endTime = time.Now()
	n.totalRows = rows
	if err != nil {
		n.status = StatusFailed
		n.errText = err.Error()
	} else {
		n.status = StatusComplete
	}
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *StepWatcher) RenderStats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	var elapsed time.Duration
	switch {
	case n.startTime.IsZero():
	case n.endTime.IsZero():
		elapsed = time.Since(n.startTime)
	default:
		elapsed = n.endTime.Sub(n.startTime)
	}
	var statusEmoji string
	switch n.status {
	case StatusRunning:
		statusEmoji = "\U0000231B" // hour glass
	case StatusComplete:
		statusEmoji = "\U00002705" // green tick
	case StatusFailed:
		statusEmoji = "\U0000274C" // red cross
	}
	return Stats{
		StepName:           n.stepName,
		StatusText:         n.status,
		StatusEmoji:        statusEmoji,
		ElapsedTimeMillis:  elapsed.Milliseconds(),
		TotalRowsProcessed: n.totalRows,
		RowsPerSecondAvg:   n.totalRows / getNumSecondsOrOne(elapsed),
		Error:              n.errText,
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v %v "+
			"elapsedTimeMillis=%v "+
			"totalRowsProcessed=%v "+
			"rowsPerSecondAvg=%v",
		s.StepName, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeMillis,
		s.TotalRowsProcessed,
		s.RowsPerSecondAvg,
	)
}

func getNumSecondsOrOne(d time.Duration) (seconds int64) {
	seconds = int64(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return
}
