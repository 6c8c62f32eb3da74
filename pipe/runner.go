package pipe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stats"
	"github.com/rs/xid"
)

// StepFunc executes one pipeline stage and returns the number of rows it handled.
type StepFunc func(ctx context.Context, log logger.Logger) (rows int64, err error)

type Step struct {
	Name string
	Func StepFunc
}

// StepError identifies the stage that stopped a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %v failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes its steps once, in order, stopping at the first failure.
type Run struct {
	Id     string
	log    logger.Logger
	steps  []Step
	stats  *stats.RunStatsManager
	mu     sync.RWMutex
	status RunStatus
	cancel context.CancelFunc
}

// NewRun creates a run with a fresh id. Every log entry written by its steps carries the id.
func NewRun(log logger.Logger, steps []Step, statsOptions ...func(t *stats.RunStatsManager)) *Run {
	id := xid.New().String()
	runLog := log.WithField("runId", id)
	r := &Run{
		Id:     id,
		log:    runLog,
		steps:  steps,
		stats:  stats.NewRunStats(runLog, statsOptions...),
		status: RunStatus{RunId: id, Status: StatusStarting},
	}
	return r
}

// Execute runs the steps in order and returns a *StepError for the first step that fails.
// Cancelling ctx, or calling Stop, prevents any further step from starting.
func (r *Run) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchers := make([]*stats.StepWatcher, len(r.steps))
	for idx, s := range r.steps {
		watchers[idx] = r.stats.AddStepWatcher(s.Name)
	}
	r.mu.Lock()
	r.cancel = cancel
	r.status.Status = StatusRunning
	r.status.StartTime = time.Now()
	r.mu.Unlock()
	r.stats.StartDumping()
	defer r.stats.StopDumping()
	r.log.Info("run started")
	for idx, s := range r.steps {
		if err := ctx.Err(); err != nil {
			return r.finish(s.Name, &StepError{Step: s.Name, Err: err})
		}
		r.setCurrentStep(s.Name)
		watchers[idx].Start()
		rows, err := s.Func(ctx, r.log.WithField("step", s.Name))
		watchers[idx].Finish(rows, err)
		if err != nil {
			if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
				err = fmt.Errorf("%w: %w", ctx.Err(), err)
			}
			return r.finish(s.Name, &StepError{Step: s.Name, Err: err})
		}
	}
	return r.finish("", nil)
}

func (r *Run) setCurrentStep(name string) {
	r.mu.Lock()
	r.status.CurrentStep = name
	r.mu.Unlock()
}

func (r *Run) finish(step string, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.EndTime = time.Now()
	r.status.CurrentStep = ""
	switch {
	case err == nil:
		r.status.Status = StatusComplete
		r.log.Info("run complete")
	case errors.Is(err, context.Canceled):
		r.status.Status = StatusShutdown
		r.status.FailedStep = step
		r.status.Error = err.Error()
		r.log.Warn("run shutdown during step ", step)
	default:
		r.status.Status = StatusCompleteWithError
		r.status.FailedStep = step
		r.status.Error = err.Error()
		r.log.Error(err)
	}
	return err
}

// Stop cancels the run if it is in progress.
func (r *Run) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cancel != nil && !r.status.IsFinished() {
		r.log.Info("stopping run")
		r.cancel()
	}
}

func (r *Run) Status() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// GetStats implements stats.StatsFetcher.
func (r *Run) GetStats() []stats.Stats {
	return r.stats.GetStats()
}
