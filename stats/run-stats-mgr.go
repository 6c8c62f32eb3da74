package stats

import (
	"sync"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// RunStatsManager holds a StepWatcher per pipeline step, in step order,
// and can log their stats periodically while a run is in progress.
type RunStatsManager struct {
	ticker          *time.Ticker
	tickerDone      chan struct{}
	tickerIsRunning bool
	tickerFrequency time.Duration
	mu              sync.Mutex
	log             logger.Logger
	mapStepStats    *ordered_map.OrderedMap // step name -> *StepWatcher
}

// SetStatsDumpFrequency returns an option for NewRunStats. Zero disables periodic dumping.
func SetStatsDumpFrequency(d time.Duration) func(t *RunStatsManager) {
	return func(t *RunStatsManager) {
		t.tickerFrequency = d
	}
}

func NewRunStats(log logger.Logger, options ...func(t *RunStatsManager)) *RunStatsManager {
	t := &RunStatsManager{
		log:             log,
		tickerFrequency: time.Second * constants.StatsCaptureFrequencySec,
		tickerDone:      make(chan struct{}),
		mapStepStats:    ordered_map.NewOrderedMap(),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// AddStepWatcher creates a new StepWatcher for stepName and saves it.
func (t *RunStatsManager) AddStepWatcher(stepName string) *StepWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	sw := NewStepWatcher(stepName)
	t.mapStepStats.Set(stepName, sw)
	return sw
}

func (t *RunStatsManager) StartDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tickerIsRunning {
		t.log.Debug("stats dumper ticker already running")
		return
	}
	if t.tickerFrequency <= 0 {
		t.log.Debug("stats dumper disabled")
		return
	}
	t.ticker = time.NewTicker(t.tickerFrequency)
	t.tickerIsRunning = true
	go func() {
		for {
			select {
			case <-t.tickerDone:
				return
			case <-t.ticker.C:
				t.logStats()
			}
		}
	}()
}

// StopDumping stops the ticker, if StartDumping() started it, and logs the final stats.
func (t *RunStatsManager) StopDumping() {
	t.mu.Lock()
	wasRunning := t.tickerIsRunning
	if wasRunning {
		t.tickerIsRunning = false
		t.ticker.Stop()
	}
	t.mu.Unlock()
	if wasRunning {
		t.tickerDone <- struct{}{}
	}
	t.logStats()
}

func (t *RunStatsManager) logStats() {
	for _, s := range t.GetStats() {
		t.log.Info(s.String())
	}
}

// GetStats implements interface StatsFetcher{}.
func (t *RunStatsManager) GetStats() []Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	statsList := make([]Stats, 0, t.mapStepStats.Len())
	iter := t.mapStepStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		statsList = append(statsList, kv.Value.(*StepWatcher).RenderStats())
	}
	return statsList
}
