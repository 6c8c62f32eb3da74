package pipe

import (
	"errors"
	"sync"
)

// ErrRunInProgress is returned by Registry.Begin while another run has not finished.
var ErrRunInProgress = errors.New("a run is already in progress")

// Registry remembers runs by id and admits at most one unfinished run at a time.
type Registry struct {
	sync.RWMutex
	internal map[string]*Run
	order    []string
	active   *Run
}

func NewRegistry() *Registry {
	return &Registry{internal: make(map[string]*Run)}
}

// Begin registers r as the active run, or returns ErrRunInProgress.
func (g *Registry) Begin(r *Run) error {
	g.Lock()
	defer g.Unlock()
	if g.active != nil && !g.active.Status().IsFinished() {
		return ErrRunInProgress
	}
	g.active = r
	g.internal[r.Id] = r
	g.order = append(g.order, r.Id)
	return nil
}

func (g *Registry) Load(id string) (*Run, bool) {
	g.RLock()
	defer g.RUnlock()
	r, ok := g.internal[id]
	return r, ok
}

// Active returns the most recently started run that has not finished.
func (g *Registry) Active() (*Run, bool) {
	g.RLock()
	defer g.RUnlock()
	if g.active == nil || g.active.Status().IsFinished() {
		return nil, false
	}
	return g.active, true
}

// List returns the status of every run, oldest first.
func (g *Registry) List() []RunStatus {
	g.RLock()
	defer g.RUnlock()
	retval := make([]RunStatus, 0, len(g.order))
	for _, id := range g.order {
		retval = append(retval, g.internal[id].Status())
	}
	return retval
}

// StopAll cancels any unfinished run.
func (g *Registry) StopAll() {
	g.RLock()
	defer g.RUnlock()
	for _, r := range g.internal {
		r.Stop()
	}
}
