package planner

import (
	"sync"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
)

// Run holds the state of one planning pass: the plans made so far and the
// file stamps already looked up. It is safe for concurrent use.
type Run struct {
	mu     sync.RWMutex
	plans  map[string]*domain.ProjectPlan
	stamps map[string]domain.FileStamp
}

// NewRun creates the state for one planning pass.
func NewRun() *Run {
	return &Run{
		plans:  make(map[string]*domain.ProjectPlan),
		stamps: make(map[string]domain.FileStamp),
	}
}

// Plan returns the plan made for project in this pass.
func (r *Run) Plan(project string) (*domain.ProjectPlan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plans[project]
	return p, ok
}

// Rebuilt reports whether project is relinked in this pass.
func (r *Run) Rebuilt(project string) bool {
	p, ok := r.Plan(project)
	return ok && p.Relink
}

func (r *Run) put(plan *domain.ProjectPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.Project] = plan
}

// stamp returns the stamp of path, asking prober only once per pass.
func (r *Run) stamp(prober ports.Prober, path string) (domain.FileStamp, error) {
	r.mu.RLock()
	s, ok := r.stamps[path]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := prober.Stamp(path)
	if err != nil {
		return domain.FileStamp{}, err
	}

	r.mu.Lock()
	r.stamps[path] = s
	r.mu.Unlock()
	return s, nil
}
