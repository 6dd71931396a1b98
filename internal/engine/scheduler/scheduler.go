// Package scheduler runs one job per project, dependencies first.
package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

// ProjectStatus represents the status of a project within a run.
type ProjectStatus string

const (
	// StatusPending indicates the project is waiting for its dependencies.
	StatusPending ProjectStatus = "Pending"
	// StatusRunning indicates the job of the project is executing.
	StatusRunning ProjectStatus = "Running"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted ProjectStatus = "Completed"
	// StatusFailed indicates the job returned an error.
	StatusFailed ProjectStatus = "Failed"
	// StatusSkipped indicates the job never ran because a dependency failed
	// or the run was canceled.
	StatusSkipped ProjectStatus = "Skipped"
)

// Job is the work done for one project.
type Job func(ctx context.Context, project string) error

// Options controls a run.
type Options struct {
	// Parallelism is the maximum number of jobs in flight. Values below one mean one.
	Parallelism int
	// KeepGoing lets independent projects continue after a failure.
	KeepGoing bool
}

// Scheduler executes jobs over the project graph.
type Scheduler struct {
	logger ports.Logger

	mu     sync.RWMutex
	status map[string]ProjectStatus
}

// New creates a new Scheduler.
func New(logger ports.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		status: make(map[string]ProjectStatus),
	}
}

// Status returns the status of a project in the last run.
func (s *Scheduler) Status(project string) ProjectStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[project]
}

// Statuses returns a copy of the statuses of the last run.
func (s *Scheduler) Statuses() map[string]ProjectStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]ProjectStatus, len(s.status))
	for k, v := range s.status {
		out[k] = v
	}
	return out
}

func (s *Scheduler) setStatus(project string, status ProjectStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[project] = status
}

// Run executes job for every project reachable from target. A project starts
// once all of its dependencies have completed.
func (s *Scheduler) Run(ctx context.Context, g *domain.Graph, target string, opts Options, job Job) error {
	state, err := s.newRunState(ctx, g, target, opts)
	if err != nil {
		return err
	}
	defer state.cancel()

	for !state.isDone() {
		state.schedule(job)
		if state.ctx.Err() != nil {
			state.ready = nil
		}
		if state.active == 0 {
			continue
		}
		state.handleResult(<-state.resultsCh)
	}

	for _, name := range state.order {
		if s.Status(name) == StatusPending {
			s.setStatus(name, StatusSkipped)
		}
	}

	if err := ctx.Err(); err != nil {
		state.errs = errors.Join(state.errs, err)
	}
	return state.errs
}

type result struct {
	project string
	err     error
}

type runState struct {
	s           *Scheduler
	ctx         context.Context
	cancel      context.CancelFunc
	keepGoing   bool
	parallelism int

	order      []string
	position   map[string]int
	inDegree   map[string]int
	dependents map[string][]string

	ready     []string
	active    int
	resultsCh chan result
	errs      error
}

func (s *Scheduler) newRunState(ctx context.Context, g *domain.Graph, target string, opts Options) (*runState, error) {
	var order []string
	if _, err := g.Traverse(target, domain.BottomUp|domain.Minimal, func(name string, _ int) bool {
		order = append(order, name)
		return true
	}); err != nil {
		return nil, err
	}

	parallelism := max(opts.Parallelism, 1)
	runCtx, cancel := context.WithCancel(ctx)

	state := &runState{
		s:           s,
		ctx:         runCtx,
		cancel:      cancel,
		keepGoing:   opts.KeepGoing,
		parallelism: parallelism,
		order:       order,
		position:    make(map[string]int, len(order)),
		inDegree:    make(map[string]int, len(order)),
		dependents:  make(map[string][]string, len(order)),
		resultsCh:   make(chan result, parallelism),
	}

	s.mu.Lock()
	s.status = make(map[string]ProjectStatus, len(order))
	for i, name := range order {
		state.position[name] = i
		s.status[name] = StatusPending
	}
	s.mu.Unlock()

	for _, name := range order {
		deps := g.DependenciesOf(name)
		state.inDegree[name] = len(deps)
		for _, dep := range deps {
			state.dependents[dep] = append(state.dependents[dep], name)
		}
		if len(deps) == 0 {
			state.ready = append(state.ready, name)
		}
	}
	return state, nil
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule(job Job) {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.setStatus(name, StatusRunning)
		state.s.logger.Debug("starting " + name)

		go func() {
			state.resultsCh <- result{project: name, err: job(state.ctx, name)}
		}()
	}
}

func (state *runState) handleResult(res result) {
	state.active--
	if res.err != nil && state.ctx.Err() != nil && errors.Is(res.err, context.Canceled) {
		state.s.setStatus(res.project, StatusSkipped)
		return
	}
	if res.err != nil {
		state.errs = errors.Join(state.errs, zerr.With(res.err, "project", res.project))
		state.s.setStatus(res.project, StatusFailed)
		if !state.keepGoing {
			state.cancel()
		}
		return
	}

	state.s.setStatus(res.project, StatusCompleted)
	for _, dep := range state.dependents[res.project] {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.enqueue(dep)
		}
	}
}

// enqueue keeps the ready queue in traversal order so a serial run is deterministic.
func (state *runState) enqueue(name string) {
	pos, _ := slices.BinarySearchFunc(state.ready, name, func(a, b string) int {
		return state.position[a] - state.position[b]
	})
	state.ready = slices.Insert(state.ready, pos, name)
}
