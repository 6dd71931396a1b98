package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports/mocks"
	"go.trai.ch/stale/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

// newGraph builds a graph from name -> dependencies, adding nodes in the given order.
func newGraph(t *testing.T, order []string, deps map[string][]string) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	index := make(map[string]int, len(order))
	for _, name := range order {
		idx, err := g.AddNode(name)
		require.NoError(t, err)
		index[name] = idx
	}
	for _, name := range order {
		for _, dep := range deps[name] {
			require.NoError(t, g.RecordEdge(index[name], dep))
		}
	}
	require.NoError(t, g.Validate())
	return g
}

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return scheduler.New(log)
}

// recorder collects the order jobs ran in.
type recorder struct {
	mu  sync.Mutex
	ran []string
}

func (r *recorder) job(fail map[string]bool) scheduler.Job {
	return func(_ context.Context, project string) error {
		r.mu.Lock()
		r.ran = append(r.ran, project)
		r.mu.Unlock()
		if fail[project] {
			return errors.New(project + " failed")
		}
		return nil
	}
}

func TestScheduler_Run_SerialOrder(t *testing.T) {
	// App depends on Net and Kernel, Net depends on Kernel.
	g := newGraph(t, []string{"Kernel", "Net", "App", "Tool"}, map[string][]string{
		"Net": {"Kernel"},
		"App": {"Net", "Kernel"},
	})
	s := newScheduler(t)
	rec := &recorder{}

	err := s.Run(context.Background(), g, domain.AllProjects, scheduler.Options{Parallelism: 1}, rec.job(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"Kernel", "Net", "App", "Tool"}, rec.ran)
	for _, name := range rec.ran {
		assert.Equal(t, scheduler.StatusCompleted, s.Status(name))
	}
}

func TestScheduler_Run_Partial(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C", "D"}, map[string][]string{
		"A": {"B"},
		"B": {"C"},
	})
	s := newScheduler(t)
	rec := &recorder{}

	require.NoError(t, s.Run(context.Background(), g, "a", scheduler.Options{Parallelism: 4}, rec.job(nil)))

	assert.Equal(t, []string{"C", "B", "A"}, rec.ran)
	assert.NotContains(t, s.Statuses(), "D")
}

func TestScheduler_Run_UnknownTarget(t *testing.T) {
	g := newGraph(t, []string{"A"}, nil)
	s := newScheduler(t)

	err := s.Run(context.Background(), g, "nope", scheduler.Options{}, (&recorder{}).job(nil))
	assert.True(t, errors.Is(err, domain.ErrProjectNotFound))
}

func TestScheduler_Run_FailureStopsRun(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C"}, map[string][]string{
		"B": {"A"},
	})
	s := newScheduler(t)
	rec := &recorder{}

	err := s.Run(context.Background(), g, domain.AllProjects, scheduler.Options{Parallelism: 1}, rec.job(map[string]bool{"A": true}))
	require.Error(t, err)
	assert.ErrorContains(t, err, "A failed")

	assert.Equal(t, []string{"A"}, rec.ran)
	assert.Equal(t, scheduler.StatusFailed, s.Status("A"))
	assert.Equal(t, scheduler.StatusSkipped, s.Status("B"))
	assert.Equal(t, scheduler.StatusSkipped, s.Status("C"))
}

func TestScheduler_Run_KeepGoing(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C", "D"}, map[string][]string{
		"B": {"A"},
		"D": {"C"},
	})
	s := newScheduler(t)
	rec := &recorder{}

	err := s.Run(context.Background(), g, domain.AllProjects,
		scheduler.Options{Parallelism: 1, KeepGoing: true}, rec.job(map[string]bool{"A": true}))
	require.Error(t, err)

	assert.Equal(t, []string{"A", "C", "D"}, rec.ran)
	assert.Equal(t, map[string]scheduler.ProjectStatus{
		"A": scheduler.StatusFailed,
		"B": scheduler.StatusSkipped,
		"C": scheduler.StatusCompleted,
		"D": scheduler.StatusCompleted,
	}, s.Statuses())
}

func TestScheduler_Run_Diamond(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		// A depends on B and C, both depend on D.
		g := newGraph(t, []string{"A", "B", "C", "D"}, map[string][]string{
			"A": {"B", "C"},
			"B": {"D"},
			"C": {"D"},
		})
		s := newScheduler(t)

		started := map[string]chan struct{}{
			"B": make(chan struct{}),
			"C": make(chan struct{}),
			"D": make(chan struct{}),
		}
		proceed := map[string]chan struct{}{
			"B": make(chan struct{}),
			"C": make(chan struct{}),
			"D": make(chan struct{}),
		}

		job := func(_ context.Context, project string) error {
			if project == "A" {
				t.Error("A must not run after B failed")
				return nil
			}
			close(started[project])
			<-proceed[project]
			if project == "B" {
				return errors.New("B failed")
			}
			return nil
		}

		errCh := make(chan error)
		go func() {
			errCh <- s.Run(context.Background(), g, "A", scheduler.Options{Parallelism: 2, KeepGoing: true}, job)
		}()

		<-started["D"]
		synctest.Wait()
		assert.Equal(t, scheduler.StatusRunning, s.Status("D"))
		assert.Equal(t, scheduler.StatusPending, s.Status("B"))
		close(proceed["D"])

		// B and C run side by side.
		<-started["B"]
		<-started["C"]
		synctest.Wait()
		assert.Equal(t, scheduler.StatusRunning, s.Status("B"))
		assert.Equal(t, scheduler.StatusRunning, s.Status("C"))

		close(proceed["B"])
		close(proceed["C"])

		err := <-errCh
		require.Error(t, err)
		assert.Equal(t, scheduler.StatusSkipped, s.Status("A"))
		assert.Equal(t, scheduler.StatusCompleted, s.Status("C"))
	})
}

func TestScheduler_Run_ParallelismBound(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		g := newGraph(t, []string{"A", "B", "C", "D", "E"}, nil)
		s := newScheduler(t)

		var mu sync.Mutex
		inFlight, peak := 0, 0
		release := make(chan struct{})

		job := func(_ context.Context, _ string) error {
			mu.Lock()
			inFlight++
			peak = max(peak, inFlight)
			mu.Unlock()
			<-release
			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		}

		errCh := make(chan error)
		go func() {
			errCh <- s.Run(context.Background(), g, domain.AllProjects, scheduler.Options{Parallelism: 2}, job)
		}()

		synctest.Wait()
		close(release)
		require.NoError(t, <-errCh)
		assert.Equal(t, 2, peak)
	})
}

func TestScheduler_Run_Canceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		g := newGraph(t, []string{"A", "B"}, map[string][]string{"B": {"A"}})
		s := newScheduler(t)
		ctx, cancel := context.WithCancel(context.Background())

		job := func(ctx context.Context, _ string) error {
			<-ctx.Done()
			return ctx.Err()
		}

		errCh := make(chan error)
		go func() {
			errCh <- s.Run(ctx, g, domain.AllProjects, scheduler.Options{}, job)
		}()

		synctest.Wait()
		cancel()

		err := <-errCh
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, scheduler.StatusSkipped, s.Status("A"))
		assert.Equal(t, scheduler.StatusSkipped, s.Status("B"))
	})
}
