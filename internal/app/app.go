// Package app implements the application layer for stale.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/stale/internal/engine/analyzer"
	"go.trai.ch/stale/internal/engine/planner"
	"go.trai.ch/stale/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	analyzer     *analyzer.Analyzer
	planner      *planner.Planner
	scheduler    *scheduler.Scheduler
	watcher      ports.Watcher
	logger       ports.Logger
	out          io.Writer
}

// New creates a new App instance writing reports to stdout.
func New(
	loader ports.ConfigLoader,
	an *analyzer.Analyzer,
	pl *planner.Planner,
	sched *scheduler.Scheduler,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		analyzer:     an,
		planner:      pl,
		scheduler:    sched,
		watcher:      watcher,
		logger:       log,
		out:          os.Stdout,
	}
}

// WithOutput redirects reports such as plans, trees and header dumps.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// RunOptions holds the options shared by the commands that walk the graph.
type RunOptions struct {
	// ConfigPath is the workspace file or a directory to search upwards from.
	ConfigPath string
	// Jobs is the number of projects processed in parallel.
	Jobs int
	// KeepGoing lets independent projects continue after a failure.
	KeepGoing bool
}

func (o RunOptions) schedulerOptions() scheduler.Options {
	return scheduler.Options{Parallelism: o.Jobs, KeepGoing: o.KeepGoing}
}

func (a *App) load(configPath string) (*domain.Workspace, error) {
	if configPath == "" {
		configPath = "."
	}
	ws, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load workspace")
	}
	return ws, nil
}

// target returns the node a run starts at. An empty name selects every project.
func target(ws *domain.Workspace, name string) (string, error) {
	if name == "" || strings.EqualFold(name, domain.AllProjects) {
		return domain.AllProjects, nil
	}
	p, err := ws.Project(name)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// DependOptions configures Depend.
type DependOptions struct {
	RunOptions
	// DumpHeaders prints the include tree of every translation unit.
	DumpHeaders analyzer.DumpMode
	// Watch keeps refreshing the records when sources change.
	Watch bool
}

// Depend analyzes every code project reachable from target and writes its
// dependency record.
func (a *App) Depend(ctx context.Context, targetName string, opts DependOptions) error {
	err := a.depend(ctx, targetName, opts)
	if !opts.Watch {
		return err
	}
	if err != nil {
		a.logger.Error(err)
	}
	return a.watch(ctx, targetName, opts)
}

func (a *App) depend(ctx context.Context, targetName string, opts DependOptions) error {
	ws, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}
	start, err := target(ws, targetName)
	if err != nil {
		return err
	}

	cache := analyzer.NewHeaderCache()
	var (
		dumpMu   sync.Mutex
		analyzed atomic.Int64
		updated  atomic.Int64
	)

	job := func(ctx context.Context, name string) error {
		p, err := ws.Project(name)
		if err != nil {
			return err
		}
		if !p.Kind.IsCode() {
			return nil
		}

		units, changed, err := a.analyzer.MakeDepends(ctx, cache, ws, p)
		if err != nil {
			return err
		}
		analyzed.Add(1)
		if changed {
			updated.Add(1)
			a.logger.Debug(fmt.Sprintf("%s: dependency record updated", p.Name))
		}

		if opts.DumpHeaders == analyzer.DumpNone {
			return nil
		}
		dumpMu.Lock()
		defer dumpMu.Unlock()
		for _, u := range units {
			if err := analyzer.DumpUnit(ctx, a.out, cache, u, opts.DumpHeaders); err != nil {
				return err
			}
		}
		return nil
	}

	err = a.scheduler.Run(ctx, ws.Graph, start, opts.schedulerOptions(), job)
	a.logger.Info(fmt.Sprintf("analyzed %d projects, %d headers, %d records updated",
		analyzed.Load(), cache.Len(), updated.Load()))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "dependency analysis failed"), "target", start)
	}
	return nil
}

// PlanOptions configures Plan.
type PlanOptions struct {
	RunOptions
	planner.Options
	// Explain prints the reason of every decision.
	Explain bool
}

// Plan decides what has to be compiled and relinked for target and prints it.
func (a *App) Plan(ctx context.Context, targetName string, opts PlanOptions) ([]*domain.ProjectPlan, error) {
	ws, err := a.load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	start, err := target(ws, targetName)
	if err != nil {
		return nil, err
	}

	run := planner.NewRun()
	job := func(ctx context.Context, name string) error {
		p, err := ws.Project(name)
		if err != nil {
			return err
		}
		_, err = a.planner.PlanProject(ctx, run, ws, p, opts.Options)
		return err
	}
	if err := a.scheduler.Run(ctx, ws.Graph, start, opts.schedulerOptions(), job); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "planning failed"), "target", start)
	}

	projects, err := ws.Reachable(start)
	if err != nil {
		return nil, err
	}
	plans := make([]*domain.ProjectPlan, 0, len(projects))
	compiles, relinks := 0, 0
	for _, p := range projects {
		plan, ok := run.Plan(p.Name)
		if !ok || !p.Kind.IsCode() {
			continue
		}
		plans = append(plans, plan)
		compiles += plan.CompileCount()
		if plan.Relink {
			relinks++
		}
	}

	if err := renderPlans(a.out, ws.Root, plans, opts.Explain); err != nil {
		return nil, err
	}
	a.logger.Info(fmt.Sprintf("%d translation units to compile, %d projects to relink", compiles, relinks))
	return plans, nil
}

// Stamp records content stamps for every built translation unit reachable from target.
func (a *App) Stamp(ctx context.Context, targetName, configPath string) error {
	ws, err := a.load(configPath)
	if err != nil {
		return err
	}
	start, err := target(ws, targetName)
	if err != nil {
		return err
	}
	projects, err := ws.Reachable(start)
	if err != nil {
		return err
	}

	run := planner.NewRun()
	var errs error
	total := 0
	for _, p := range projects {
		n, err := a.planner.Stamp(ctx, run, ws, p)
		total += n
		if err != nil {
			if ctx.Err() != nil {
				return errors.Join(errs, err)
			}
			errs = errors.Join(errs, err)
		}
	}
	a.logger.Info(fmt.Sprintf("recorded %d content stamps", total))
	return errs
}

// Tree prints the dependency tree below target, one project per line.
func (a *App) Tree(ctx context.Context, targetName, configPath string) error {
	ws, err := a.load(configPath)
	if err != nil {
		return err
	}
	start, err := target(ws, targetName)
	if err != nil {
		return err
	}
	return renderTree(ctx, a.out, ws, start)
}
