// Package planner decides which translation units need compiling and which
// projects need relinking, working only from the persisted dependency records.
package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options controls the decisions of a planning pass.
type Options struct {
	// Force requires every translation unit to compile and every project to relink.
	Force bool
	// ContentHash lets unchanged content overrule newer timestamps.
	ContentHash bool
}

// Planner makes build decisions from dependency records.
type Planner struct {
	prober  ports.Prober
	records ports.RecordStore
	hasher  ports.Hasher
	stamps  ports.StampStore
	logger  ports.Logger
}

// New creates a new Planner.
func New(
	prober ports.Prober,
	records ports.RecordStore,
	hasher ports.Hasher,
	stamps ports.StampStore,
	logger ports.Logger,
) *Planner {
	return &Planner{
		prober:  prober,
		records: records,
		hasher:  hasher,
		stamps:  stamps,
		logger:  logger,
	}
}

// LoadRecords reads the dependency record of proj and stamps every file it names.
// Relative paths resolve against the project directory.
func (p *Planner) LoadRecords(run *Run, ws *domain.Workspace, proj *domain.Project) ([]domain.DependencyRecord, error) {
	entries, err := p.records.Read(proj.RecordPath())
	if err != nil {
		return nil, err
	}

	out := make([]domain.DependencyRecord, 0, len(entries))
	for _, e := range entries {
		src, err := run.stamp(p.prober, proj.SourcePath(e.Source))
		if err != nil {
			return nil, err
		}

		rec := domain.DependencyRecord{
			Name:    e.Source,
			Source:  src,
			Headers: make([]domain.FileStamp, 0, len(e.Headers)),
			Object:  ws.ObjectPath(proj, e.Source),
		}
		for _, h := range e.Headers {
			hs, err := run.stamp(p.prober, proj.SourcePath(h))
			if err != nil {
				return nil, err
			}
			rec.Headers = append(rec.Headers, hs)
		}
		out = append(out, rec)
	}
	return out, nil
}

// PlanProject decides the compiles and the relink of proj. The plans of the
// libraries proj depends on must already be part of run.
func (p *Planner) PlanProject(ctx context.Context, run *Run, ws *domain.Workspace, proj *domain.Project, opts Options) (*domain.ProjectPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan := &domain.ProjectPlan{
		Project: proj.Name,
		Kind:    proj.Kind,
		Output:  ws.OutputPath(proj),
	}
	if !proj.Kind.IsCode() {
		run.put(plan)
		return plan, nil
	}

	if err := p.planCompiles(ctx, run, ws, proj, opts, plan); err != nil {
		return nil, err
	}

	libs, err := ws.Libraries(proj)
	if err != nil {
		return nil, err
	}
	for _, lib := range libs {
		plan.Libraries = append(plan.Libraries, ws.OutputPath(lib))
	}

	if err := p.planRelink(run, libs, opts, plan); err != nil {
		return nil, zerr.With(err, "project", proj.Name)
	}

	p.logger.Debug(fmt.Sprintf("%s: %d of %d translation units to compile, relink %t (%s)",
		proj.Name, plan.CompileCount(), len(plan.Compiles), plan.Relink, plan.Explanation()))
	run.put(plan)
	return plan, nil
}

func (p *Planner) planCompiles(ctx context.Context, run *Run, ws *domain.Workspace, proj *domain.Project, opts Options, plan *domain.ProjectPlan) error {
	records, err := p.LoadRecords(run, ws, proj)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("dependency record of %s is unusable, rebuilding every translation unit: %v", proj.Name, err))
		plan.Degraded = true
	}

	byName := make(map[string]*domain.DependencyRecord, len(records))
	for i := range records {
		byName[records[i].Name] = &records[i]
	}

	for _, tu := range proj.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		obj, err := run.stamp(p.prober, ws.ObjectPath(proj, tu))
		if err != nil {
			return zerr.With(err, "project", proj.Name)
		}
		plan.Objects = append(plan.Objects, obj.Path)

		rec, ok := byName[tu]
		if !ok {
			reason := domain.ReasonNoRecord
			if opts.Force {
				reason = domain.ReasonForced
			}
			plan.Compiles = append(plan.Compiles, domain.CompileDecision{
				Source: tu, Object: obj.Path, Required: true, Reason: reason,
			})
			continue
		}

		d := NeedsCompile(rec, obj, opts.Force)
		if opts.ContentHash && staleByTime(d) && p.unchanged(ws.Root, rec) {
			d.Required, d.Reason, d.Cause = false, domain.ReasonUnchanged, ""
		}
		p.logger.Debug(fmt.Sprintf("%s/%s: %s", proj.Name, tu, d.Explanation()))
		plan.Compiles = append(plan.Compiles, d)
	}
	return nil
}

func (p *Planner) planRelink(run *Run, libs []*domain.Project, opts Options, plan *domain.ProjectPlan) error {
	switch {
	case opts.Force:
		plan.Relink, plan.Reason = true, domain.ReasonForced
		return nil
	case plan.CompileCount() > 0:
		plan.Relink, plan.Reason = true, domain.ReasonRecompiled
		return nil
	}

	for _, lib := range libs {
		if run.Rebuilt(lib.Name) {
			plan.Relink, plan.Reason, plan.Cause = true, domain.ReasonLibraryRebuilt, lib.Name
			return nil
		}
	}

	out, err := run.stamp(p.prober, plan.Output)
	if err != nil {
		return err
	}
	if !out.Exists {
		plan.Relink, plan.Reason = true, domain.ReasonTargetMissing
		return nil
	}

	inputs := make([]string, 0, len(plan.Objects)+len(plan.Libraries))
	inputs = append(inputs, plan.Objects...)
	inputs = append(inputs, plan.Libraries...)
	for _, in := range inputs {
		s, err := run.stamp(p.prober, in)
		if err != nil {
			return err
		}
		if s.ModTime.After(out.ModTime) {
			plan.Relink, plan.Reason, plan.Cause = true, domain.ReasonTargetOlder, in
			return nil
		}
	}

	plan.Reason = domain.ReasonUpToDate
	return nil
}

// unchanged reports whether the inputs of rec hash to the stamp recorded for its object.
func (p *Planner) unchanged(root string, rec *domain.DependencyRecord) bool {
	stamp, err := p.stamps.Get(root, stampKey(root, rec.Object))
	if err != nil {
		p.logger.Warn(fmt.Sprintf("ignoring content stamp of %s: %v", rec.Name, err))
		return false
	}
	if stamp == nil {
		return false
	}

	hash, err := p.inputHash(rec)
	if err != nil {
		p.logger.Warn(fmt.Sprintf("cannot hash inputs of %s: %v", rec.Name, err))
		return false
	}
	return hash == stamp.InputHash
}

func (p *Planner) inputHash(rec *domain.DependencyRecord) (string, error) {
	paths := make([]string, 0, len(rec.Headers)+1)
	paths = append(paths, rec.Source.Path)
	for _, h := range rec.Headers {
		paths = append(paths, h.Path)
	}
	return p.hasher.ComputeInputHash(paths)
}

// Stamp records the content hash of every built translation unit of proj,
// so later passes with content hashing can skip units that were only touched.
// It returns the number of stamps written.
func (p *Planner) Stamp(ctx context.Context, run *Run, ws *domain.Workspace, proj *domain.Project) (int, error) {
	if !proj.Kind.IsCode() {
		return 0, nil
	}

	records, err := p.LoadRecords(run, ws, proj)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "no usable dependency record, run stale depend first"), "project", proj.Name)
	}

	written := 0
	for i := range records {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		rec := &records[i]

		obj, err := run.stamp(p.prober, rec.Object)
		if err != nil {
			return written, err
		}
		if !obj.Exists {
			p.logger.Debug(fmt.Sprintf("%s/%s: object not built, no stamp recorded", proj.Name, rec.Name))
			continue
		}

		hash, err := p.inputHash(rec)
		if err != nil {
			return written, zerr.With(err, "project", proj.Name)
		}
		if err := p.stamps.Put(ws.Root, domain.BuildStamp{
			Object:    stampKey(ws.Root, rec.Object),
			Source:    rec.Source.Path,
			InputHash: hash,
			Timestamp: time.Now().UTC(),
		}); err != nil {
			return written, zerr.With(err, "project", proj.Name)
		}
		written++
	}
	return written, nil
}

// stampKey names an object relative to the workspace root when possible.
func stampKey(root, object string) string {
	if rel, err := filepath.Rel(root, object); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(object)
}
