package app_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/adapters/cas"
	"go.trai.ch/stale/internal/adapters/fs"
	"go.trai.ch/stale/internal/adapters/record"
	"go.trai.ch/stale/internal/app"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/stale/internal/core/ports/mocks"
	"go.trai.ch/stale/internal/engine/analyzer"
	"go.trai.ch/stale/internal/engine/planner"
	"go.trai.ch/stale/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type harness struct {
	app     *app.App
	ws      *domain.Workspace
	loader  *mocks.MockConfigLoader
	watcher *mocks.MockWatcher
	logger  *mocks.MockLogger
	out     *bytes.Buffer
}

func writeAt(t *testing.T, path, content string, at time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	require.NoError(t, os.Chtimes(path, at, at))
}

// newHarness builds a workspace with a static library Kernel, an executable
// App depending on it, a file copy project Docs and a group Everything.
func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	root := t.TempDir()

	kernelDir := filepath.Join(root, "Kernel")
	appDir := filepath.Join(root, "App")
	writeAt(t, filepath.Join(kernelDir, "kernel.h"), "#pragma once\n", t0)
	writeAt(t, filepath.Join(kernelDir, "thread.cpp"), "#include \"kernel.h\"\n", t0)
	writeAt(t, filepath.Join(appDir, "main.cpp"), "#include \"kernel.h\"\n#include <cstdio>\n", t0)

	projects := []*domain.Project{
		{Name: "Kernel", Kind: domain.KindStaticLibrary, Dir: kernelDir, Sources: []string{"thread.cpp"}},
		{Name: "App", Kind: domain.KindExecutable, Dir: appDir, Sources: []string{"main.cpp"}, DependsOn: []string{"Kernel"}},
		{Name: "Docs", Kind: domain.KindFileCopy, Dir: filepath.Join(root, "Docs")},
		{Name: "Everything", Kind: domain.KindGroup, Dir: root, DependsOn: []string{"App", "Docs"}},
	}
	ws, err := domain.NewWorkspace(root, filepath.Join(root, "out"),
		domain.IncludeRoots{Public: kernelDir}, domain.DefaultLayout(), projects)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	h := &harness{
		ws:      ws,
		loader:  mocks.NewMockConfigLoader(ctrl),
		watcher: mocks.NewMockWatcher(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		out:     &bytes.Buffer{},
	}
	h.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	prober := fs.NewProber()
	records := record.NewStore()
	h.app = app.New(
		h.loader,
		analyzer.New(prober, records, h.logger),
		planner.New(prober, records, fs.NewHasher(), cas.NewStore(), h.logger),
		scheduler.New(h.logger),
		h.watcher,
		h.logger,
	).WithOutput(h.out)
	return h
}

func (h *harness) project(t *testing.T, name string) *domain.Project {
	t.Helper()
	p, err := h.ws.Project(name)
	require.NoError(t, err)
	return p
}

// build pretends every object and output was produced at the given time.
func (h *harness) build(t *testing.T, at time.Time) {
	t.Helper()
	for _, name := range []string{"Kernel", "App"} {
		p := h.project(t, name)
		for _, tu := range p.Sources {
			writeAt(t, h.ws.ObjectPath(p, tu), "obj", at)
		}
		writeAt(t, h.ws.OutputPath(p), "bin", at.Add(time.Second))
	}
	writeAt(t, h.ws.OutputPath(h.project(t, "App")), "bin", at.Add(2*time.Second))
}

func TestApp_Depend(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil)

	err := h.app.Depend(context.Background(), "", app.DependOptions{RunOptions: app.RunOptions{Jobs: 2}})
	require.NoError(t, err)

	for _, name := range []string{"Kernel", "App"} {
		entries, err := record.NewStore().Read(h.project(t, name).RecordPath())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, []string{filepath.Join(h.ws.Root, "Kernel", "kernel.h")}, entries[0].Headers)
	}
	assert.NoFileExists(t, h.project(t, "Docs").RecordPath())
	assert.Empty(t, h.out.String())
}

func TestApp_Depend_DumpHeaders(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load("stale.yaml").Return(h.ws, nil)

	err := h.app.Depend(context.Background(), "kernel", app.DependOptions{
		RunOptions:  app.RunOptions{ConfigPath: "stale.yaml"},
		DumpHeaders: analyzer.DumpStd,
	})
	require.NoError(t, err)
	assert.Equal(t, "thread.cpp\n   "+filepath.Join(h.ws.Root, "Kernel", "kernel.h")+"\n", h.out.String())
}

func TestApp_Depend_Failure(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil)
	kernel := h.project(t, "Kernel")
	writeAt(t, filepath.Join(kernel.Dir, "thread.cpp"), "#include \"gone.h\"\n", t0)

	err := h.app.Depend(context.Background(), "App", app.DependOptions{RunOptions: app.RunOptions{KeepGoing: true}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingIncludeFile))
	assert.NoFileExists(t, kernel.RecordPath())
	assert.NoFileExists(t, h.project(t, "App").RecordPath())
}

func TestApp_UnknownTarget(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil)

	err := h.app.Depend(context.Background(), "Nope", app.DependOptions{})
	assert.True(t, errors.Is(err, domain.ErrProjectNotFound))
}

func TestApp_LoadFailure(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)

	_, err := h.app.Plan(context.Background(), "", app.PlanOptions{})
	assert.True(t, errors.Is(err, domain.ErrConfigNotFound))
}

func TestApp_Plan_Explain(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil).Times(2)
	ctx := context.Background()

	require.NoError(t, h.app.Depend(ctx, "", app.DependOptions{}))

	plans, err := h.app.Plan(ctx, "", app.PlanOptions{Explain: true})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	g := goldie.New(t)
	g.Assert(t, "plan_explain", h.out.Bytes())
}

func TestApp_Plan_LibraryRebuildRelinksDependents(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil).AnyTimes()
	ctx := context.Background()

	require.NoError(t, h.app.Depend(ctx, "", app.DependOptions{}))
	h.build(t, t0.Add(time.Hour))

	plans, err := h.app.Plan(ctx, "App", app.PlanOptions{})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	for _, p := range plans {
		assert.False(t, p.Relink, p.Project)
	}

	// Kernel gains a header only its own translation unit includes.
	kernel := h.project(t, "Kernel")
	writeAt(t, filepath.Join(kernel.Dir, "sched.h"), "#pragma once\n", t0.Add(2*time.Hour))
	writeAt(t, filepath.Join(kernel.Dir, "thread.cpp"), "#include \"kernel.h\"\n#include \"sched.h\"\n", t0)
	require.NoError(t, h.app.Depend(ctx, "Kernel", app.DependOptions{}))

	h.out.Reset()
	plans, err = h.app.Plan(ctx, "App", app.PlanOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Kernel", plans[0].Project)
	assert.Equal(t, 1, plans[0].CompileCount())
	assert.True(t, plans[0].Relink)

	assert.Equal(t, "App", plans[1].Project)
	assert.Zero(t, plans[1].CompileCount())
	assert.True(t, plans[1].Relink)
	assert.Equal(t, domain.ReasonLibraryRebuilt, plans[1].Reason)
	assert.Contains(t, h.out.String(), "● relink")
}

func TestApp_Stamp_ContentHash(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil).AnyTimes()
	ctx := context.Background()

	require.NoError(t, h.app.Depend(ctx, "", app.DependOptions{}))
	h.build(t, t0.Add(time.Hour))
	require.NoError(t, h.app.Stamp(ctx, "", ""))
	assert.DirExists(t, filepath.Join(h.ws.Root, domain.DefaultStampPath()))

	// Touch the shared header without changing it.
	header := filepath.Join(h.ws.Root, "Kernel", "kernel.h")
	require.NoError(t, os.Chtimes(header, t0.Add(3*time.Hour), t0.Add(3*time.Hour)))

	plans, err := h.app.Plan(ctx, "", app.PlanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, plans[0].CompileCount())

	plans, err = h.app.Plan(ctx, "", app.PlanOptions{Options: planner.Options{ContentHash: true}})
	require.NoError(t, err)
	for _, p := range plans {
		assert.Zero(t, p.CompileCount(), p.Project)
		assert.False(t, p.Relink, p.Project)
		assert.Equal(t, domain.ReasonUnchanged, p.Compiles[0].Reason)
	}
}

func TestApp_Tree(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil)

	require.NoError(t, h.app.Tree(context.Background(), "all", ""))

	g := goldie.New(t)
	g.Assert(t, "tree_all", h.out.Bytes())
}

func TestApp_Tree_Project(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil)

	require.NoError(t, h.app.Tree(context.Background(), "app", ""))
	assert.Equal(t, "\nApp\n   Kernel\n", h.out.String())
}

func TestApp_Depend_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.loader.EXPECT().Load(".").Return(h.ws, nil).Times(3)

		ctx, cancel := context.WithCancel(context.Background())
		changed := filepath.Join(h.ws.Root, "Kernel", "kernel.h")

		h.watcher.EXPECT().Start(gomock.Any(), h.ws.Root).Return(nil)
		h.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
			if !yield(ports.WatchEvent{Path: changed, Operation: ports.OpWrite}) {
				return
			}
			<-ctx.Done()
		}))
		h.watcher.EXPECT().Stop().Return(nil)

		errCh := make(chan error)
		go func() {
			errCh <- h.app.Depend(ctx, "", app.DependOptions{Watch: true})
		}()

		time.Sleep(time.Second)
		synctest.Wait()
		cancel()

		require.NoError(t, <-errCh)
	})
}

func TestApp_Tree_Canceled(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(".").Return(h.ws, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.app.Tree(ctx, "", "")
	assert.True(t, errors.Is(err, domain.ErrTraversalStopped))
	assert.Empty(t, h.out.String())
}
