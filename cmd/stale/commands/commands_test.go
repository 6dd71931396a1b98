package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/cmd/stale/commands"
	"go.trai.ch/stale/internal/adapters/logger"
	"go.trai.ch/stale/internal/app"
	"go.trai.ch/stale/internal/build"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/engine/analyzer"
)

type mockApp struct {
	target     string
	configPath string
	depend     app.DependOptions
	plan       app.PlanOptions
	calls      []string
	err        error
}

func (m *mockApp) Depend(_ context.Context, target string, opts app.DependOptions) error {
	m.calls = append(m.calls, "depend")
	m.target, m.depend = target, opts
	return m.err
}

func (m *mockApp) Plan(_ context.Context, target string, opts app.PlanOptions) ([]*domain.ProjectPlan, error) {
	m.calls = append(m.calls, "plan")
	m.target, m.plan = target, opts
	return nil, m.err
}

func (m *mockApp) Stamp(_ context.Context, target, configPath string) error {
	m.calls = append(m.calls, "stamp")
	m.target, m.configPath = target, configPath
	return m.err
}

func (m *mockApp) Tree(_ context.Context, target, configPath string) error {
	m.calls = append(m.calls, "tree")
	m.target, m.configPath = target, configPath
	return m.err
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	log := logger.New()
	log.SetOutput(new(bytes.Buffer))
	cli := commands.New(a, log)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Depend(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "depend", "Kernel", "-j", "4", "-k", "--dump-headers", "full", "--watch", "--config", "ws/stale.yaml")
		require.NoError(t, err)

		assert.Equal(t, []string{"depend"}, mock.calls)
		assert.Equal(t, "Kernel", mock.target)
		assert.Equal(t, app.DependOptions{
			RunOptions:  app.RunOptions{ConfigPath: "ws/stale.yaml", Jobs: 4, KeepGoing: true},
			DumpHeaders: analyzer.DumpFull,
			Watch:       true,
		}, mock.depend)
	})

	t.Run("defaults to every project", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "depend")
		require.NoError(t, err)

		assert.Equal(t, domain.AllProjects, mock.target)
		assert.Equal(t, 1, mock.depend.Jobs)
		assert.False(t, mock.depend.KeepGoing)
		assert.Equal(t, analyzer.DumpNone, mock.depend.DumpHeaders)
	})

	t.Run("rejects unknown dump mode", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "depend", "--dump-headers", "tree")
		require.Error(t, err)
		assert.Empty(t, mock.calls)
	})

	t.Run("rejects extra targets", func(t *testing.T) {
		mock := &mockApp{}
		_, err := execute(t, mock, "depend", "A", "B")
		require.Error(t, err)
		assert.Empty(t, mock.calls)
	})
}

func TestCommands_Plan(t *testing.T) {
	mock := &mockApp{}
	_, err := execute(t, mock, "plan", "App", "--force", "--content-hash", "--explain", "-j", "2")
	require.NoError(t, err)

	assert.Equal(t, "App", mock.target)
	assert.True(t, mock.plan.Force)
	assert.True(t, mock.plan.ContentHash)
	assert.True(t, mock.plan.Explain)
	assert.Equal(t, 2, mock.plan.Jobs)
}

func TestCommands_StampAndTree(t *testing.T) {
	for _, name := range []string{"stamp", "tree"} {
		t.Run(name, func(t *testing.T) {
			mock := &mockApp{}
			_, err := execute(t, mock, name, "-c", "other", "Docs")
			require.NoError(t, err)
			assert.Equal(t, []string{name}, mock.calls)
			assert.Equal(t, "Docs", mock.target)
			assert.Equal(t, "other", mock.configPath)
		})
	}
}

func TestCommands_Error(t *testing.T) {
	mock := &mockApp{err: errors.New("simulated error")}
	_, err := execute(t, mock, "plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulated error")
}

func TestCommands_Verbose(t *testing.T) {
	log := logger.New()
	logs := new(bytes.Buffer)
	log.SetOutput(logs)

	cli := commands.New(&mockApp{}, log)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"tree", "--verbose"})
	require.NoError(t, cli.Execute(context.Background()))

	log.Debug("scanning kernel.h")
	assert.Contains(t, logs.String(), "scanning kernel.h")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stale version "+build.Version)
}

func TestCommands_VersionFlag(t *testing.T) {
	out, err := execute(t, &mockApp{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
