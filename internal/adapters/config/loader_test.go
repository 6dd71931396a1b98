package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/adapters/config"
	"go.trai.ch/stale/internal/adapters/fs"
	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(mockLogger, fs.NewResolver()), mockLogger
}

const sampleWorkspace = `
version: "1"
output: build
includes:
  public: build/Include
  private: build/PrivInclude
  shared: [third_party/include]
  platforms: [Linux, Posix]
layout:
  exe_ext: ".bin"
projects:
  - name: Kernel
    kind: shared-library
    dir: src/Kernel
    headers: ["*.hpp"]
    include_paths: [detail]
  - name: Net
    kind: static-library
    dir: src/Net
    depends_on: [kernel]
    sources: ["socket.cpp", "dns/*.cpp"]
  - name: Server
    kind: Service
    dir: src/Server
    depends_on: [Net, Kernel]
  - name: Docs
    kind: file-copy
`

func sampleTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	createFile(t, root, domain.WorkspaceFileName, sampleWorkspace)
	createFile(t, root, "src/Kernel/thread.cpp", "")
	createFile(t, root, "src/Kernel/memory.cpp", "")
	createFile(t, root, "src/Kernel/thread.hpp", "")
	createFile(t, root, "src/Net/socket.cpp", "")
	createFile(t, root, "src/Net/unused.cpp", "")
	createFile(t, root, "src/Net/dns/resolve.cpp", "")
	createFile(t, root, "src/Server/main.cpp", "")
	return root
}

func TestLoader_Load(t *testing.T) {
	root := sampleTree(t)
	loader, _ := newLoader(t)

	ws, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, ws.Root)
	assert.Equal(t, filepath.Join(root, "build"), ws.OutputDir)
	assert.Equal(t, domain.IncludeRoots{
		Public:    filepath.Join(root, "build", "Include"),
		Private:   filepath.Join(root, "build", "PrivInclude"),
		Shared:    []string{filepath.Join(root, "third_party", "include")},
		Platforms: []string{"Linux", "Posix"},
	}, ws.Includes)
	assert.Equal(t, ".bin", ws.Layout.ExeExt)
	assert.Equal(t, ".o", ws.Layout.ObjectExt)

	require.Len(t, ws.Projects, 4)

	kernel, err := ws.Project("kernel")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSharedLibrary, kernel.Kind)
	assert.Equal(t, filepath.Join(root, "src", "Kernel"), kernel.Dir)
	assert.Equal(t, []string{"memory.cpp", "thread.cpp"}, kernel.Sources)
	assert.Equal(t, []string{"thread.hpp"}, kernel.Headers)
	assert.Equal(t, []string{filepath.Join(root, "src", "Kernel", "detail")}, kernel.IncludePaths)
	assert.Equal(t, filepath.Join(root, "build", "Kernel.Out"), kernel.OutDir)

	net, err := ws.Project("Net")
	require.NoError(t, err)
	assert.Equal(t, []string{"dns/resolve.cpp", "socket.cpp"}, net.Sources)

	server, err := ws.Project("Server")
	require.NoError(t, err)
	assert.Equal(t, domain.KindService, server.Kind)
	assert.True(t, ws.Graph.DependsOn("Server", "Net"))
	assert.True(t, ws.Graph.DependsOn("Net", "Kernel"))

	docs, err := ws.Project("Docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Docs"), docs.Dir)
	assert.Empty(t, docs.Sources)
}

func TestLoader_Load_Discovery(t *testing.T) {
	root := sampleTree(t)
	loader, _ := newLoader(t)

	ws, err := loader.Load(filepath.Join(root, "src", "Net", "dns"))
	require.NoError(t, err)
	assert.Equal(t, root, ws.Root)
}

func TestLoader_Load_ExplicitFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, "other.yaml", "projects:\n  - name: Tool\n    kind: group\n")
	loader, _ := newLoader(t)

	ws, err := loader.Load(filepath.Join(root, "other.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, domain.DefaultOutputDir), ws.OutputDir)
	assert.Equal(t, 1, ws.Graph.Len())
}

func TestLoader_Load_DefaultSources(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.WorkspaceFileName, "projects:\n  - name: App\n    kind: executable\n")
	createFile(t, root, "App/main.cpp", "")
	createFile(t, root, "App/util.cc", "")
	loader, _ := newLoader(t)

	ws, err := loader.Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.cpp"}, ws.Projects[0].Sources)
}

func TestLoader_Load_Warnings(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.WorkspaceFileName, `
version: "2"
projects:
  - name: Empty
    kind: executable
  - name: Copy
    kind: file-copy
    sources: ["*.txt"]
`)
	loader, mockLogger := newLoader(t)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(3)

	_, err := loader.Load(root)
	require.NoError(t, err)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "invalid yaml",
			content: "projects: [",
			wantErr: domain.ErrConfigParse,
		},
		{
			name:    "reserved name",
			content: "projects:\n  - name: ALL\n    kind: group\n",
			wantErr: domain.ErrReservedProjectName,
		},
		{
			name:    "missing name",
			content: "projects:\n  - kind: group\n",
			wantErr: domain.ErrInvalidProject,
		},
		{
			name:    "invalid name",
			content: "projects:\n  - name: \"a b\"\n    kind: group\n",
			wantErr: domain.ErrInvalidProject,
		},
		{
			name:    "unknown kind",
			content: "projects:\n  - name: A\n    kind: plugin\n",
			wantErr: domain.ErrInvalidProject,
		},
		{
			name:    "duplicate name",
			content: "projects:\n  - name: A\n    kind: group\n  - name: a\n    kind: group\n",
			wantErr: domain.ErrDuplicateProjectName,
		},
		{
			name:    "unresolved dependency",
			content: "projects:\n  - name: A\n    kind: group\n    depends_on: [B]\n",
			wantErr: domain.ErrUnresolvedProjectDependency,
		},
		{
			name: "cycle",
			content: "projects:\n  - name: A\n    kind: group\n    depends_on: [B]\n" +
				"  - name: B\n    kind: group\n    depends_on: [A]\n",
			wantErr: domain.ErrCyclicDependency,
		},
		{
			name:    "missing literal source",
			content: "projects:\n  - name: A\n    kind: executable\n    sources: [gone.cpp]\n",
			wantErr: domain.ErrFilesystem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.WorkspaceFileName, tt.content)
			loader, mockLogger := newLoader(t)
			mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

			_, err := loader.Load(root)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoader_Load_NotFound(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigNotFound))
}
