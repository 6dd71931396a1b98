package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stale/internal/adapters/fs"
	"go.trai.ch/stale/internal/core/domain"
)

func TestResolver_ResolveInputs(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"b.cpp", "a.cpp", "a.hpp", "sub/c.cpp"} {
		path := filepath.Join(tmpDir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))
	}

	resolver := fs.NewResolver()

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{name: "glob", patterns: []string{"*.cpp"}, want: []string{"a.cpp", "b.cpp"}},
		{name: "nested glob", patterns: []string{"sub/*.cpp"}, want: []string{"sub/c.cpp"}},
		{name: "literal", patterns: []string{"a.hpp"}, want: []string{"a.hpp"}},
		{name: "overlapping patterns", patterns: []string{"a.*", "*.cpp"}, want: []string{"a.cpp", "a.hpp", "b.cpp"}},
		{name: "glob without matches", patterns: []string{"*.cxx"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.ResolveInputs(tt.patterns, tmpDir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_ResolveInputs_MissingLiteral(t *testing.T) {
	resolver := fs.NewResolver()

	_, err := resolver.ResolveInputs([]string{"missing.cpp"}, t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFilesystem)
	assert.Contains(t, err.Error(), "input not found")
}

func TestResolver_ResolveInputs_GlobError(t *testing.T) {
	resolver := fs.NewResolver()

	_, err := resolver.ResolveInputs([]string{"["}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to glob path")
}
