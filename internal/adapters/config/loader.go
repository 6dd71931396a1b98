// Package config provides the workspace loader for stale.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/stale/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the workspace file version this loader understands.
const SupportedVersion = "1"

var validProjectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	Resolver ports.InputResolver
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, resolver ports.InputResolver) *Loader {
	return &Loader{Logger: logger, Resolver: resolver}
}

// Load reads the workspace file. path is either the file itself or a directory
// from which the file is searched for in the directory and its parents.
func (l *Loader) Load(path string) (*domain.Workspace, error) {
	configPath, err := findConfiguration(path)
	if err != nil {
		return nil, err
	}

	var file Workspace
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}
	if file.Version != "" && file.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", configPath, file.Version, SupportedVersion))
	}

	root := filepath.Dir(configPath)
	output := resolveDir(root, file.Output)
	if file.Output == "" {
		output = filepath.Join(root, domain.DefaultOutputDir)
	}

	projects := make([]*domain.Project, 0, len(file.Projects))
	for i := range file.Projects {
		p, err := l.buildProject(root, &file.Projects[i])
		if err != nil {
			return nil, zerr.With(err, "config", configPath)
		}
		projects = append(projects, p)
	}

	ws, err := domain.NewWorkspace(root, output, buildIncludes(root, file.Includes), buildLayout(file.Layout), projects)
	if err != nil {
		return nil, zerr.With(err, "config", configPath)
	}
	return ws, nil
}

func findConfiguration(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, err.Error()), "path", path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no workspace file"), "path", path)
	}
	if !info.IsDir() {
		return abs, nil
	}

	currentDir := abs
	for {
		candidate := filepath.Join(currentDir, domain.WorkspaceFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no workspace file"), "cwd", path)
}

func (l *Loader) buildProject(root string, dto *ProjectDTO) (*domain.Project, error) {
	if err := validateProjectName(dto.Name); err != nil {
		return nil, err
	}

	kind, ok := domain.ParseProjectKind(dto.Kind)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidProject, "unknown project kind"), "kind", dto.Kind)
		return nil, zerr.With(err, "project", dto.Name)
	}

	dir := dto.Dir
	if dir == "" {
		dir = dto.Name
	}
	dir = resolveDir(root, dir)

	p := &domain.Project{
		Name:      dto.Name,
		Kind:      kind,
		Dir:       dir,
		DependsOn: dto.DependsOn,
	}
	for _, inc := range dto.IncludePaths {
		p.IncludePaths = append(p.IncludePaths, resolveDir(dir, inc))
	}

	if !kind.IsCode() {
		if len(dto.Sources) > 0 {
			l.Logger.Warn(fmt.Sprintf("sources of %s project %s are ignored", kind, dto.Name))
		}
		return p, nil
	}

	patterns := dto.Sources
	if len(patterns) == 0 {
		patterns = []string{domain.DefaultSourcePattern}
	}
	sources, err := l.Resolver.ResolveInputs(patterns, dir)
	if err != nil {
		return nil, zerr.With(err, "project", dto.Name)
	}
	if len(sources) == 0 {
		l.Logger.Warn(fmt.Sprintf("project %s has no translation units", dto.Name))
	}
	p.Sources = sources

	if len(dto.Headers) > 0 {
		headers, err := l.Resolver.ResolveInputs(dto.Headers, dir)
		if err != nil {
			return nil, zerr.With(err, "project", dto.Name)
		}
		p.Headers = headers
	}
	return p, nil
}

func validateProjectName(name string) error {
	if name == "" {
		return zerr.Wrap(domain.ErrInvalidProject, "project name is empty")
	}
	if strings.EqualFold(name, domain.AllProjects) {
		return zerr.With(zerr.Wrap(domain.ErrReservedProjectName, "invalid project name"), "project", name)
	}
	if !validProjectNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidProject, "invalid project name"), "project", name)
	}
	return nil
}

func buildIncludes(root string, dto IncludesDTO) domain.IncludeRoots {
	inc := domain.IncludeRoots{Platforms: dto.Platforms}
	if dto.Public != "" {
		inc.Public = resolveDir(root, dto.Public)
	}
	if dto.Private != "" {
		inc.Private = resolveDir(root, dto.Private)
	}
	for _, s := range dto.Shared {
		inc.Shared = append(inc.Shared, resolveDir(root, s))
	}
	return inc
}

func buildLayout(dto LayoutDTO) domain.Layout {
	layout := domain.DefaultLayout()
	override := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	override(&layout.ObjectExt, dto.ObjectExt)
	override(&layout.ExeExt, dto.ExeExt)
	override(&layout.LibPrefix, dto.LibPrefix)
	override(&layout.SharedLibExt, dto.SharedLibExt)
	override(&layout.StaticLibExt, dto.StaticLibExt)
	return layout
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Clean(filepath.Join(base, dir))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is located by findConfiguration
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigRead, err.Error()), "path", configPath)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParse, err.Error()), "path", configPath)
	}
	return nil
}
