package domain

import (
	"path/filepath"

	"go.trai.ch/zerr"
)

// Layout holds the file naming conventions of the target platform.
type Layout struct {
	ObjectExt    string
	ExeExt       string
	LibPrefix    string
	SharedLibExt string
	StaticLibExt string
}

// DefaultLayout returns the naming conventions of a GCC style toolchain.
func DefaultLayout() Layout {
	return Layout{
		ObjectExt:    ".o",
		LibPrefix:    "lib",
		SharedLibExt: ".so",
		StaticLibExt: ".a",
	}
}

// IncludeRoots holds the workspace wide include directories.
type IncludeRoots struct {
	Public    string
	Private   string
	Shared    []string
	Platforms []string
}

// Workspace is the set of projects of one source tree together with its layout.
type Workspace struct {
	Root      string
	OutputDir string
	Includes  IncludeRoots
	Layout    Layout
	Projects  []*Project
	Graph     *Graph

	byIndex map[int]*Project
}

// NewWorkspace builds the dependency graph for projects and validates it.
// Projects are added to the graph in order, so their declaration order is the
// order in which siblings are traversed.
func NewWorkspace(root, outputDir string, includes IncludeRoots, layout Layout, projects []*Project) (*Workspace, error) {
	ws := &Workspace{
		Root:      root,
		OutputDir: outputDir,
		Includes:  includes,
		Layout:    layout,
		Projects:  projects,
		Graph:     NewGraph(),
		byIndex:   make(map[int]*Project, len(projects)),
	}

	for _, p := range projects {
		idx, err := ws.Graph.AddNode(p.Name)
		if err != nil {
			return nil, err
		}
		p.GraphIndex = idx
		if p.OutDir == "" {
			p.OutDir = filepath.Join(outputDir, p.Name+ProjectOutDirSuffix)
		}
		ws.byIndex[idx] = p
	}

	for _, p := range projects {
		for _, dep := range p.DependsOn {
			if err := ws.Graph.RecordEdge(p.GraphIndex, dep); err != nil {
				return nil, err
			}
		}
	}

	if err := ws.Graph.Validate(); err != nil {
		return nil, err
	}
	return ws, nil
}

// Project returns the named project, compared case-insensitively.
func (ws *Workspace) Project(name string) (*Project, error) {
	idx, ok := ws.Graph.Lookup(name)
	if !ok || idx == 0 {
		return nil, zerr.With(zerr.Wrap(ErrProjectNotFound, "unknown project"), "project", name)
	}
	return ws.byIndex[idx], nil
}

// SearchPath returns the ordered include directories for a project: its own
// include paths and directory, the shared roots, then the platform
// subdirectories of the public and private roots.
func (ws *Workspace) SearchPath(p *Project) []string {
	dirs := make([]string, 0, len(p.IncludePaths)+len(ws.Includes.Shared)+3+2*len(ws.Includes.Platforms))
	dirs = append(dirs, p.IncludePaths...)
	dirs = append(dirs, p.Dir)

	if ws.Includes.Public != "" {
		dirs = append(dirs, ws.Includes.Public)
	}
	if ws.Includes.Private != "" {
		dirs = append(dirs, ws.Includes.Private)
	}
	dirs = append(dirs, ws.Includes.Shared...)

	for _, root := range []string{ws.Includes.Public, ws.Includes.Private} {
		if root == "" {
			continue
		}
		for _, plat := range ws.Includes.Platforms {
			dirs = append(dirs, filepath.Join(root, plat))
		}
	}
	return dedupe(dirs)
}

func dedupe(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		d = filepath.Clean(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// OutputPath returns the binary a code project produces, or "" for other kinds.
func (ws *Workspace) OutputPath(p *Project) string {
	switch p.Kind {
	case KindExecutable, KindService:
		return filepath.Join(ws.OutputDir, p.Name+ws.Layout.ExeExt)
	case KindSharedLibrary:
		return filepath.Join(ws.OutputDir, ws.Layout.LibPrefix+p.Name+ws.Layout.SharedLibExt)
	case KindStaticLibrary:
		return filepath.Join(ws.OutputDir, ws.Layout.LibPrefix+p.Name+ws.Layout.StaticLibExt)
	default:
		return ""
	}
}

// ObjectPath returns the object file for a translation unit of p.
func (ws *Workspace) ObjectPath(p *Project, tu string) string {
	return p.ObjectPath(tu, ws.Layout.ObjectExt)
}

// Reachable returns the projects reachable from target, dependencies first.
// Starting at AllProjects returns every project.
func (ws *Workspace) Reachable(target string) ([]*Project, error) {
	var out []*Project
	_, err := ws.Graph.Traverse(target, BottomUp|Minimal, func(name string, _ int) bool {
		idx, _ := ws.Graph.Lookup(name)
		out = append(out, ws.byIndex[idx])
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Libraries returns the library projects target transitively depends on,
// dependencies first.
func (ws *Workspace) Libraries(p *Project) ([]*Project, error) {
	var libs []*Project
	_, err := ws.Graph.Traverse(p.Name, BottomUp|Minimal|SkipTarget, func(name string, _ int) bool {
		idx, _ := ws.Graph.Lookup(name)
		if dep := ws.byIndex[idx]; dep.Kind.IsLibrary() {
			libs = append(libs, dep)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return libs, nil
}
