package domain

import (
	"path/filepath"
	"strings"
)

// ProjectKind is the kind of artifact a project produces.
type ProjectKind string

const (
	// KindSharedLibrary builds a shared library.
	KindSharedLibrary ProjectKind = "shared-library"
	// KindStaticLibrary builds a static library.
	KindStaticLibrary ProjectKind = "static-library"
	// KindExecutable builds a program.
	KindExecutable ProjectKind = "executable"
	// KindService builds a program that runs as a background service.
	KindService ProjectKind = "service"
	// KindFileCopy only copies files around.
	KindFileCopy ProjectKind = "file-copy"
	// KindGroup only groups other projects.
	KindGroup ProjectKind = "group"
)

// ParseProjectKind returns the kind for s, accepting any letter case.
func ParseProjectKind(s string) (ProjectKind, bool) {
	k := ProjectKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindSharedLibrary, KindStaticLibrary, KindExecutable, KindService, KindFileCopy, KindGroup:
		return k, true
	default:
		return "", false
	}
}

// IsCode reports whether projects of this kind compile translation units.
func (k ProjectKind) IsCode() bool {
	switch k {
	case KindSharedLibrary, KindStaticLibrary, KindExecutable, KindService:
		return true
	default:
		return false
	}
}

// IsLibrary reports whether projects of this kind are linked into their dependents.
func (k ProjectKind) IsLibrary() bool {
	return k == KindSharedLibrary || k == KindStaticLibrary
}

// Project is one buildable unit of the workspace.
type Project struct {
	Name         string
	Kind         ProjectKind
	Dir          string
	DependsOn    []string
	Sources      []string
	Headers      []string
	IncludePaths []string
	GraphIndex   int

	// OutDir is where objects and the dependency record of the project live.
	OutDir string
}

// RecordPath returns the path of the project's dependency record file.
func (p *Project) RecordPath() string {
	return filepath.Join(p.OutDir, p.Name+RecordFileExt)
}

// SourcePath returns the absolute path of a translation unit listed by the project.
func (p *Project) SourcePath(tu string) string {
	if filepath.IsAbs(tu) {
		return filepath.Clean(tu)
	}
	return filepath.Join(p.Dir, tu)
}

// ObjectPath returns the object file for a translation unit: the base name
// without extension plus objExt, inside the project's output directory.
func (p *Project) ObjectPath(tu, objExt string) string {
	base := filepath.Base(tu)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.OutDir, base+objExt)
}
