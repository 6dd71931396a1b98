package domain

import "path/filepath"

const (
	// StaleDirName is the name of the internal workspace directory.
	StaleDirName = ".stale"

	// StampDirName is the name of the content stamp directory.
	StampDirName = "stamps"

	// WorkspaceFileName is the name of the workspace configuration file.
	WorkspaceFileName = "stale.yaml"

	// DefaultOutputDir is the output directory used when the workspace does not name one.
	DefaultOutputDir = "out"

	// ProjectOutDirSuffix is appended to a project name to form its output directory.
	ProjectOutDirSuffix = ".Out"

	// RecordFileExt is the extension of a project's dependency record file.
	RecordFileExt = ".Depend"

	// DefaultSourcePattern is used for code projects that list no sources.
	DefaultSourcePattern = "*.cpp"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStampPath returns the default path of the content stamp store.
// It joins .stale and stamps.
func DefaultStampPath() string {
	return filepath.Join(StaleDirName, StampDirName)
}
