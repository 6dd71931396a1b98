package domain

import "go.trai.ch/zerr"

var (
	// ErrDuplicateProjectName is returned when a project name is added to the graph twice.
	ErrDuplicateProjectName = zerr.New("duplicate project name")

	// ErrUnresolvedProjectDependency is returned when a project depends on a name the graph does not know.
	ErrUnresolvedProjectDependency = zerr.New("unresolved project dependency")

	// ErrCyclicDependency is returned when a traversal re-enters a project that is still on the stack.
	ErrCyclicDependency = zerr.New("cyclic project dependency")

	// ErrProjectNotFound is returned when a requested project is not part of the workspace.
	ErrProjectNotFound = zerr.New("project not found")

	// ErrTraversalStopped is returned when a visitor aborted a graph traversal.
	ErrTraversalStopped = zerr.New("traversal stopped")

	// ErrMissingIncludeFile is returned when a quoted include cannot be found on the search path.
	ErrMissingIncludeFile = zerr.New("missing include file")

	// ErrUnexpectedEndOfInput is returned when a directive is truncated by the end of the file.
	ErrUnexpectedEndOfInput = zerr.New("unexpected end of input")

	// ErrMalformedRecordFile is returned when a dependency record file cannot be parsed.
	ErrMalformedRecordFile = zerr.New("malformed dependency record")

	// ErrFilesystem is returned when a file cannot be read, written or inspected.
	ErrFilesystem = zerr.New("filesystem error")

	// ErrConfigNotFound is returned when no workspace file can be located.
	ErrConfigNotFound = zerr.New("could not find stale.yaml in current or parent directories")

	// ErrConfigRead is returned when the workspace file cannot be read.
	ErrConfigRead = zerr.New("failed to read workspace file")

	// ErrConfigParse is returned when the workspace file is not valid YAML.
	ErrConfigParse = zerr.New("failed to parse workspace file")

	// ErrInvalidProject is returned when a project definition is incomplete or inconsistent.
	ErrInvalidProject = zerr.New("invalid project definition")

	// ErrReservedProjectName is returned when a project uses a name reserved by the graph.
	ErrReservedProjectName = zerr.New("project name is reserved")

	// ErrStampStore is returned when content stamps cannot be read or written.
	ErrStampStore = zerr.New("stamp store failure")
)
