package domain

import "time"

// RecordEntry is one translation unit section of a dependency record file.
// Paths are kept exactly as they appear in the file.
type RecordEntry struct {
	Source  string
	Headers []string
}

// FileStamp is a path together with its modification time.
// Missing files carry the Unix epoch.
type FileStamp struct {
	Path    string
	ModTime time.Time
	Exists  bool
}

// Epoch is the timestamp assigned to files that do not exist.
var Epoch = time.Unix(0, 0).UTC()

// DependencyRecord is a translation unit with the timestamps of its header closure.
type DependencyRecord struct {
	// Name is the translation unit as listed by the project.
	Name    string
	Source  FileStamp
	Headers []FileStamp
	Object  string
}

// Newest returns the newest stamp among the source and its headers.
func (r *DependencyRecord) Newest() FileStamp {
	newest := r.Source
	for _, h := range r.Headers {
		if h.ModTime.After(newest.ModTime) {
			newest = h
		}
	}
	return newest
}
