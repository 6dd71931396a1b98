package domain

import "time"

// BuildStamp records the content of a translation unit's inputs at the time
// its object file was last built.
type BuildStamp struct {
	Object    string    `json:"object,omitzero"`
	Source    string    `json:"source,omitzero"`
	InputHash string    `json:"input_hash,omitzero"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
