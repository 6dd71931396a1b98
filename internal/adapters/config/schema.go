package config

// Workspace represents the structure of the stale.yaml configuration file.
type Workspace struct {
	Version  string       `yaml:"version"`
	Output   string       `yaml:"output"`
	Includes IncludesDTO  `yaml:"includes"`
	Layout   LayoutDTO    `yaml:"layout"`
	Projects []ProjectDTO `yaml:"projects"`
}

// IncludesDTO holds the workspace wide include directories.
type IncludesDTO struct {
	Public    string   `yaml:"public"`
	Private   string   `yaml:"private"`
	Shared    []string `yaml:"shared"`
	Platforms []string `yaml:"platforms"`
}

// LayoutDTO overrides the file naming conventions. Unset fields keep their defaults.
type LayoutDTO struct {
	ObjectExt    *string `yaml:"object_ext"`
	ExeExt       *string `yaml:"exe_ext"`
	LibPrefix    *string `yaml:"lib_prefix"`
	SharedLibExt *string `yaml:"shared_lib_ext"`
	StaticLibExt *string `yaml:"static_lib_ext"`
}

// ProjectDTO represents a project definition in the configuration.
type ProjectDTO struct {
	Name         string   `yaml:"name"`
	Kind         string   `yaml:"kind"`
	Dir          string   `yaml:"dir"`
	DependsOn    []string `yaml:"depends_on"`
	Sources      []string `yaml:"sources"`
	Headers      []string `yaml:"headers"`
	IncludePaths []string `yaml:"include_paths"`
}
