package ports

// InputResolver defines the interface for resolving file patterns.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs resolves glob patterns relative to root into a sorted list
	// of file paths relative to root.
	ResolveInputs(patterns []string, root string) ([]string, error)
}
