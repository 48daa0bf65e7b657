package lifecycle

import "context"

// Component is the lifecycle interface every managed component implements.
// The manager starts components in dependency order and stops them in
// reverse.
type Component interface {
	// Start initializes the component. It must return promptly; long
	// running work belongs in goroutines the component owns.
	Start(ctx context.Context) error

	// Stop shuts the component down, honoring the context deadline for
	// in-flight work.
	Stop(ctx context.Context) error

	// Name returns the human-readable component name used in logs.
	Name() string
}
