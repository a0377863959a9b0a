package ports

import "context"

// Infra is the infrastructure-as-code tool port.
type Infra interface {
	// Validate checks the declarative definitions in dir.
	Validate(ctx context.Context, dir string) error

	// Plan computes pending changes in dir. Returns true when changes
	// are pending.
	Plan(ctx context.Context, dir string) (bool, error)

	// Apply applies the definitions in dir. Applying an already-applied
	// configuration is a no-op.
	Apply(ctx context.Context, dir string) error
}
