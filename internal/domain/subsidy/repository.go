package subsidy

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads the rule set and zone registry. Both are small and
// read-only during settlement; rule administration happens elsewhere.
type Repository interface {
	// ActiveRules returns all active rules ordered by priority descending,
	// id ascending. The ordering is the resolver's deterministic tie-break.
	ActiveRules(ctx context.Context) ([]Rule, error)

	// ListRules returns all rules for the gateway, active or not.
	ListRules(ctx context.Context) ([]Rule, error)

	// Zones returns the full zone registry.
	Zones(ctx context.Context) ([]Zone, error)

	// GetZone resolves one zone by id.
	GetZone(ctx context.Context, id uuid.UUID) (*Zone, error)
}
