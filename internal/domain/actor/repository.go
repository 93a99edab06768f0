package actor

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines actor persistence and resolution operations. Resolution
// tries the in-game character id first and falls back to the numeric player
// id; both return ErrActorNotFound when nothing matches.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Actor, error)
	GetByCharacterID(ctx context.Context, characterID string) (*Actor, error)
	GetByPlayerID(ctx context.Context, playerID int64) (*Actor, error)
}

// RouteMonitor answers whether an actor is known to have used a restricted
// shortcut zone recently. A positive answer zeroes the subsidy component of
// the actor's settlement summary.
type RouteMonitor interface {
	UsedRestrictedShortcut(ctx context.Context, actorID uuid.UUID) (bool, error)
}
