// Package actor defines player-controlled characters generating settlement
// events and their resolution from raw game identifiers.
package actor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrActorNotFound = errors.New("actor not found")
)

// Actor is a player-controlled character. RoleplayMode gates roleplay-only
// delivery jobs; SavingsFraction, when set, overrides the configured default
// share of settled payments routed into savings.
type Actor struct {
	ID              uuid.UUID `json:"id"`
	CharacterID     string    `json:"character_id"` // in-game character identifier, may be empty
	PlayerID        int64     `json:"player_id"`    // numeric platform identifier
	Name            string    `json:"name"`
	RoleplayMode    bool      `json:"roleplay_mode"`
	SavingsFraction *float64  `json:"savings_fraction,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
