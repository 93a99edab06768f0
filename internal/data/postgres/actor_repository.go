package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const actorColumns = `id, character_id, player_id, name, roleplay_mode, savings_fraction, created_at, updated_at`

// ActorRepository implements the actor.Repository interface for PostgreSQL
type ActorRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewActorRepository creates a new PostgreSQL actor repository
func NewActorRepository(logger *slog.Logger, db *persistence.PostgresDB) actor.Repository {
	return &ActorRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func scanActor(row pgx.Row) (*actor.Actor, error) {
	var a actor.Actor
	err := row.Scan(
		&a.ID, &a.CharacterID, &a.PlayerID, &a.Name, &a.RoleplayMode, &a.SavingsFraction,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an actor by id
func (r *ActorRepository) GetByID(ctx context.Context, id uuid.UUID) (*actor.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE id = $1`

	a, err := scanActor(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, actor.ErrActorNotFound
		}
		r.logger.Error("Failed to get actor", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	return a, nil
}

// GetByCharacterID resolves an actor by in-game character id
func (r *ActorRepository) GetByCharacterID(ctx context.Context, characterID string) (*actor.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE character_id = $1`

	a, err := scanActor(r.querier.QueryRow(ctx, query, characterID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, actor.ErrActorNotFound
		}
		r.logger.Error("Failed to get actor by character id", "character_id", characterID, "error", err)
		return nil, fmt.Errorf("failed to get actor by character id: %w", err)
	}
	return a, nil
}

// GetByPlayerID resolves an actor by numeric platform id
func (r *ActorRepository) GetByPlayerID(ctx context.Context, playerID int64) (*actor.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM actors WHERE player_id = $1`

	a, err := scanActor(r.querier.QueryRow(ctx, query, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, actor.ErrActorNotFound
		}
		r.logger.Error("Failed to get actor by player id", "player_id", playerID, "error", err)
		return nil, fmt.Errorf("failed to get actor by player id: %w", err)
	}
	return a, nil
}

// ShortcutMonitor implements actor.RouteMonitor against the shortcut_uses
// table written by the out-of-scope presence tracker.
type ShortcutMonitor struct {
	querier persistence.Querier
	logger  *slog.Logger
	window  time.Duration
}

// NewShortcutMonitor creates a RouteMonitor looking back over window.
func NewShortcutMonitor(logger *slog.Logger, db *persistence.PostgresDB, window time.Duration) actor.RouteMonitor {
	return &ShortcutMonitor{
		querier: db.Pool(),
		logger:  logger,
		window:  window,
	}
}

// UsedRestrictedShortcut reports whether the actor used a restricted shortcut
// zone within the lookback window.
func (m *ShortcutMonitor) UsedRestrictedShortcut(ctx context.Context, actorID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM shortcut_uses
			WHERE actor_id = $1 AND used_at > $2
		)
	`

	var used bool
	err := m.querier.QueryRow(ctx, query, actorID, time.Now().Add(-m.window)).Scan(&used)
	if err != nil {
		m.logger.Error("Failed to query shortcut usage", "actor_id", actorID.String(), "error", err)
		return false, fmt.Errorf("failed to query shortcut usage: %w", err)
	}
	return used, nil
}
