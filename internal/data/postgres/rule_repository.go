package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/convoy-settlement-engine/internal/domain/subsidy"
	"github.com/convoy-settlement-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ruleColumns = `id, priority, active, kind, rate, flat_amount, cargo,
		source_zone_id, destination_zone_id, requires_on_time, scales_with_damage, created_at`

// RuleRepository implements the subsidy.Repository interface for PostgreSQL.
// Zone polygons are stored as JSONB coordinate arrays.
type RuleRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRuleRepository creates a new PostgreSQL subsidy rule repository
func NewRuleRepository(logger *slog.Logger, db *persistence.PostgresDB) subsidy.Repository {
	return &RuleRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *RuleRepository) scanRules(rows pgx.Rows) ([]subsidy.Rule, error) {
	defer rows.Close()

	var rules []subsidy.Rule
	for rows.Next() {
		var rule subsidy.Rule
		err := rows.Scan(
			&rule.ID, &rule.Priority, &rule.Active, &rule.Kind, &rule.Rate, &rule.FlatAmount,
			&rule.Cargo, &rule.SourceZoneID, &rule.DestinationZoneID, &rule.RequiresOnTime,
			&rule.ScalesWithDamage, &rule.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subsidy rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over subsidy rules: %w", err)
	}
	return rules, nil
}

// ActiveRules returns active rules ordered by priority descending, id
// ascending. The secondary id order is the resolver's deterministic tie-break
// among equal priorities.
func (r *RuleRepository) ActiveRules(ctx context.Context) ([]subsidy.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM subsidy_rules
		WHERE active
		ORDER BY priority DESC, id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to get active subsidy rules", "error", err)
		return nil, fmt.Errorf("failed to get active subsidy rules: %w", err)
	}
	return r.scanRules(rows)
}

// ListRules returns all rules for the gateway
func (r *RuleRepository) ListRules(ctx context.Context) ([]subsidy.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM subsidy_rules ORDER BY priority DESC, id ASC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list subsidy rules", "error", err)
		return nil, fmt.Errorf("failed to list subsidy rules: %w", err)
	}
	return r.scanRules(rows)
}

func scanZone(row pgx.Row) (*subsidy.Zone, error) {
	var z subsidy.Zone
	var polygon []byte
	var point []byte
	if err := row.Scan(&z.ID, &z.Name, &z.Kind, &polygon, &point); err != nil {
		return nil, err
	}
	if polygon != nil {
		if err := json.Unmarshal(polygon, &z.Polygon); err != nil {
			return nil, fmt.Errorf("failed to unmarshal zone polygon: %w", err)
		}
	}
	if point != nil {
		if err := json.Unmarshal(point, &z.Point); err != nil {
			return nil, fmt.Errorf("failed to unmarshal zone point: %w", err)
		}
	}
	return &z, nil
}

// Zones returns the full zone registry
func (r *RuleRepository) Zones(ctx context.Context) ([]subsidy.Zone, error) {
	query := `SELECT id, name, kind, polygon, point FROM zones ORDER BY name ASC`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list zones", "error", err)
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var zones []subsidy.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over zones: %w", err)
	}
	return zones, nil
}

// GetZone resolves one zone by id
func (r *RuleRepository) GetZone(ctx context.Context, id uuid.UUID) (*subsidy.Zone, error) {
	query := `SELECT id, name, kind, polygon, point FROM zones WHERE id = $1`

	z, err := scanZone(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get zone", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return z, nil
}
