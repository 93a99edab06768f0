package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/convoy-settlement-engine/internal/domain/job"
	"github.com/convoy-settlement-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, cargo, source_zone_id, destination_zone_id, quantity_requested,
		quantity_fulfilled, completion_bonus, bonus_multiplier, roleplay_only,
		expires_at, completed_at, created_at`

// JobRepository implements the job.Repository interface for PostgreSQL
type JobRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewJobRepository creates a new PostgreSQL delivery-job repository
func NewJobRepository(logger *slog.Logger, db *persistence.PostgresDB) job.Repository {
	return &JobRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so lock, accept and
// completion marking share one atomic unit.
func (r *JobRepository) WithTx(tx pgx.Tx) job.Repository {
	return &JobRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanJob(row pgx.Row) (*job.DeliveryJob, error) {
	var j job.DeliveryJob
	err := row.Scan(
		&j.ID, &j.Cargo, &j.SourceZoneID, &j.DestinationZoneID, &j.QuantityRequested,
		&j.QuantityFulfilled, &j.CompletionBonus, &j.BonusMultiplier, &j.RoleplayOnly,
		&j.ExpiresAt, &j.CompletedAt, &j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// GetByID retrieves a job by its ID
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*job.DeliveryJob, error) {
	query := `SELECT ` + jobColumns + ` FROM delivery_jobs WHERE id = $1`

	j, err := scanJob(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound{JobID: id}
		}
		r.logger.Error("Failed to get delivery job", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get delivery job: %w", err)
	}
	return j, nil
}

// FindOpen returns open, unexpired jobs matching the cargo attributes, oldest
// first. A job whose roleplay restriction doesn't match the actor's mode is
// treated as no-match and never returned.
func (r *JobRepository) FindOpen(ctx context.Context, match job.Match) ([]job.DeliveryJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM delivery_jobs
		WHERE completed_at IS NULL
		  AND quantity_fulfilled < quantity_requested
		  AND expires_at > $1
		  AND (cargo IS NULL OR cargo = $2)
		  AND (source_zone_id IS NULL OR source_zone_id = ANY($3))
		  AND (destination_zone_id IS NULL OR destination_zone_id = ANY($4))
		  AND (NOT roleplay_only OR $5)
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query,
		match.At, match.Cargo, match.SourceZoneIDs, match.DestinationZoneIDs, match.RoleplayMode,
	)
	if err != nil {
		r.logger.Error("Failed to find open delivery jobs", "cargo", match.Cargo, "error", err)
		return nil, fmt.Errorf("failed to find open delivery jobs: %w", err)
	}
	defer rows.Close()

	var jobs []job.DeliveryJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over delivery jobs: %w", err)
	}
	return jobs, nil
}

// List returns jobs for the gateway, newest first
func (r *JobRepository) List(ctx context.Context, limit int) ([]job.DeliveryJob, error) {
	query := `SELECT ` + jobColumns + ` FROM delivery_jobs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.querier.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list delivery jobs", "error", err)
		return nil, fmt.Errorf("failed to list delivery jobs: %w", err)
	}
	defer rows.Close()

	var jobs []job.DeliveryJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over delivery jobs: %w", err)
	}
	return jobs, nil
}

// LockForUpdate obtains a row lock on the job and returns its state at lock
// time. Concurrent writers to the same job serialize here.
func (r *JobRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*job.DeliveryJob, error) {
	query := `SELECT ` + jobColumns + ` FROM delivery_jobs WHERE id = $1 FOR UPDATE`

	j, err := scanJob(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrJobNotFound{JobID: id}
		}
		r.logger.Error("Failed to lock delivery job", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock delivery job: %w", err)
	}
	return j, nil
}

// AcceptQuantity bumps quantity_fulfilled by accepted. The guard clause keeps
// the monotonic fulfilled ≤ requested invariant even if a caller miscomputed.
func (r *JobRepository) AcceptQuantity(ctx context.Context, id uuid.UUID, accepted int64) error {
	query := `
		UPDATE delivery_jobs
		SET quantity_fulfilled = quantity_fulfilled + $1
		WHERE id = $2 AND quantity_fulfilled + $1 <= quantity_requested
	`

	result, err := r.querier.Exec(ctx, query, accepted, id)
	if err != nil {
		r.logger.Error("Failed to accept job quantity", "id", id.String(), "error", err)
		return fmt.Errorf("failed to accept job quantity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("accepting %d units would exceed requested quantity for job %s", accepted, id.String())
	}
	return nil
}

// MarkCompleted sets the completion marker if and only if it is still unset.
// Returns true when this call performed the transition.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE delivery_jobs
		SET completed_at = $1
		WHERE id = $2 AND completed_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to mark delivery job completed", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to mark delivery job completed: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// RecordDelivery appends one immutable delivery record
func (r *JobRepository) RecordDelivery(ctx context.Context, d *job.Delivery) error {
	query := `
		INSERT INTO deliveries (id, job_id, actor_id, quantity, delivered_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, d.ID, d.JobID, d.ActorID, d.Quantity, d.DeliveredAt)
	if err != nil {
		r.logger.Error("Failed to record delivery", "job_id", d.JobID.String(), "error", err)
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// Deliveries returns a job's delivery history in chronological order
func (r *JobRepository) Deliveries(ctx context.Context, jobID uuid.UUID) ([]job.Delivery, error) {
	query := `
		SELECT id, job_id, actor_id, quantity, delivered_at
		FROM deliveries
		WHERE job_id = $1
		ORDER BY delivered_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, jobID)
	if err != nil {
		r.logger.Error("Failed to get deliveries", "job_id", jobID.String(), "error", err)
		return nil, fmt.Errorf("failed to get deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []job.Delivery
	for rows.Next() {
		var d job.Delivery
		if err := rows.Scan(&d.ID, &d.JobID, &d.ActorID, &d.Quantity, &d.DeliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over deliveries: %w", err)
	}
	return deliveries, nil
}
