// Package coordinator serializes concurrent deliveries against shared
// delivery jobs. All quantity accounting happens under a row lock inside one
// transaction, so "first N units win" stays exact no matter how many
// processors race.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/convoy-settlement-engine/internal/domain/job"
)

// TxRunner runs a function inside one database transaction. Satisfied by
// persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// CompletionDistributor hands out completion rewards when a job fills up. It
// runs inside the coordinator's transaction so the completion transition and
// its rewards commit or roll back together.
type CompletionDistributor interface {
	Distribute(ctx context.Context, tx pgx.Tx, j *job.DeliveryJob) error
}

// Request is one delivery attempt against the job system.
type Request struct {
	ActorID      uuid.UUID
	RoleplayMode bool
	Match        job.Match
	Quantity     int64
	UnitPayment  int64
	Subsidy      int64 // resolver outcome for this delivery
	At           time.Time
}

// Application is the outcome of a delivery attempt. A nil Job means no open
// job matched; Reward then equals the incoming subsidy unchanged.
type Application struct {
	Job       *job.DeliveryJob
	Accepted  int64
	Reward    int64
	Completed bool
}

// Coordinator applies deliveries to jobs with row-level serialization.
type Coordinator struct {
	db          TxRunner
	jobs        job.Repository
	distributor CompletionDistributor
	logger      *slog.Logger
}

// NewCoordinator creates a job fulfillment coordinator.
func NewCoordinator(logger *slog.Logger, db TxRunner, jobs job.Repository, distributor CompletionDistributor) *Coordinator {
	return &Coordinator{
		db:          db,
		jobs:        jobs,
		distributor: distributor,
		logger:      logger,
	}
}

// ApplyDelivery finds an open job matching the request and applies as much of
// the quantity as the job still wants, inside one transaction holding the job
// row lock. A saturated job accepts zero; that is a valid outcome, not an
// error. When this delivery fills the job, the completion marker flips and the
// distributor fires exactly once, in the same transaction.
func (c *Coordinator) ApplyDelivery(ctx context.Context, req Request) (*Application, error) {
	candidates, err := c.jobs.FindOpen(ctx, req.Match)
	if err != nil {
		return nil, fmt.Errorf("failed to find open jobs: %w", err)
	}
	if len(candidates) == 0 {
		return &Application{Reward: req.Subsidy}, nil
	}

	app := &Application{}
	err = c.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		jobs := c.jobs.WithTx(tx)

		locked, err := jobs.LockForUpdate(ctx, candidates[0].ID)
		if err != nil {
			return fmt.Errorf("failed to lock job row: %w", err)
		}
		app.Job = locked

		if !locked.Open(req.At) {
			// Lost the race; the job filled or expired between lookup and lock.
			return nil
		}

		accepted := req.Quantity
		if remaining := locked.Remaining(); accepted > remaining {
			accepted = remaining
		}
		if accepted <= 0 {
			return nil
		}
		app.Accepted = accepted

		if err := jobs.AcceptQuantity(ctx, locked.ID, accepted); err != nil {
			return fmt.Errorf("failed to accept quantity: %w", err)
		}
		if err := jobs.RecordDelivery(ctx, &job.Delivery{
			ID:          uuid.New(),
			JobID:       locked.ID,
			ActorID:     req.ActorID,
			Quantity:    accepted,
			DeliveredAt: req.At,
		}); err != nil {
			return fmt.Errorf("failed to record delivery: %w", err)
		}
		locked.QuantityFulfilled += accepted

		if locked.Remaining() == 0 {
			completed, err := jobs.MarkCompleted(ctx, locked.ID, req.At)
			if err != nil {
				return fmt.Errorf("failed to mark job completed: %w", err)
			}
			if completed {
				app.Completed = true
				if err := c.distributor.Distribute(ctx, tx, locked); err != nil {
					return fmt.Errorf("failed to distribute completion rewards: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	app.Reward = c.reward(app, req)

	if app.Accepted > 0 {
		c.logger.Info("Delivery applied to job",
			"job_id", app.Job.ID.String(),
			"actor_id", req.ActorID.String(),
			"accepted", app.Accepted,
			"completed", app.Completed)
	}
	return app, nil
}

// reward computes the subsidy component credited for this delivery. A matched
// job replaces the generic subsidy with the larger of the two; it never adds
// on top. Roleplay-restricted jobs matched in roleplay mode use the blended
// formula instead.
func (c *Coordinator) reward(app *Application, req Request) int64 {
	if app.Job == nil || app.Accepted == 0 {
		return req.Subsidy
	}

	if app.Job.RoleplayOnly && req.RoleplayMode {
		blended := float64(req.Subsidy)*1.5 + float64(app.Accepted*req.UnitPayment)*0.5
		return int64(math.Floor(blended))
	}

	jobBonus := int64(math.Floor(float64(app.Accepted) * app.Job.BonusMultiplier * float64(req.UnitPayment)))
	if jobBonus > req.Subsidy {
		return jobBonus
	}
	return req.Subsidy
}
