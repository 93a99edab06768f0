// Package distributor splits a completed job's completion bonus across the
// actors that filled it, proportionally to their counted contributions.
package distributor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/convoy-settlement-engine/internal/domain/job"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/settlement/notify"
)

// share is one actor's counted contribution to a completed job.
type share struct {
	actorID  uuid.UUID
	quantity int64
}

// Distributor pays completion rewards from the treasury. It runs inside the
// job-completion transaction and therefore fires at most once per job.
type Distributor struct {
	jobs     job.Repository
	ledger   ledger.Repository
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewDistributor creates a completion reward distributor.
func NewDistributor(logger *slog.Logger, jobs job.Repository, ledgerRepo ledger.Repository, notifier notify.Notifier) *Distributor {
	return &Distributor{
		jobs:     jobs,
		ledger:   ledgerRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Distribute walks the job's delivery history in chronological order, counts
// each delivery only up to the quantity the job requested, and posts each
// actor floor(actorQuantity / totalCounted * completionBonus) from the
// treasury. Zero rewards are skipped.
func (d *Distributor) Distribute(ctx context.Context, tx pgx.Tx, j *job.DeliveryJob) error {
	if j.CompletionBonus <= 0 {
		return nil
	}

	deliveries, err := d.jobs.WithTx(tx).Deliveries(ctx, j.ID)
	if err != nil {
		return fmt.Errorf("failed to load delivery history: %w", err)
	}

	shares, totalCounted := countShares(deliveries, j.QuantityRequested)
	if totalCounted == 0 {
		return nil
	}

	ledgerTx := d.ledger.WithTx(tx)
	for _, s := range shares {
		reward := s.quantity * j.CompletionBonus / totalCounted
		if reward == 0 {
			continue
		}

		posting := ledger.TreasuryGrant(time.Now(), fmt.Sprintf("completion bonus for job %s", j.ID), s.actorID, reward, ledger.AccountJobBonusExpense)
		if _, err := ledgerTx.Post(ctx, posting); err != nil {
			return fmt.Errorf("failed to post completion reward: %w", err)
		}

		d.notifier.Notify(s.actorID, fmt.Sprintf("Delivery job complete! You earned a %d bonus for hauling %d units.", reward, s.quantity))
		d.logger.Info("Completion reward posted",
			"job_id", j.ID.String(),
			"actor_id", s.actorID.String(),
			"quantity", s.quantity,
			"reward", reward)
	}
	return nil
}

// countShares folds the chronological delivery history into per-actor counted
// quantities, capping the running total at requested so late overshoot never
// dilutes earlier contributors. First-contribution order is preserved.
func countShares(deliveries []job.Delivery, requested int64) ([]share, int64) {
	index := make(map[uuid.UUID]int)
	var shares []share
	var total int64

	for _, del := range deliveries {
		if total >= requested {
			break
		}
		counted := del.Quantity
		if total+counted > requested {
			counted = requested - total
		}
		total += counted

		if i, ok := index[del.ActorID]; ok {
			shares[i].quantity += counted
		} else {
			index[del.ActorID] = len(shares)
			shares = append(shares, share{actorID: del.ActorID, quantity: counted})
		}
	}
	return shares, total
}
