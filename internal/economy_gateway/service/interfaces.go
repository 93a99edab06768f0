package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/domain/job"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
	"github.com/convoy-settlement-engine/internal/domain/subsidy"
)

// ActorService defines the interface for actor read operations
type ActorService interface {
	// GetActorByID retrieves an actor by its ID
	// Returns actor.ErrActorNotFound if the actor doesn't exist
	GetActorByID(ctx context.Context, id uuid.UUID) (*actor.Actor, error)

	// GetActorAccounts lists all ledger accounts owned by an actor
	GetActorAccounts(ctx context.Context, actorID uuid.UUID) ([]ledger.Account, error)

	// GetActorHistory retrieves paginated archived journal entries for an actor,
	// newest first
	GetActorHistory(ctx context.Context, actorID uuid.UUID, page, perPage int) ([]*outbox.ArchiveRecord, error)
}

// LedgerService defines the interface for ledger read operations
type LedgerService interface {
	// GetStatement retrieves the most recent history of an account, newest first
	GetStatement(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.StatementLine, error)

	// GetTreasuryBalance returns the current Treasury Fund balance
	GetTreasuryBalance(ctx context.Context) (int64, error)
}

// JobService defines the interface for delivery-job read operations
type JobService interface {
	// GetJobByID retrieves a delivery job by its ID
	// Returns job.ErrJobNotFound if the job doesn't exist
	GetJobByID(ctx context.Context, id uuid.UUID) (*job.DeliveryJob, error)

	// ListJobs retrieves jobs, newest first, up to limit
	ListJobs(ctx context.Context, limit int) ([]job.DeliveryJob, error)

	// GetJobDeliveries retrieves a job's delivery history in chronological order
	GetJobDeliveries(ctx context.Context, jobID uuid.UUID) ([]job.Delivery, error)
}

// SubsidyService defines the interface for subsidy-rule and zone read operations
type SubsidyService interface {
	// ListRules retrieves all subsidy rules, active or not
	ListRules(ctx context.Context) ([]subsidy.Rule, error)

	// ListZones retrieves the full zone registry
	ListZones(ctx context.Context) ([]subsidy.Zone, error)

	// GetZoneByID retrieves one zone by its ID
	// Returns nil if the zone doesn't exist
	GetZoneByID(ctx context.Context, id uuid.UUID) (*subsidy.Zone, error)
}
