package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Match describes the cargo attributes used to find an applicable open job.
type Match struct {
	Cargo             string
	SourceZoneIDs     []uuid.UUID // zones the event source resolved into
	DestinationZoneIDs []uuid.UUID
	RoleplayMode      bool // actor's current mode; roleplay-only jobs need true
	At                time.Time
}

// Repository defines delivery-job persistence operations. Quantity updates
// must go through LockForUpdate + AcceptQuantity inside one transaction so
// concurrent writers to the same job row serialize.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*DeliveryJob, error)

	// FindOpen returns open, unexpired jobs matching the given cargo
	// attributes, oldest first. Roleplay-only jobs are excluded unless the
	// match carries roleplay mode.
	FindOpen(ctx context.Context, match Match) ([]DeliveryJob, error)

	// List returns jobs for the gateway, newest first.
	List(ctx context.Context, limit int) ([]DeliveryJob, error)

	// LockForUpdate acquires a row lock on the job and returns its state at
	// lock time. Must run inside a transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*DeliveryJob, error)

	// AcceptQuantity bumps quantity_fulfilled by accepted. The caller must
	// hold the row lock and have computed accepted against the locked state.
	AcceptQuantity(ctx context.Context, id uuid.UUID, accepted int64) error

	// MarkCompleted sets the completion marker if and only if it is still
	// unset. Returns true when this call performed the transition.
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// RecordDelivery appends one immutable delivery record.
	RecordDelivery(ctx context.Context, d *Delivery) error

	// Deliveries returns a job's delivery history in chronological order.
	Deliveries(ctx context.Context, jobID uuid.UUID) ([]Delivery, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrJobNotFound indicates a missing job
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e ErrJobNotFound) Error() string {
	return "delivery job not found: " + e.JobID.String()
}
