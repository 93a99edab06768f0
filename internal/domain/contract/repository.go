package contract

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines haul contract persistence. RecordProgress is the
// idempotency gate: it reports whether the progress update performed the
// delivered transition, and only that caller credits the payment.
type Repository interface {
	// Upsert creates the contract on first sight of its key; repeated signs
	// of the same key are no-ops.
	Upsert(ctx context.Context, c *HaulContract) error

	GetByKey(ctx context.Context, contractKey string) (*HaulContract, error)

	// RecordProgress sets finished_amount to the running counter reported by
	// the game and flips delivered when the counter first reaches the
	// contracted amount. Returns (completed, contract): completed is true
	// only for the call that performed the flip.
	RecordProgress(ctx context.Context, contractKey string, finishedAmount int64) (bool, *HaulContract, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrContractNotFound indicates progress against an unknown contract key
type ErrContractNotFound struct {
	ContractKey string
}

func (e ErrContractNotFound) Error() string {
	return "haul contract not found: " + e.ContractKey
}
