package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines ledger persistence operations. Post is the only
// sanctioned mutator of account balances.
type Repository interface {
	// Post atomically creates one journal entry with its ledger entries and
	// applies the balance deltas to every referenced account, creating
	// accounts lazily on first reference. Unbalanced postings are rejected
	// before any write.
	Post(ctx context.Context, posting Posting) (*JournalEntry, error)

	// Balance returns the current balance of the account matching ref,
	// or 0 when the account does not exist yet.
	Balance(ctx context.Context, ref AccountRef) (int64, error)

	// TreasuryBalance returns the Treasury Fund balance used to throttle
	// subsidy generosity.
	TreasuryBalance(ctx context.Context) (int64, error)

	// Account resolves an account by its natural key without creating it.
	// Returns nil when the account does not exist.
	Account(ctx context.Context, ref AccountRef) (*Account, error)

	// AccountsForOwner lists all accounts owned by the given actor.
	AccountsForOwner(ctx context.Context, ownerID uuid.UUID) ([]Account, error)

	// Statement returns the most recent ledger history of an account, newest
	// first, up to limit rows.
	Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]StatementLine, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates a missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "ledger account not found: " + e.AccountID.String()
}
