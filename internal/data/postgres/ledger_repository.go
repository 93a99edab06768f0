// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the settlement engine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
	"github.com/convoy-settlement-engine/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// Post is the only code path that mutates account balances; everything it
// writes lands in one transaction.
type LedgerRepository struct {
	querier persistence.Querier // *pgxpool.Pool or pgx.Tx
	db      *persistence.PostgresDB
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		db:      db,
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. Post then runs inside the
// caller's transaction instead of opening its own.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		db:      nil,
		logger:  r.logger,
	}
}

// Post validates the posting, then atomically creates the journal entry, its
// ledger entries, the balance updates of every referenced account and the
// archive outbox row. An unbalanced posting is rejected before any write.
func (r *LedgerRepository) Post(ctx context.Context, posting ledger.Posting) (*ledger.JournalEntry, error) {
	if err := posting.Validate(); err != nil {
		return nil, err
	}

	if r.db != nil {
		var journal *ledger.JournalEntry
		err := r.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			var txErr error
			journal, txErr = r.postInTx(ctx, tx, posting)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		return journal, nil
	}

	// Already transaction-bound; the caller owns atomicity.
	tx, ok := r.querier.(pgx.Tx)
	if !ok {
		return nil, errors.New("ledger repository bound to neither pool nor transaction")
	}
	return r.postInTx(ctx, tx, posting)
}

func (r *LedgerRepository) postInTx(ctx context.Context, tx pgx.Tx, posting ledger.Posting) (*ledger.JournalEntry, error) {
	accounts, err := r.lockAccounts(ctx, tx, posting.Lines)
	if err != nil {
		return nil, err
	}

	journal := &ledger.JournalEntry{
		ID:          uuid.New(),
		EntryDate:   posting.Date,
		Description: posting.Description,
		ActorID:     posting.ActorID,
		CreatedAt:   time.Now(),
	}

	insertJournal := `
		INSERT INTO journal_entries (id, entry_date, description, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertJournal,
		journal.ID, journal.EntryDate, journal.Description, journal.ActorID, journal.CreatedAt,
	); err != nil {
		r.logger.Error("Failed to insert journal entry", "error", err)
		return nil, fmt.Errorf("failed to insert journal entry: %w", err)
	}

	insertLine := `
		INSERT INTO ledger_entries (id, journal_id, account_id, debit, credit)
		VALUES ($1, $2, $3, $4, $5)
	`
	updateBalance := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	lines := make([]ledger.LedgerEntry, 0, len(posting.Lines))
	for _, line := range posting.Lines {
		acc := accounts[refKey(line.Account)]
		entry := ledger.LedgerEntry{
			ID:        uuid.New(),
			JournalID: journal.ID,
			AccountID: acc.ID,
			Debit:     line.Debit,
			Credit:    line.Credit,
		}
		if _, err := tx.Exec(ctx, insertLine,
			entry.ID, entry.JournalID, entry.AccountID, entry.Debit, entry.Credit,
		); err != nil {
			r.logger.Error("Failed to insert ledger entry", "account_id", acc.ID.String(), "error", err)
			return nil, fmt.Errorf("failed to insert ledger entry: %w", err)
		}

		delta := acc.Type.BalanceDelta(line.Debit, line.Credit)
		if _, err := tx.Exec(ctx, updateBalance, delta, acc.ID); err != nil {
			r.logger.Error("Failed to update account balance", "account_id", acc.ID.String(), "error", err)
			return nil, fmt.Errorf("failed to update account balance: %w", err)
		}
		lines = append(lines, entry)
	}

	message, err := outbox.NewMessage(journal, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive outbox message: %w", err)
	}
	insertOutbox := `
		INSERT INTO journal_outbox (journal_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, insertOutbox,
		message.JournalID, message.Payload, message.Status, message.Attempts, message.CreatedAt,
	); err != nil {
		r.logger.Error("Failed to insert archive outbox row", "journal_id", journal.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to insert archive outbox row: %w", err)
	}

	return journal, nil
}

// lockAccounts resolves every distinct account ref to a locked account row,
// creating missing accounts on first reference. Refs are locked in a stable
// order so concurrent postings touching the same accounts cannot deadlock.
func (r *LedgerRepository) lockAccounts(ctx context.Context, tx pgx.Tx, lines []ledger.Line) (map[string]*ledger.Account, error) {
	refs := make(map[string]ledger.AccountRef)
	for _, line := range lines {
		refs[refKey(line.Account)] = line.Account
	}

	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	accounts := make(map[string]*ledger.Account, len(refs))
	for _, k := range keys {
		acc, err := r.lockOrCreateAccount(ctx, tx, refs[k])
		if err != nil {
			return nil, err
		}
		accounts[k] = acc
	}
	return accounts, nil
}

func (r *LedgerRepository) lockOrCreateAccount(ctx context.Context, tx pgx.Tx, ref ledger.AccountRef) (*ledger.Account, error) {
	selectForUpdate := `
		SELECT id, type, book, owner_id, name, balance, created_at, updated_at
		FROM accounts
		WHERE book = $1 AND name = $2 AND owner_id IS NOT DISTINCT FROM $3
		FOR UPDATE
	`

	var acc ledger.Account
	err := tx.QueryRow(ctx, selectForUpdate, ref.Book, ref.Name, ref.OwnerID).Scan(
		&acc.ID, &acc.Type, &acc.Book, &acc.OwnerID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err == nil {
		return &acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		r.logger.Error("Failed to lock account", "name", ref.Name, "error", err)
		return nil, fmt.Errorf("failed to lock account %q: %w", ref.Name, err)
	}

	// First reference: create lazily. ON CONFLICT covers a concurrent
	// creator; in that case re-select takes the lock on the winner's row.
	insert := `
		INSERT INTO accounts (id, type, book, owner_id, name, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
		ON CONFLICT (book, name, owner_key) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, uuid.New(), ref.Type, ref.Book, ref.OwnerID, ref.Name); err != nil {
		r.logger.Error("Failed to create account", "name", ref.Name, "error", err)
		return nil, fmt.Errorf("failed to create account %q: %w", ref.Name, err)
	}

	err = tx.QueryRow(ctx, selectForUpdate, ref.Book, ref.Name, ref.OwnerID).Scan(
		&acc.ID, &acc.Type, &acc.Book, &acc.OwnerID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to lock account after create", "name", ref.Name, "error", err)
		return nil, fmt.Errorf("failed to lock account %q after create: %w", ref.Name, err)
	}
	return &acc, nil
}

// Balance returns the account balance, or 0 when the account has never been
// referenced by a posting.
func (r *LedgerRepository) Balance(ctx context.Context, ref ledger.AccountRef) (int64, error) {
	query := `
		SELECT balance
		FROM accounts
		WHERE book = $1 AND name = $2 AND owner_id IS NOT DISTINCT FROM $3
	`

	var balance int64
	err := r.querier.QueryRow(ctx, query, ref.Book, ref.Name, ref.OwnerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		r.logger.Error("Failed to get account balance", "name", ref.Name, "error", err)
		return 0, fmt.Errorf("failed to get account balance: %w", err)
	}
	return balance, nil
}

// TreasuryBalance returns the Treasury Fund balance.
func (r *LedgerRepository) TreasuryBalance(ctx context.Context) (int64, error) {
	return r.Balance(ctx, ledger.TreasuryRef())
}

// Account resolves an account by its natural key without creating it.
func (r *LedgerRepository) Account(ctx context.Context, ref ledger.AccountRef) (*ledger.Account, error) {
	query := `
		SELECT id, type, book, owner_id, name, balance, created_at, updated_at
		FROM accounts
		WHERE book = $1 AND name = $2 AND owner_id IS NOT DISTINCT FROM $3
	`

	var acc ledger.Account
	err := r.querier.QueryRow(ctx, query, ref.Book, ref.Name, ref.OwnerID).Scan(
		&acc.ID, &acc.Type, &acc.Book, &acc.OwnerID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account", "name", ref.Name, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &acc, nil
}

// AccountsForOwner lists all accounts owned by the given actor.
func (r *LedgerRepository) AccountsForOwner(ctx context.Context, ownerID uuid.UUID) ([]ledger.Account, error) {
	query := `
		SELECT id, type, book, owner_id, name, balance, created_at, updated_at
		FROM accounts
		WHERE owner_id = $1
		ORDER BY name ASC
	`

	rows, err := r.querier.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("Failed to list accounts for owner", "owner_id", ownerID.String(), "error", err)
		return nil, fmt.Errorf("failed to list accounts for owner: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var acc ledger.Account
		if err := rows.Scan(
			&acc.ID, &acc.Type, &acc.Book, &acc.OwnerID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}
	return accounts, nil
}

// Statement returns the most recent ledger history of an account, newest first.
func (r *LedgerRepository) Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.StatementLine, error) {
	query := `
		SELECT j.id, j.entry_date, j.description, e.debit, e.credit
		FROM ledger_entries e
		JOIN journal_entries j ON j.id = e.journal_id
		WHERE e.account_id = $1
		ORDER BY j.entry_date DESC, j.created_at DESC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to get account statement", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account statement: %w", err)
	}
	defer rows.Close()

	var statement []ledger.StatementLine
	for rows.Next() {
		var line ledger.StatementLine
		if err := rows.Scan(&line.JournalID, &line.EntryDate, &line.Description, &line.Debit, &line.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan statement line: %w", err)
		}
		statement = append(statement, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over statement: %w", err)
	}
	return statement, nil
}

func refKey(ref ledger.AccountRef) string {
	owner := ""
	if ref.OwnerID != nil {
		owner = ref.OwnerID.String()
	}
	return string(ref.Book) + "/" + ref.Name + "/" + owner
}
