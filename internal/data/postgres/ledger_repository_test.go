package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoy-settlement-engine/internal/domain/ledger"
)

func TestLedgerRepository_PostRejectsInvalidPostings(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// no DB expectations: an invalid posting must be rejected before any write
	repo := &LedgerRepository{querier: mock, logger: logger}
	actorID := uuid.New()

	t.Run("unbalanced", func(t *testing.T) {
		posting := ledger.Posting{
			Date:        time.Now(),
			Description: "unbalanced grant",
			ActorID:     &actorID,
			Lines: []ledger.Line{
				{Account: ledger.TreasuryRef(), Credit: 100},
				{Account: ledger.ActorCashRef(actorID), Credit: 90},
			},
		}

		_, err := repo.Post(ctx, posting)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative amount", func(t *testing.T) {
		posting := ledger.Posting{
			Date:        time.Now(),
			Description: "negative line",
			Lines: []ledger.Line{
				{Account: ledger.TreasuryRef(), Debit: -100},
				{Account: ledger.ActorCashRef(actorID), Credit: -100},
			},
		}

		_, err := repo.Post(ctx, posting)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no lines", func(t *testing.T) {
		posting := ledger.Posting{Date: time.Now(), Description: "empty"}

		_, err := repo.Post(ctx, posting)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_Balance(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}

	query := `
		SELECT balance
		FROM accounts
		WHERE book = \$1 AND name = \$2 AND owner_id IS NOT DISTINCT FROM \$3
	`

	t.Run("existing account", func(t *testing.T) {
		ref := ledger.TreasuryRef()
		mock.ExpectQuery(query).
			WithArgs(ref.Book, ref.Name, ref.OwnerID).
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(int64(5_000_000)))

		balance, err := repo.Balance(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, int64(5_000_000), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("account not created yet reads as zero", func(t *testing.T) {
		actorID := uuid.New()
		ref := ledger.ActorSavingsRef(actorID)
		mock.ExpectQuery(query).
			WithArgs(ref.Book, ref.Name, ref.OwnerID).
			WillReturnError(pgx.ErrNoRows)

		balance, err := repo.Balance(ctx, ref)
		require.NoError(t, err)
		assert.Zero(t, balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLedgerRepository_Statement(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &LedgerRepository{querier: mock, logger: logger}
	accountID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "entry_date", "description", "debit", "credit"}).
		AddRow(uuid.New(), now, "Freight payment", int64(0), int64(40000)).
		AddRow(uuid.New(), now.Add(-time.Hour), "Cargo dump penalty", int64(2500), int64(0))

	mock.ExpectQuery(`SELECT j.id, j.entry_date, j.description, e.debit, e.credit`).
		WithArgs(accountID, 20).
		WillReturnRows(rows)

	statement, err := repo.Statement(ctx, accountID, 20)
	require.NoError(t, err)
	require.Len(t, statement, 2)
	assert.Equal(t, "Freight payment", statement[0].Description)
	assert.Equal(t, int64(40000), statement[0].Credit)
	assert.Equal(t, int64(2500), statement[1].Debit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
