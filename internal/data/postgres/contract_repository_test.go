package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoy-settlement-engine/internal/domain/contract"
)

var contractColumnNames = []string{
	"id", "contract_key", "actor_id", "amount", "finished_amount", "payment",
	"delivered", "signed_at", "updated_at",
}

func TestContractRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ContractRepository{querier: mock, logger: logger}

	c := &contract.HaulContract{
		ID:          uuid.New(),
		ContractKey: "contract-42",
		ActorID:     uuid.New(),
		Amount:      1000,
		Payment:     250000,
		SignedAt:    time.Now(),
		UpdatedAt:   time.Now(),
	}

	t.Run("insert", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO haul_contracts`).
			WithArgs(c.ID, c.ContractKey, c.ActorID, c.Amount, c.FinishedAmount, c.Payment, c.Delivered, c.SignedAt, c.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Upsert(ctx, c)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replayed signing is a no-op", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO haul_contracts`).
			WithArgs(c.ID, c.ContractKey, c.ActorID, c.Amount, c.FinishedAmount, c.Payment, c.Delivered, c.SignedAt, c.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := repo.Upsert(ctx, c)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContractRepository_RecordProgress(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ContractRepository{querier: mock, logger: logger}
	contractKey := "contract-42"
	actorID := uuid.New()
	now := time.Now()

	progressQuery := `
		UPDATE haul_contracts
		SET finished_amount = GREATEST\(finished_amount, \$1\), updated_at = NOW\(\)
		WHERE contract_key = \$2
	`
	flipQuery := `
		UPDATE haul_contracts
		SET delivered = TRUE, updated_at = NOW\(\)
		WHERE contract_key = \$1 AND NOT delivered AND finished_amount >= amount
	`
	selectQuery := `SELECT .* FROM haul_contracts WHERE contract_key = \$1`

	t.Run("progress without completion", func(t *testing.T) {
		mock.ExpectExec(progressQuery).
			WithArgs(int64(400), contractKey).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(flipQuery).
			WithArgs(contractKey).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(selectQuery).
			WithArgs(contractKey).
			WillReturnRows(pgxmock.NewRows(contractColumnNames).
				AddRow(uuid.New(), contractKey, actorID, int64(1000), int64(400), int64(250000), false, now, now))

		completed, c, err := repo.RecordProgress(ctx, contractKey, 400)
		require.NoError(t, err)
		assert.False(t, completed)
		assert.Equal(t, int64(400), c.FinishedAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("counter reaches contracted amount exactly once", func(t *testing.T) {
		mock.ExpectExec(progressQuery).
			WithArgs(int64(1000), contractKey).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(flipQuery).
			WithArgs(contractKey).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(selectQuery).
			WithArgs(contractKey).
			WillReturnRows(pgxmock.NewRows(contractColumnNames).
				AddRow(uuid.New(), contractKey, actorID, int64(1000), int64(1000), int64(250000), true, now, now))

		completed, c, err := repo.RecordProgress(ctx, contractKey, 1000)
		require.NoError(t, err)
		assert.True(t, completed)
		assert.True(t, c.Delivered)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown contract", func(t *testing.T) {
		mock.ExpectExec(progressQuery).
			WithArgs(int64(10), "missing").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		_, _, err := repo.RecordProgress(ctx, "missing", 10)
		var notFound contract.ErrContractNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
