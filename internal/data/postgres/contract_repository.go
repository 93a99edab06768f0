package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/convoy-settlement-engine/internal/domain/contract"
	"github.com/convoy-settlement-engine/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const contractColumns = `id, contract_key, actor_id, amount, finished_amount, payment, delivered, signed_at, updated_at`

// ContractRepository implements the contract.Repository interface for PostgreSQL
type ContractRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewContractRepository creates a new PostgreSQL haul contract repository
func NewContractRepository(logger *slog.Logger, db *persistence.PostgresDB) contract.Repository {
	return &ContractRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the delivered flip and
// the payment posting share one atomic unit.
func (r *ContractRepository) WithTx(tx pgx.Tx) contract.Repository {
	return &ContractRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanContract(row pgx.Row) (*contract.HaulContract, error) {
	var c contract.HaulContract
	err := row.Scan(
		&c.ID, &c.ContractKey, &c.ActorID, &c.Amount, &c.FinishedAmount, &c.Payment,
		&c.Delivered, &c.SignedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert creates the contract on first sight of its key. Re-signing the same
// key is a no-op, which makes contract-signed events replay-safe.
func (r *ContractRepository) Upsert(ctx context.Context, c *contract.HaulContract) error {
	query := `
		INSERT INTO haul_contracts (id, contract_key, actor_id, amount, finished_amount, payment, delivered, signed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (contract_key) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID, c.ContractKey, c.ActorID, c.Amount, c.FinishedAmount, c.Payment, c.Delivered, c.SignedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert haul contract", "contract_key", c.ContractKey, "error", err)
		return fmt.Errorf("failed to upsert haul contract: %w", err)
	}
	return nil
}

// GetByKey retrieves a contract by its external key
func (r *ContractRepository) GetByKey(ctx context.Context, contractKey string) (*contract.HaulContract, error) {
	query := `SELECT ` + contractColumns + ` FROM haul_contracts WHERE contract_key = $1`

	c, err := scanContract(r.querier.QueryRow(ctx, query, contractKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contract.ErrContractNotFound{ContractKey: contractKey}
		}
		r.logger.Error("Failed to get haul contract", "contract_key", contractKey, "error", err)
		return nil, fmt.Errorf("failed to get haul contract: %w", err)
	}
	return c, nil
}

// RecordProgress sets finished_amount to the reported running counter and
// flips delivered when the counter first reaches the contracted amount. The
// check-and-set WHERE clause makes the flip happen on exactly one call no
// matter how often the event is replayed.
func (r *ContractRepository) RecordProgress(ctx context.Context, contractKey string, finishedAmount int64) (bool, *contract.HaulContract, error) {
	update := `
		UPDATE haul_contracts
		SET finished_amount = GREATEST(finished_amount, $1), updated_at = NOW()
		WHERE contract_key = $2
	`
	result, err := r.querier.Exec(ctx, update, finishedAmount, contractKey)
	if err != nil {
		r.logger.Error("Failed to record contract progress", "contract_key", contractKey, "error", err)
		return false, nil, fmt.Errorf("failed to record contract progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil, contract.ErrContractNotFound{ContractKey: contractKey}
	}

	flip := `
		UPDATE haul_contracts
		SET delivered = TRUE, updated_at = NOW()
		WHERE contract_key = $1 AND NOT delivered AND finished_amount >= amount
	`
	flipResult, err := r.querier.Exec(ctx, flip, contractKey)
	if err != nil {
		r.logger.Error("Failed to flip contract delivered flag", "contract_key", contractKey, "error", err)
		return false, nil, fmt.Errorf("failed to flip contract delivered flag: %w", err)
	}

	c, err := r.GetByKey(ctx, contractKey)
	if err != nil {
		return false, nil, err
	}
	return flipResult.RowsAffected() == 1, c, nil
}
