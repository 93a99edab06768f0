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

	"github.com/convoy-settlement-engine/internal/domain/job"
)

var jobColumnNames = []string{
	"id", "cargo", "source_zone_id", "destination_zone_id", "quantity_requested",
	"quantity_fulfilled", "completion_bonus", "bonus_multiplier", "roleplay_only",
	"expires_at", "completed_at", "created_at",
}

func TestJobRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JobRepository{querier: mock, logger: logger}
	jobID := uuid.New()
	now := time.Now()

	t.Run("success", func(t *testing.T) {
		cargo := "steel"
		rows := pgxmock.NewRows(jobColumnNames).
			AddRow(jobID, &cargo, (*uuid.UUID)(nil), (*uuid.UUID)(nil), int64(200),
				int64(50), int64(10000), 1.5, false,
				now.Add(time.Hour), (*time.Time)(nil), now)

		mock.ExpectQuery(`SELECT .* FROM delivery_jobs WHERE id = \$1`).
			WithArgs(jobID).
			WillReturnRows(rows)

		j, err := repo.GetByID(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, jobID, j.ID)
		require.NotNil(t, j.Cargo)
		assert.Equal(t, "steel", *j.Cargo)
		assert.Equal(t, int64(150), j.Remaining())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM delivery_jobs WHERE id = \$1`).
			WithArgs(jobID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, jobID)
		var notFound job.ErrJobNotFound
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, jobID, notFound.JobID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepository_AcceptQuantity(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JobRepository{querier: mock, logger: logger}
	jobID := uuid.New()

	query := `
		UPDATE delivery_jobs
		SET quantity_fulfilled = quantity_fulfilled \+ \$1
		WHERE id = \$2 AND quantity_fulfilled \+ \$1 <= quantity_requested
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(int64(30), jobID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.AcceptQuantity(ctx, jobID, 30)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("would exceed requested quantity", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(int64(500), jobID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.AcceptQuantity(ctx, jobID, 500)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exceed requested quantity")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepository_MarkCompleted(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JobRepository{querier: mock, logger: logger}
	jobID := uuid.New()
	at := time.Now()

	query := `
		UPDATE delivery_jobs
		SET completed_at = \$1
		WHERE id = \$2 AND completed_at IS NULL
	`

	t.Run("first completion wins", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(at, jobID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		won, err := repo.MarkCompleted(ctx, jobID, at)
		require.NoError(t, err)
		assert.True(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(at, jobID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		won, err := repo.MarkCompleted(ctx, jobID, at)
		require.NoError(t, err)
		assert.False(t, won)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobRepository_RecordDelivery(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &JobRepository{querier: mock, logger: logger}

	d := &job.Delivery{
		ID:          uuid.New(),
		JobID:       uuid.New(),
		ActorID:     uuid.New(),
		Quantity:    25,
		DeliveredAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO deliveries \(id, job_id, actor_id, quantity, delivered_at\)`).
		WithArgs(d.ID, d.JobID, d.ActorID, d.Quantity, d.DeliveredAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.RecordDelivery(ctx, d)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
