package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
)

type MockActorRepository struct {
	mock.Mock
}

func (m *MockActorRepository) GetByID(ctx context.Context, id uuid.UUID) (*actor.Actor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actor.Actor), args.Error(1)
}

func (m *MockActorRepository) GetByCharacterID(ctx context.Context, characterID string) (*actor.Actor, error) {
	args := m.Called(ctx, characterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actor.Actor), args.Error(1)
}

func (m *MockActorRepository) GetByPlayerID(ctx context.Context, playerID int64) (*actor.Actor, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*actor.Actor), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Post(ctx context.Context, posting ledger.Posting) (*ledger.JournalEntry, error) {
	args := m.Called(ctx, posting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.JournalEntry), args.Error(1)
}

func (m *MockLedgerRepository) Balance(ctx context.Context, ref ledger.AccountRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) TreasuryBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) Account(ctx context.Context, ref ledger.AccountRef) (*ledger.Account, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockLedgerRepository) AccountsForOwner(ctx context.Context, ownerID uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockLedgerRepository) Statement(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.StatementLine, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.StatementLine), args.Error(1)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	args := m.Called(tx)
	return args.Get(0).(ledger.Repository)
}

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Archive(ctx context.Context, record *outbox.ArchiveRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockArchiveRepository) GetByJournalID(ctx context.Context, journalID uuid.UUID) (*outbox.ArchiveRecord, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.ArchiveRecord), args.Error(1)
}

func (m *MockArchiveRepository) GetByActorID(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*outbox.ArchiveRecord, error) {
	args := m.Called(ctx, actorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.ArchiveRecord), args.Error(1)
}

func TestActorService_GetActorAccounts(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		actorRepo := new(MockActorRepository)
		ledgerRepo := new(MockLedgerRepository)
		archiveRepo := new(MockArchiveRepository)
		svc := NewActorService(actorRepo, ledgerRepo, archiveRepo)

		actorRepo.On("GetByID", ctx, actorID).Return(&actor.Actor{ID: actorID}, nil)
		accounts := []ledger.Account{
			{ID: uuid.New(), Name: ledger.AccountActorCash, Balance: 3200},
		}
		ledgerRepo.On("AccountsForOwner", ctx, actorID).Return(accounts, nil)

		got, err := svc.GetActorAccounts(ctx, actorID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(3200), got[0].Balance)

		actorRepo.AssertExpectations(t)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("ActorNotFound", func(t *testing.T) {
		actorRepo := new(MockActorRepository)
		ledgerRepo := new(MockLedgerRepository)
		archiveRepo := new(MockArchiveRepository)
		svc := NewActorService(actorRepo, ledgerRepo, archiveRepo)

		actorRepo.On("GetByID", ctx, actorID).Return(nil, actor.ErrActorNotFound)

		got, err := svc.GetActorAccounts(ctx, actorID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, actor.ErrActorNotFound)

		ledgerRepo.AssertNotCalled(t, "AccountsForOwner", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		actorRepo := new(MockActorRepository)
		ledgerRepo := new(MockLedgerRepository)
		archiveRepo := new(MockArchiveRepository)
		svc := NewActorService(actorRepo, ledgerRepo, archiveRepo)

		actorRepo.On("GetByID", ctx, actorID).Return(&actor.Actor{ID: actorID}, nil)
		ledgerRepo.On("AccountsForOwner", ctx, actorID).Return(nil, errors.New("connection reset"))

		_, err := svc.GetActorAccounts(ctx, actorID)
		assert.Error(t, err)
	})
}

func TestActorService_GetActorHistory(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("PageOffsetConversion", func(t *testing.T) {
		actorRepo := new(MockActorRepository)
		ledgerRepo := new(MockLedgerRepository)
		archiveRepo := new(MockArchiveRepository)
		svc := NewActorService(actorRepo, ledgerRepo, archiveRepo)

		records := []*outbox.ArchiveRecord{{Journal: ledger.JournalEntry{ID: uuid.New()}}}
		archiveRepo.On("GetByActorID", ctx, actorID, 20, 40).Return(records, nil)

		got, err := svc.GetActorHistory(ctx, actorID, 3, 20)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		archiveRepo.AssertExpectations(t)
	})

	t.Run("FirstPage", func(t *testing.T) {
		actorRepo := new(MockActorRepository)
		ledgerRepo := new(MockLedgerRepository)
		archiveRepo := new(MockArchiveRepository)
		svc := NewActorService(actorRepo, ledgerRepo, archiveRepo)

		archiveRepo.On("GetByActorID", ctx, actorID, 10, 0).Return([]*outbox.ArchiveRecord{}, nil)

		got, err := svc.GetActorHistory(ctx, actorID, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
