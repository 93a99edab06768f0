package archive_poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/convoy-settlement-engine/internal/config"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status outbox.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByJournalID(ctx context.Context, journalID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	return m
}

// MockArchivePublisher for testing
type MockArchivePublisher struct {
	mock.Mock
}

func (m *MockArchivePublisher) PublishToArchive(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func pendingMessage(t *testing.T, id int64, attempts int) *outbox.Message {
	t.Helper()
	journal := &ledger.JournalEntry{ID: uuid.New(), EntryDate: time.Now(), Description: "subsidy payout"}
	msg, err := outbox.NewMessage(journal, []ledger.LedgerEntry{
		{ID: uuid.New(), JournalID: journal.ID, AccountID: uuid.New(), Debit: 100},
		{ID: uuid.New(), JournalID: journal.ID, AccountID: uuid.New(), Credit: 100},
	})
	assert.NoError(t, err)
	msg.ID = id
	msg.Attempts = attempts
	return msg
}

func testPoller(outboxRepo outbox.Repository, publisher ArchivePublisher) *Poller {
	cfg := &config.ArchiveConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
	return NewPoller(cfg, outboxRepo, publisher, slog.Default())
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	message1 := pendingMessage(t, 1, 0)
	message2 := pendingMessage(t, 2, 0)

	mockOutboxRepo := &MockOutboxRepo{}
	mockPublisher := &MockArchivePublisher{}
	poller := testPoller(mockOutboxRepo, mockPublisher)

	tests := []struct {
		name          string
		setupMocks    func()
		expectedError string
	}{
		{
			name: "successful processing of pending messages",
			setupMocks: func() {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				mockPublisher.On("PublishToArchive", mock.Anything, message1).Return(nil).Once()
				mockPublisher.On("PublishToArchive", mock.Anything, message2).Return(nil).Once()
			},
		},
		{
			name: "error getting pending messages",
			setupMocks: func() {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()
			},
			expectedError: "failed to get pending outbox messages",
		},
		{
			name: "no pending messages",
			setupMocks: func() {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()
			},
		},
		{
			name: "publish failure increments attempts and continues",
			setupMocks: func() {
				mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				mockPublisher.On("PublishToArchive", mock.Anything, message1).Return(errors.New("mongo down")).Once()
				mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()
				mockPublisher.On("PublishToArchive", mock.Anything, message2).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()

			err := poller.processPendingMessages(context.Background())
			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockOutboxRepo.AssertExpectations(t)
			mockPublisher.AssertExpectations(t)
		})
	}
}

func TestPoller_MaxRetriesMarksFailed(t *testing.T) {
	// Already at attempts = max-1; one more failure flips the status.
	message := pendingMessage(t, 7, 2)

	mockOutboxRepo := &MockOutboxRepo{}
	mockPublisher := &MockArchivePublisher{}
	poller := testPoller(mockOutboxRepo, mockPublisher)

	mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message}, nil).Once()
	mockPublisher.On("PublishToArchive", mock.Anything, message).Return(errors.New("mongo down")).Once()
	mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(7)).Return(nil).Once()
	mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(7), outbox.StatusFailed).Return(nil).Once()

	err := poller.processPendingMessages(context.Background())
	assert.NoError(t, err)
	mockOutboxRepo.AssertExpectations(t)
}

func TestArchivePublisher_MarksProcessed(t *testing.T) {
	message := pendingMessage(t, 3, 0)

	mockOutboxRepo := &MockOutboxRepo{}
	archive := &MockArchiveRepo{}
	archive.On("Archive", mock.Anything, mock.MatchedBy(func(rec *outbox.ArchiveRecord) bool {
		return rec.Journal.ID == message.JournalID && len(rec.Lines) == 2
	})).Return(nil).Once()
	mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(3), outbox.StatusProcessed).Return(nil).Once()

	publisher := NewArchivePublisher(mockOutboxRepo, archive, slog.Default())
	err := publisher.PublishToArchive(context.Background(), message)

	assert.NoError(t, err)
	mockOutboxRepo.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestArchivePublisher_CorruptPayloadMarkedFailed(t *testing.T) {
	message := pendingMessage(t, 4, 0)
	message.Payload = []byte("{corrupt")

	mockOutboxRepo := &MockOutboxRepo{}
	mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(4), outbox.StatusFailed).Return(nil).Once()

	publisher := NewArchivePublisher(mockOutboxRepo, &MockArchiveRepo{}, slog.Default())
	err := publisher.PublishToArchive(context.Background(), message)

	assert.Error(t, err)
	mockOutboxRepo.AssertExpectations(t)
}

// MockArchiveRepo for testing
type MockArchiveRepo struct {
	mock.Mock
}

func (m *MockArchiveRepo) Archive(ctx context.Context, record *outbox.ArchiveRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockArchiveRepo) GetByJournalID(ctx context.Context, journalID uuid.UUID) (*outbox.ArchiveRecord, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.ArchiveRecord), args.Error(1)
}

func (m *MockArchiveRepo) GetByActorID(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*outbox.ArchiveRecord, error) {
	args := m.Called(ctx, actorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.ArchiveRecord), args.Error(1)
}
