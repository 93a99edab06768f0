// Package mongo implements the journal archive read side on MongoDB. The
// archive mirrors committed journal entries for audit queries; the Postgres
// ledger remains the source of truth.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/convoy-settlement-engine/internal/domain/outbox"
)

const (
	// ArchiveCollectionName is the name of the journal archive collection
	ArchiveCollectionName = "journal_archive"
)

// ArchiveRepository defines archive persistence operations
type ArchiveRepository interface {
	Archive(ctx context.Context, record *outbox.ArchiveRecord) error
	GetByJournalID(ctx context.Context, journalID uuid.UUID) (*outbox.ArchiveRecord, error)
	GetByActorID(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*outbox.ArchiveRecord, error)
}

// ErrRecordNotFound indicates a missing archive record
type ErrRecordNotFound struct {
	JournalID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "archive record not found: " + e.JournalID.String()
}

// ArchiveRepositoryImpl implements ArchiveRepository for MongoDB
type ArchiveRepositoryImpl struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB journal archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) ArchiveRepository {
	return &ArchiveRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Archive stores a committed journal entry. Re-archiving the same journal id
// is a no-op so poller retries stay idempotent.
func (r *ArchiveRepositoryImpl) Archive(ctx context.Context, record *outbox.ArchiveRecord) error {
	collection := r.db.Collection(ArchiveCollectionName)

	existing, err := r.GetByJournalID(ctx, record.Journal.ID)
	if err != nil && !errors.As(err, &ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing archive record",
			"journal_id", record.Journal.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing archive record: %w", err)
	}
	if existing != nil {
		return nil
	}

	if _, err := collection.InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to archive journal entry",
			"journal_id", record.Journal.ID.String(),
			"error", err)
		return fmt.Errorf("failed to archive journal entry: %w", err)
	}

	return nil
}

// GetByJournalID retrieves an archived journal entry by id.
func (r *ArchiveRepositoryImpl) GetByJournalID(ctx context.Context, journalID uuid.UUID) (*outbox.ArchiveRecord, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"journal.id": journalID}
	var record outbox.ArchiveRecord
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound{JournalID: journalID}
		}
		r.logger.Error("Failed to get archive record",
			"journal_id", journalID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archive record: %w", err)
	}

	return &record, nil
}

// GetByActorID retrieves paginated archived entries originated by an actor,
// newest first.
func (r *ArchiveRepositoryImpl) GetByActorID(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*outbox.ArchiveRecord, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"journal.actor_id": actorID}
	opts := options.Find().
		SetSort(bson.D{{Key: "journal.entry_date", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query archive records",
			"actor_id", actorID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to query archive records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*outbox.ArchiveRecord
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode archive records",
			"actor_id", actorID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archive records: %w", err)
	}

	return records, nil
}
