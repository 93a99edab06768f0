// Package archive_poller drains the journal outbox into the MongoDB archive.
// Journal entries commit to Postgres together with their outbox row; this
// poller moves them to the archive asynchronously and at-least-once, with the
// archive side deduplicating on journal id.
package archive_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/convoy-settlement-engine/internal/data/mongo"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
)

// ArchivePublisher publishes outbox messages to the journal archive.
type ArchivePublisher interface {
	PublishToArchive(ctx context.Context, message *outbox.Message) error
}

// ArchivePublisherImpl implements ArchivePublisher.
type ArchivePublisherImpl struct {
	outboxRepo  outbox.Repository
	archiveRepo mongo.ArchiveRepository
	logger      *slog.Logger
}

// NewArchivePublisher creates a new publisher.
func NewArchivePublisher(
	outboxRepo outbox.Repository,
	archiveRepo mongo.ArchiveRepository,
	logger *slog.Logger,
) ArchivePublisher {
	return &ArchivePublisherImpl{
		outboxRepo:  outboxRepo,
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// PublishToArchive writes one outbox message's journal entry to the archive
// and marks the message processed. Replays are safe: the archive ignores
// journal ids it already holds.
func (p *ArchivePublisherImpl) PublishToArchive(ctx context.Context, message *outbox.Message) error {
	record, err := message.Record()
	if err != nil {
		p.logger.Error("Failed to unmarshal archive record from outbox payload",
			"outbox_id", message.ID, "journal_id", message.JournalID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailed); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_ARCHIVE after unmarshal error",
				"outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	p.logger.Debug("Archiving journal entry", "outbox_id", message.ID, "journal_id", message.JournalID.String())

	if err := p.archiveRepo.Archive(ctx, record); err != nil {
		return fmt.Errorf("failed to archive journal entry %s: %w", message.JournalID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "journal_id", message.JournalID.String(), "error", err,
		)
		return fmt.Errorf("archive write for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.JournalID, message.ID, err)
	}

	p.logger.Info("Journal entry archived", "outbox_id", message.ID, "journal_id", message.JournalID.String())
	return nil
}
