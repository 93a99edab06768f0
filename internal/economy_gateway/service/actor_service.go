package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/data/mongo"
	"github.com/convoy-settlement-engine/internal/domain/actor"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/outbox"
)

// ActorServiceImpl implements the ActorService interface
type ActorServiceImpl struct {
	actorRepo   actor.Repository
	ledgerRepo  ledger.Repository
	archiveRepo mongo.ArchiveRepository
}

// NewActorService creates a new actor service
func NewActorService(actorRepo actor.Repository, ledgerRepo ledger.Repository, archiveRepo mongo.ArchiveRepository) ActorService {
	return &ActorServiceImpl{
		actorRepo:   actorRepo,
		ledgerRepo:  ledgerRepo,
		archiveRepo: archiveRepo,
	}
}

// GetActorByID retrieves an actor by its ID, returns actor.ErrActorNotFound if not found
func (s *ActorServiceImpl) GetActorByID(ctx context.Context, id uuid.UUID) (*actor.Actor, error) {
	return s.actorRepo.GetByID(ctx, id)
}

// GetActorAccounts lists all ledger accounts owned by an actor. Actors with no
// postings yet have no accounts; the result is empty, not an error.
func (s *ActorServiceImpl) GetActorAccounts(ctx context.Context, actorID uuid.UUID) ([]ledger.Account, error) {
	if _, err := s.actorRepo.GetByID(ctx, actorID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.AccountsForOwner(ctx, actorID)
}

// GetActorHistory retrieves paginated archived journal entries for an actor, newest first
func (s *ActorServiceImpl) GetActorHistory(ctx context.Context, actorID uuid.UUID, page, perPage int) ([]*outbox.ArchiveRecord, error) {
	offset := (page - 1) * perPage
	return s.archiveRepo.GetByActorID(ctx, actorID, perPage, offset)
}
