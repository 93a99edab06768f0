package service

import (
	"context"

	"github.com/convoy-settlement-engine/internal/domain/event"
	"github.com/convoy-settlement-engine/internal/settlement/aggregator"
)

// BatchProcessor settles a decoded event batch. Implemented by the
// aggregator.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, events []event.Event) ([]aggregator.ActorOutcome, error)
}
