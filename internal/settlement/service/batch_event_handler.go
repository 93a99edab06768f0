// Package service connects the event feed to the settlement aggregator.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/convoy-settlement-engine/internal/domain/event"
	"github.com/convoy-settlement-engine/internal/platform/messaging/producers"
)

// BatchEventHandler handles incoming event-batch messages from the feed.
type BatchEventHandler struct {
	processor BatchProcessor
	producer  producers.DeadLetterPublisher
	logger    *slog.Logger
}

// NewBatchEventHandler creates a new handler.
func NewBatchEventHandler(
	logger *slog.Logger,
	processor BatchProcessor,
	producer producers.DeadLetterPublisher,
) *BatchEventHandler {
	return &BatchEventHandler{
		processor: processor,
		producer:  producer,
		logger:    logger,
	}
}

// HandleMessage decodes one feed message and runs it through the aggregator.
// Messages that do not parse as a batch go to the dead-letter queue;
// individual envelopes that cannot decode are logged and skipped, and
// per-actor settlement failures are isolated by the aggregator. Neither fails
// the message.
func (h *BatchEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	events, rejected, err := event.DecodeBatch(value)
	if err != nil {
		decodeErrorMsg := "Failed to decode event batch from feed message"
		h.logger.Error(decodeErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", decodeErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after decode error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published undecodable batch to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow feed retries
		return fmt.Errorf("failed to decode batch message: %w", err)
	}

	for _, rej := range rejected {
		h.logger.Warn("Skipping undecodable event envelope",
			"hook", rej.Envelope.Hook,
			"error", rej.Err,
			"message_key", string(key))
	}
	if len(events) == 0 {
		return nil
	}

	h.logger.Info("Received event batch for settlement",
		"message_key", string(key),
		"events", len(events))

	outcomes, err := h.processor.ProcessBatch(ctx, events)
	if err != nil {
		h.logger.Error("Failed to process event batch",
			"message_key", string(key),
			"error", err)
		return fmt.Errorf("processing event batch failed: %w", err)
	}

	settled := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			h.logger.Warn("Actor settlement failed within batch",
				"actor_id", outcome.ActorID.String(),
				"error", outcome.Err)
			continue
		}
		settled++
	}

	h.logger.Info("Event batch settled",
		"message_key", string(key),
		"actors", len(outcomes),
		"settled", settled)
	return nil
}
