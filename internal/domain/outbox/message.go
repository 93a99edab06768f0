// Package outbox holds the transactional outbox rows that carry committed
// journal entries to the archive store.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/google/uuid"
)

// Status of an outbox message.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusFailed    Status = "FAILED_TO_ARCHIVE"
)

// ArchiveRecord is the payload shipped to the archive: one journal entry with
// all of its ledger lines.
type ArchiveRecord struct {
	Journal ledger.JournalEntry  `json:"journal" bson:"journal"`
	Lines   []ledger.LedgerEntry `json:"lines" bson:"lines"`
}

// Message stores one committed journal entry for reliable archive publishing.
// It is written in the same transaction as the journal entry itself.
type Message struct {
	ID            int64           `json:"id"`
	JournalID     uuid.UUID       `json:"journal_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a committed journal entry and its lines into a pending
// outbox message.
func NewMessage(journal *ledger.JournalEntry, lines []ledger.LedgerEntry) (*Message, error) {
	payload, err := json.Marshal(ArchiveRecord{Journal: *journal, Lines: lines})
	if err != nil {
		return nil, err
	}

	return &Message{
		JournalID: journal.ID,
		Payload:   payload,
		Status:    StatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailed
	now := time.Now()
	m.LastAttemptAt = &now
}

// Record extracts the archive record from the payload
func (m *Message) Record() (*ArchiveRecord, error) {
	var rec ArchiveRecord
	if err := json.Unmarshal(m.Payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
