package ledger

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is the append-only header of one balanced transaction.
// Corrections are new offsetting entries, never edits.
type JournalEntry struct {
	ID          uuid.UUID  `json:"id" bson:"id"`
	EntryDate   time.Time  `json:"entry_date" bson:"entry_date"`
	Description string     `json:"description" bson:"description"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
}

// LedgerEntry is one leg of a journal entry as persisted. Append-only.
type LedgerEntry struct {
	ID        uuid.UUID `json:"id" bson:"id"`
	JournalID uuid.UUID `json:"journal_id" bson:"journal_id"`
	AccountID uuid.UUID `json:"account_id" bson:"account_id"`
	Debit     int64     `json:"debit" bson:"debit"`
	Credit    int64     `json:"credit" bson:"credit"`
}

// StatementLine is one row of an account statement: the ledger entry joined
// with its journal header.
type StatementLine struct {
	JournalID   uuid.UUID `json:"journal_id"`
	EntryDate   time.Time `json:"entry_date"`
	Description string    `json:"description"`
	Debit       int64     `json:"debit"`
	Credit      int64     `json:"credit"`
}
