package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrUnbalancedPosting = errors.New("posting debits and credits do not balance")
	ErrEmptyPosting      = errors.New("posting must contain at least one line")
	ErrNegativeAmount    = errors.New("posting amounts must not be negative")
	ErrEmptyLine         = errors.New("posting line must carry a debit or a credit")
)

// Line is one leg of a balanced posting.
type Line struct {
	Account AccountRef `json:"account"`
	Debit   int64      `json:"debit"`
	Credit  int64      `json:"credit"`
}

// Posting is a request to record one balanced journal entry. It is rejected
// with no side effects unless total debits equal total credits.
type Posting struct {
	Date        time.Time  `json:"date"`
	Description string     `json:"description"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	Lines       []Line     `json:"lines"`
}

// Validate checks the posting invariants before any write happens.
func (p *Posting) Validate() error {
	if len(p.Lines) == 0 {
		return ErrEmptyPosting
	}

	var debits, credits int64
	for _, line := range p.Lines {
		if line.Debit < 0 || line.Credit < 0 {
			return ErrNegativeAmount
		}
		if line.Debit == 0 && line.Credit == 0 {
			return ErrEmptyLine
		}
		debits += line.Debit
		credits += line.Credit
	}

	if debits != credits {
		return ErrUnbalancedPosting
	}
	return nil
}

// Total returns the posting's total debit side (equal to the credit side for a
// valid posting). Cross-book postings repeat the economic amount in each book,
// so this is a balance check, not the amount moved; use CreditTo for that.
func (p *Posting) Total() int64 {
	var debits int64
	for _, line := range p.Lines {
		debits += line.Debit
	}
	return debits
}

// CreditTo returns the total credited to one account across the posting's
// lines. For payout schemes this is the amount the named account receives.
func (p *Posting) CreditTo(ref AccountRef) int64 {
	var credits int64
	for _, line := range p.Lines {
		if line.Account == ref {
			credits += line.Credit
		}
	}
	return credits
}
