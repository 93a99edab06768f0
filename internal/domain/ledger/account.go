// Package ledger defines the double-entry bookkeeping model of the settlement
// engine: accounts, journal entries and balanced postings. Accounts are created
// lazily on first reference; journal history is append-only and account
// balances are maintained only by the posting transaction.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// AccountType classifies an account for balance arithmetic.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeRevenue   AccountType = "revenue"
)

// Book separates the commercial bank ledger from the government ledger.
type Book string

const (
	BookBank       Book = "bank"
	BookGovernment Book = "government"
)

// Institutional account names. These accounts have no owner and are created
// lazily the first time a posting references them.
const (
	AccountTreasuryFund       = "Treasury Fund"
	AccountSubsidyExpense     = "Subsidy Expense"
	AccountJobBonusExpense    = "Job Bonus Expense"
	AccountFreightExpense     = "Freight Expense"
	AccountTransportExpense   = "Transport Expense"
	AccountPenaltyRevenue     = "Penalty Revenue"
	AccountSettlementClearing = "Settlement Clearing"
)

// Per-actor account names.
const (
	AccountActorCash    = "cash"
	AccountActorSavings = "savings"
	AccountActorLoan    = "loan"
)

// Account is a ledger account. Balance is stored in minor currency units and
// always equals the type-signed sum of the account's ledger entry history.
type Account struct {
	ID        uuid.UUID   `json:"id"`
	Type      AccountType `json:"type"`
	Book      Book        `json:"book"`
	OwnerID   *uuid.UUID  `json:"owner_id,omitempty"` // nil for institutional accounts
	Name      string      `json:"name"`
	Balance   int64       `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AccountRef is the natural key of an account within a posting line. Accounts
// are resolved (or created) from their ref inside the posting transaction.
type AccountRef struct {
	Type    AccountType `json:"type"`
	Book    Book        `json:"book"`
	OwnerID *uuid.UUID  `json:"owner_id,omitempty"`
	Name    string      `json:"name"`
}

// BalanceDelta returns the signed balance change a (debit, credit) pair causes
// on an account of this type: debit−credit for asset/expense accounts,
// credit−debit for liability/revenue accounts.
func (t AccountType) BalanceDelta(debit, credit int64) int64 {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return debit - credit
	default:
		return credit - debit
	}
}

// Valid reports whether the account type is one of the four known types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeExpense, AccountTypeRevenue:
		return true
	}
	return false
}

// TreasuryRef is the government asset account holding subsidy funds.
func TreasuryRef() AccountRef {
	return AccountRef{Type: AccountTypeAsset, Book: BookGovernment, Name: AccountTreasuryFund}
}

// ActorCashRef is an actor's bank deposit account.
func ActorCashRef(actorID uuid.UUID) AccountRef {
	return AccountRef{Type: AccountTypeLiability, Book: BookBank, OwnerID: &actorID, Name: AccountActorCash}
}

// ActorSavingsRef is an actor's savings deposit account.
func ActorSavingsRef(actorID uuid.UUID) AccountRef {
	return AccountRef{Type: AccountTypeLiability, Book: BookBank, OwnerID: &actorID, Name: AccountActorSavings}
}

// ActorLoanRef is the bank's receivable for an actor's outstanding loan.
func ActorLoanRef(actorID uuid.UUID) AccountRef {
	return AccountRef{Type: AccountTypeAsset, Book: BookBank, OwnerID: &actorID, Name: AccountActorLoan}
}
