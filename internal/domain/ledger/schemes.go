package ledger

import (
	"time"

	"github.com/google/uuid"
)

// The settlement engine posts a small set of fixed shapes. Centralizing them
// here keeps every caller on balanced postings with the correct account refs.

// TreasuryGrant moves amount from the government treasury to an actor's cash
// account: the government books the expense against the treasury, the bank
// books a clearing claim against the deposit it creates.
func TreasuryGrant(date time.Time, description string, actorID uuid.UUID, amount int64, expenseAccount string) Posting {
	return Posting{
		Date:        date,
		Description: description,
		ActorID:     &actorID,
		Lines: []Line{
			{Account: AccountRef{Type: AccountTypeExpense, Book: BookGovernment, Name: expenseAccount}, Debit: amount},
			{Account: TreasuryRef(), Credit: amount},
			{Account: AccountRef{Type: AccountTypeAsset, Book: BookBank, Name: AccountSettlementClearing}, Debit: amount},
			{Account: ActorCashRef(actorID), Credit: amount},
		},
	}
}

// PaymentWithRepayment credits an actor's base payment, diverting repayment of
// it to the actor's outstanding loan. The bank books the full payment as an
// expense; the loan receivable shrinks by the diverted share.
func PaymentWithRepayment(date time.Time, description string, actorID uuid.UUID, payment, repayment int64, expenseAccount string) Posting {
	lines := []Line{
		{Account: AccountRef{Type: AccountTypeExpense, Book: BookBank, Name: expenseAccount}, Debit: payment},
	}
	if repayment > 0 {
		lines = append(lines, Line{Account: ActorLoanRef(actorID), Credit: repayment})
	}
	if payment-repayment > 0 {
		lines = append(lines, Line{Account: ActorCashRef(actorID), Credit: payment - repayment})
	}
	return Posting{
		Date:        date,
		Description: description,
		ActorID:     &actorID,
		Lines:       lines,
	}
}

// SavingsSweep moves amount from an actor's cash account to their savings
// account.
func SavingsSweep(date time.Time, description string, actorID uuid.UUID, amount int64) Posting {
	return Posting{
		Date:        date,
		Description: description,
		ActorID:     &actorID,
		Lines: []Line{
			{Account: ActorCashRef(actorID), Debit: amount},
			{Account: ActorSavingsRef(actorID), Credit: amount},
		},
	}
}

// Penalty charges amount against an actor's cash account as bank revenue.
func Penalty(date time.Time, description string, actorID uuid.UUID, amount int64) Posting {
	return Posting{
		Date:        date,
		Description: description,
		ActorID:     &actorID,
		Lines: []Line{
			{Account: ActorCashRef(actorID), Debit: amount},
			{Account: AccountRef{Type: AccountTypeRevenue, Book: BookBank, Name: AccountPenaltyRevenue}, Credit: amount},
		},
	}
}
