// Package pipeline settles a per-actor profit summary into the ledger:
// subsidy payout, loan repayment against the base payment, then automatic
// savings. Each step is one balanced posting; a failed step stops the
// remaining steps for that actor only.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/config"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/settlement/notify"
)

// Summary is one actor's settled profit from a processed batch.
type Summary struct {
	ActorID uuid.UUID
	// Subsidy is paid from the government treasury.
	Subsidy int64
	// FreightPayment and TransportPayment are base payments booked against
	// the bank's freight and transport expense accounts respectively.
	FreightPayment   int64
	TransportPayment int64
	// SavingsFraction overrides the configured default when non-nil.
	SavingsFraction *float64
	At              time.Time
}

func (s *Summary) payment() int64 {
	return s.FreightPayment + s.TransportPayment
}

// Result reports what a settlement actually posted.
type Result struct {
	SubsidyPaid   int64
	LoanRepayment int64
	CashCredited  int64
	SavingsSwept  int64
}

// Pipeline posts profit settlements to the ledger.
type Pipeline struct {
	ledger   ledger.Repository
	notifier notify.Notifier
	economy  *config.EconomyConfig
	logger   *slog.Logger
}

// NewPipeline creates a profit settlement pipeline.
func NewPipeline(logger *slog.Logger, ledgerRepo ledger.Repository, notifier notify.Notifier, economy *config.EconomyConfig) *Pipeline {
	return &Pipeline{
		ledger:   ledgerRepo,
		notifier: notifier,
		economy:  economy,
		logger:   logger,
	}
}

// Settle runs the three settlement steps for one actor. On a step failure the
// actor is notified and the remaining steps are skipped; postings from earlier
// steps stand, the ledger is never unwound.
func (p *Pipeline) Settle(ctx context.Context, s Summary) (*Result, error) {
	result := &Result{}

	if s.Subsidy > 0 {
		posting := ledger.TreasuryGrant(s.At, "subsidy payout", s.ActorID, s.Subsidy, ledger.AccountSubsidyExpense)
		if _, err := p.ledger.Post(ctx, posting); err != nil {
			p.fail(s.ActorID, "subsidy payout")
			return result, fmt.Errorf("subsidy payout failed: %w", err)
		}
		result.SubsidyPaid = s.Subsidy
	}

	payment := s.payment()
	if payment > 0 {
		repayment, err := p.repayment(ctx, s.ActorID, payment)
		if err != nil {
			p.fail(s.ActorID, "loan repayment")
			return result, fmt.Errorf("loan repayment lookup failed: %w", err)
		}

		// Repayment is diverted from the freight component first.
		repayFreight := min64(repayment, s.FreightPayment)
		repayTransport := repayment - repayFreight

		if s.FreightPayment > 0 {
			posting := ledger.PaymentWithRepayment(s.At, "freight payment", s.ActorID, s.FreightPayment, repayFreight, ledger.AccountFreightExpense)
			if _, err := p.ledger.Post(ctx, posting); err != nil {
				p.fail(s.ActorID, "payment settlement")
				return result, fmt.Errorf("freight payment failed: %w", err)
			}
		}
		if s.TransportPayment > 0 {
			posting := ledger.PaymentWithRepayment(s.At, "transport payment", s.ActorID, s.TransportPayment, repayTransport, ledger.AccountTransportExpense)
			if _, err := p.ledger.Post(ctx, posting); err != nil {
				p.fail(s.ActorID, "payment settlement")
				return result, fmt.Errorf("transport payment failed: %w", err)
			}
		}
		result.LoanRepayment = repayment
		result.CashCredited = payment - repayment
	}

	// The subsidy is paid out directly; only the post-repayment payment
	// remainder feeds the automatic savings deposit.
	if sweep := p.savings(result.CashCredited, s.SavingsFraction); sweep > 0 {
		posting := ledger.SavingsSweep(s.At, "automatic savings deposit", s.ActorID, sweep)
		if _, err := p.ledger.Post(ctx, posting); err != nil {
			p.fail(s.ActorID, "savings deposit")
			return result, fmt.Errorf("savings deposit failed: %w", err)
		}
		result.SavingsSwept = sweep
	}

	p.logger.Info("Actor profit settled",
		"actor_id", s.ActorID.String(),
		"subsidy", result.SubsidyPaid,
		"repayment", result.LoanRepayment,
		"cash", result.CashCredited,
		"savings", result.SavingsSwept)
	return result, nil
}

// repayment computes the loan share of a payment: the repayment fraction
// rises with loan utilization and is floored at the configured minimum, and
// the repayment never exceeds the outstanding balance.
func (p *Pipeline) repayment(ctx context.Context, actorID uuid.UUID, payment int64) (int64, error) {
	outstanding, err := p.ledger.Balance(ctx, ledger.ActorLoanRef(actorID))
	if err != nil {
		return 0, err
	}
	if outstanding <= 0 {
		return 0, nil
	}

	utilization := float64(outstanding) / float64(p.economy.LoanReference)
	fraction := utilization * p.economy.MaxRepaymentFraction
	if fraction < p.economy.MinRepaymentFraction {
		fraction = p.economy.MinRepaymentFraction
	}
	if fraction > p.economy.MaxRepaymentFraction {
		fraction = p.economy.MaxRepaymentFraction
	}

	repayment := int64(math.Floor(float64(payment) * fraction))
	return min64(repayment, outstanding), nil
}

func (p *Pipeline) savings(remainder int64, override *float64) int64 {
	if remainder <= 0 {
		return 0
	}
	fraction := p.economy.DefaultSavingsFraction
	if override != nil {
		fraction = *override
	}
	if fraction <= 0 {
		return 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return int64(math.Floor(float64(remainder) * fraction))
}

func (p *Pipeline) fail(actorID uuid.UUID, step string) {
	p.notifier.Notify(actorID, fmt.Sprintf("Settlement interrupted during %s; remaining steps were skipped.", step))
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
