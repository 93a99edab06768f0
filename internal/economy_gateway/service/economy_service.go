package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/convoy-settlement-engine/internal/domain/job"
	"github.com/convoy-settlement-engine/internal/domain/ledger"
	"github.com/convoy-settlement-engine/internal/domain/subsidy"
)

// LedgerServiceImpl implements the LedgerService interface
type LedgerServiceImpl struct {
	ledgerRepo ledger.Repository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(ledgerRepo ledger.Repository) LedgerService {
	return &LedgerServiceImpl{ledgerRepo: ledgerRepo}
}

// GetStatement retrieves the most recent history of an account, newest first
func (s *LedgerServiceImpl) GetStatement(ctx context.Context, accountID uuid.UUID, limit int) ([]ledger.StatementLine, error) {
	return s.ledgerRepo.Statement(ctx, accountID, limit)
}

// GetTreasuryBalance returns the current Treasury Fund balance
func (s *LedgerServiceImpl) GetTreasuryBalance(ctx context.Context) (int64, error) {
	return s.ledgerRepo.TreasuryBalance(ctx)
}

// JobServiceImpl implements the JobService interface
type JobServiceImpl struct {
	jobRepo job.Repository
}

// NewJobService creates a new job service
func NewJobService(jobRepo job.Repository) JobService {
	return &JobServiceImpl{jobRepo: jobRepo}
}

// GetJobByID retrieves a delivery job by its ID, returns job.ErrJobNotFound if not found
func (s *JobServiceImpl) GetJobByID(ctx context.Context, id uuid.UUID) (*job.DeliveryJob, error) {
	return s.jobRepo.GetByID(ctx, id)
}

// ListJobs retrieves jobs, newest first, up to limit
func (s *JobServiceImpl) ListJobs(ctx context.Context, limit int) ([]job.DeliveryJob, error) {
	return s.jobRepo.List(ctx, limit)
}

// GetJobDeliveries retrieves a job's delivery history in chronological order
func (s *JobServiceImpl) GetJobDeliveries(ctx context.Context, jobID uuid.UUID) ([]job.Delivery, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.jobRepo.Deliveries(ctx, jobID)
}

// SubsidyServiceImpl implements the SubsidyService interface
type SubsidyServiceImpl struct {
	subsidyRepo subsidy.Repository
}

// NewSubsidyService creates a new subsidy service
func NewSubsidyService(subsidyRepo subsidy.Repository) SubsidyService {
	return &SubsidyServiceImpl{subsidyRepo: subsidyRepo}
}

// ListRules retrieves all subsidy rules, active or not
func (s *SubsidyServiceImpl) ListRules(ctx context.Context) ([]subsidy.Rule, error) {
	return s.subsidyRepo.ListRules(ctx)
}

// ListZones retrieves the full zone registry
func (s *SubsidyServiceImpl) ListZones(ctx context.Context) ([]subsidy.Zone, error) {
	return s.subsidyRepo.Zones(ctx)
}

// GetZoneByID retrieves one zone by its ID, returns nil if not found
func (s *SubsidyServiceImpl) GetZoneByID(ctx context.Context, id uuid.UUID) (*subsidy.Zone, error) {
	return s.subsidyRepo.GetZone(ctx, id)
}
