package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/filter"
	"github.com/rosterdesk/platform/internal/repository"
	"github.com/rosterdesk/platform/internal/tenant"
)

// ContractService manages contracts and their payment schedules.
type ContractService struct {
	contracts repository.ContractRepository
	athletes  repository.AthleteRepository
	events    EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewContractService creates a new ContractService.
func NewContractService(
	contracts repository.ContractRepository,
	athletes repository.AthleteRepository,
	events EventPublisher,
	now func() time.Time,
	logger *slog.Logger,
) *ContractService {
	if events == nil {
		events = DiscardPublisher{}
	}
	return &ContractService{
		contracts: contracts,
		athletes:  athletes,
		events:    events,
		logger:    logger,
		now:       nowFunc(now),
	}
}

// List returns contracts narrowed and ordered by f.
func (s *ContractService) List(ctx context.Context, scope *tenant.Scope, f filter.ContractFilter) ([]domain.Contract, error) {
	all, err := s.contracts.List(ctx, scope.OrgID)
	if err != nil {
		return nil, storeErr("list contracts", err)
	}
	return filter.Contracts(all, f), nil
}

// Get returns one contract with its athlete attached.
func (s *ContractService) Get(ctx context.Context, scope *tenant.Scope, id string) (*domain.Contract, error) {
	c, err := s.contracts.FindByID(ctx, scope.OrgID, id)
	if err != nil {
		return nil, storeErr("find contract", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound("contract", id)
	}
	return c, nil
}

// Create records a new contract for one of the organization's athletes.
func (s *ContractService) Create(ctx context.Context, scope *tenant.Scope, c *domain.Contract) (*domain.Contract, error) {
	c.OrgID = scope.OrgID
	if c.Status == "" {
		c.Status = domain.ContractDraft
	}
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	created, err := s.contracts.Create(ctx, c)
	if err != nil {
		return nil, storeErr("create contract", err)
	}
	if !created.ScheduleBalanced() && len(created.PaymentSchedule) > 0 {
		s.logger.Warn("contract payment schedule does not match value",
			"contract_id", created.ID, "value", created.Value, "scheduled", created.ScheduledTotal())
	}
	publish(ctx, s.events, s.logger, domain.NewContractCreatedEvent(created, s.now()))
	return s.Get(ctx, scope, created.ID)
}

// Update replaces a contract's editable fields.
func (s *ContractService) Update(ctx context.Context, scope *tenant.Scope, id string, c *domain.Contract) (*domain.Contract, error) {
	c.ID = id
	c.OrgID = scope.OrgID
	if err := s.validate(ctx, c); err != nil {
		return nil, err
	}
	updated, err := s.contracts.Update(ctx, c)
	if err != nil {
		return nil, storeErr("update contract", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("contract", id)
	}
	return s.Get(ctx, scope, id)
}

// Delete removes a contract.
func (s *ContractService) Delete(ctx context.Context, scope *tenant.Scope, id string) error {
	ok, err := s.contracts.Delete(ctx, scope.OrgID, id)
	if err != nil {
		return storeErr("delete contract", err)
	}
	if !ok {
		return domain.ErrNotFound("contract", id)
	}
	return nil
}

// TogglePaymentPaid flips the paid flag of the installment at index,
// stamping or clearing its paid date.
func (s *ContractService) TogglePaymentPaid(ctx context.Context, scope *tenant.Scope, id string, index int) (*domain.Contract, error) {
	c, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(c.PaymentSchedule) {
		return nil, domain.ErrNotFound("payment", fmt.Sprint(index))
	}
	p := &c.PaymentSchedule[index]
	p.SetPaid(!p.Paid, s.now().UTC())

	updated, err := s.contracts.Update(ctx, c)
	if err != nil {
		return nil, storeErr("update contract", err)
	}
	if updated == nil {
		return nil, domain.ErrNotFound("contract", id)
	}
	updated.Athlete = c.Athlete
	return updated, nil
}

func (s *ContractService) validate(ctx context.Context, c *domain.Contract) error {
	if err := c.Validate(); err != nil {
		return domain.ErrValidation(err.Error())
	}
	a, err := s.athletes.FindByID(ctx, c.OrgID, c.AthleteID)
	if err != nil {
		return storeErr("find athlete", err)
	}
	if a == nil {
		return domain.ErrValidation("athlete does not belong to this organization")
	}
	return nil
}
