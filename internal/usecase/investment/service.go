package investment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// CreateInput represents the input for creating an investment
type CreateInput struct {
	Name               string
	Class              domain.InvestmentClass
	Currency           domain.Currency
	TargetAnnualReturn decimal.Decimal
	YieldStartYear     int
	YieldStartMonth    int
}

// UpdateInput represents a partial update of an investment.
// Nil fields are left unchanged.
type UpdateInput struct {
	Name               *string
	Currency           *domain.Currency
	TargetAnnualReturn *decimal.Decimal
	YieldStartYear     *int
	YieldStartMonth    *int
}

// Service handles investment CRUD operations
type Service struct {
	InvestmentRepo domain.InvestmentRepository
}

// NewService creates a new investment Service instance
func NewService(investmentRepo domain.InvestmentRepository) *Service {
	return &Service{InvestmentRepo: investmentRepo}
}

// List retrieves all investments
func (s *Service) List(ctx context.Context) ([]*domain.Investment, error) {
	return s.InvestmentRepo.List(ctx)
}

// Create creates a new investment
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Investment, error) {
	inv := &domain.Investment{
		ID:                 uuid.New(),
		Name:               input.Name,
		Class:              input.Class,
		Currency:           input.Currency,
		TargetAnnualReturn: input.TargetAnnualReturn,
		YieldStartYear:     input.YieldStartYear,
		YieldStartMonth:    input.YieldStartMonth,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvestmentRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}

	return inv, nil
}

// Update applies a rename, currency change, target-return or yield-start
// edit to an existing investment
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Investment, error) {
	inv, err := s.InvestmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		inv.Name = *input.Name
	}
	if input.Currency != nil {
		inv.Currency = *input.Currency
	}
	if input.TargetAnnualReturn != nil {
		inv.TargetAnnualReturn = *input.TargetAnnualReturn
	}
	if input.YieldStartYear != nil {
		inv.YieldStartYear = *input.YieldStartYear
	}
	if input.YieldStartMonth != nil {
		inv.YieldStartMonth = *input.YieldStartMonth
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvestmentRepo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to update investment: %w", err)
	}

	return inv, nil
}

// Delete removes an investment. Rejected with domain.ErrHasClosedValues when
// any closed month holds a non-zero recorded value for it, to preserve the
// historical integrity of closed periods.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.InvestmentRepo.GetByID(ctx, id); err != nil {
		return err
	}

	locked, err := s.InvestmentRepo.HasClosedNonZeroValue(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check closed values: %w", err)
	}
	if locked {
		return domain.ErrHasClosedValues
	}

	if err := s.InvestmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete investment: %w", err)
	}

	return nil
}
