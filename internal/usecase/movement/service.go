package movement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// Input represents the user-supplied fields of a movement
type Input struct {
	InvestmentID uuid.UUID
	Date         time.Time
	Type         domain.MovementType
	Currency     domain.Currency
	Amount       decimal.Decimal // absolute value; sign derives from Type
}

// Service handles movement read/write operations. Writes are rejected when
// the movement's month is closed; edits additionally check the month the
// movement currently sits in, so nothing can be moved out of a frozen period.
type Service struct {
	InvestmentRepo domain.InvestmentRepository
	MovementRepo   domain.MovementRepository
	MonthCloseRepo domain.MonthCloseRepository
	Cipher         domain.Cipher // nil = store amounts in the clear
}

// NewService creates a new movement Service instance
func NewService(
	investmentRepo domain.InvestmentRepository,
	movementRepo domain.MovementRepository,
	monthCloseRepo domain.MonthCloseRepository,
	cipher domain.Cipher,
) *Service {
	return &Service{
		InvestmentRepo: investmentRepo,
		MovementRepo:   movementRepo,
		MonthCloseRepo: monthCloseRepo,
		Cipher:         cipher,
	}
}

// ListYear retrieves all movements dated in the year, across investments,
// with encrypted payloads resolved. A movement whose payload cannot be
// decrypted comes back with Failed=true and a zero amount; flow aggregation
// skips it.
func (s *Service) ListYear(ctx context.Context, year int) ([]*domain.Movement, error) {
	movs, err := s.MovementRepo.ListYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}

	for _, mov := range movs {
		s.resolve(mov)
	}

	return movs, nil
}

func (s *Service) resolve(mov *domain.Movement) {
	if len(mov.Payload) == 0 || s.Cipher == nil {
		return
	}

	plain, err := s.Cipher.Decrypt(mov.Payload)
	if err != nil {
		mov.Failed = true
		mov.Amount = decimal.Zero
		return
	}

	amount, _, err := plain.Amounts()
	if err != nil {
		mov.Failed = true
		mov.Amount = decimal.Zero
		return
	}

	mov.Amount = amount
}

// Create records a new movement. Rejected with domain.ErrPeriodClosed when
// the movement's month is closed; nothing is saved.
func (s *Service) Create(ctx context.Context, input Input) (*domain.Movement, error) {
	mov := &domain.Movement{
		ID:           uuid.New(),
		InvestmentID: input.InvestmentID,
		Date:         input.Date,
		Type:         input.Type,
		Currency:     input.Currency,
		Amount:       input.Amount,
	}
	if err := mov.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.InvestmentRepo.GetByID(ctx, input.InvestmentID); err != nil {
		return nil, err
	}

	if err := s.guard(ctx, mov.Year(), mov.Month()); err != nil {
		return nil, err
	}

	if err := s.seal(mov); err != nil {
		return nil, err
	}

	if err := s.MovementRepo.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("failed to save movement: %w", err)
	}

	return mov, nil
}

// Update edits an existing movement. Both the month it currently sits in and
// the month it is being moved to must be open.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (*domain.Movement, error) {
	existing, err := s.MovementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.guard(ctx, existing.Year(), existing.Month()); err != nil {
		return nil, err
	}

	mov := &domain.Movement{
		ID:           existing.ID,
		InvestmentID: input.InvestmentID,
		Date:         input.Date,
		Type:         input.Type,
		Currency:     input.Currency,
		Amount:       input.Amount,
	}
	if err := mov.Validate(); err != nil {
		return nil, err
	}

	if err := s.guard(ctx, mov.Year(), mov.Month()); err != nil {
		return nil, err
	}

	if err := s.seal(mov); err != nil {
		return nil, err
	}

	if err := s.MovementRepo.Update(ctx, mov); err != nil {
		return nil, fmt.Errorf("failed to update movement: %w", err)
	}

	return mov, nil
}

// Delete removes a movement. Rejected when its month is closed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.MovementRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.guard(ctx, existing.Year(), existing.Month()); err != nil {
		return err
	}

	if err := s.MovementRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}

	return nil
}

func (s *Service) guard(ctx context.Context, year, month int) error {
	closes, err := s.MonthCloseRepo.ClosedMonths(ctx, year)
	if err != nil {
		return fmt.Errorf("failed to load closed months: %w", err)
	}
	return closes.MovementEditable(year, month)
}

// seal encrypts the movement amount into the payload when a cipher is
// configured. The stored numeric column then holds a placeholder zero.
func (s *Service) seal(mov *domain.Movement) error {
	if s.Cipher == nil {
		return nil
	}

	payload, err := s.Cipher.Encrypt(domain.NewPlainRecord(mov.Amount, decimal.Zero))
	if err != nil {
		return fmt.Errorf("failed to encrypt movement: %w", err)
	}
	mov.Payload = payload

	return nil
}
