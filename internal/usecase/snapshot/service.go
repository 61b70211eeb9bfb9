package snapshot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/fx"
)

// UpsertInput represents the input for writing a snapshot month.
// At least one of NativeAmount / USDAmount must be set; the missing side is
// derived with the supplied rate (or the service default).
type UpsertInput struct {
	InvestmentID uuid.UUID
	Year         int
	Month        int
	NativeAmount *decimal.Decimal
	USDAmount    *decimal.Decimal
	FXRate       *decimal.Decimal // overrides the default rate for this entry
}

// Service handles snapshot read/write operations. The read path resolves
// encrypted payloads through the cipher; the write path enforces the
// closed-period rules and encrypts when a cipher is configured.
type Service struct {
	InvestmentRepo domain.InvestmentRepository
	SnapshotRepo   domain.SnapshotRepository
	MonthCloseRepo domain.MonthCloseRepository
	Cipher         domain.Cipher   // nil = store amounts in the clear
	DefaultRate    decimal.Decimal // current LOCAL-per-USD rate from configuration
}

// NewService creates a new snapshot Service instance
func NewService(
	investmentRepo domain.InvestmentRepository,
	snapshotRepo domain.SnapshotRepository,
	monthCloseRepo domain.MonthCloseRepository,
	cipher domain.Cipher,
	defaultRate decimal.Decimal,
) *Service {
	return &Service{
		InvestmentRepo: investmentRepo,
		SnapshotRepo:   snapshotRepo,
		MonthCloseRepo: monthCloseRepo,
		Cipher:         cipher,
		DefaultRate:    defaultRate,
	}
}

// GetYear retrieves the recorded snapshots for (investment, year) with
// encrypted payloads resolved. A record whose payload cannot be decrypted
// comes back with Failed=true and an unset capital value: it is still listed
// (the caller renders it as a dash) but will never seed carry-forward.
func (s *Service) GetYear(ctx context.Context, investmentID uuid.UUID, year int) ([]*domain.SnapshotMonth, error) {
	snaps, err := s.SnapshotRepo.GetYear(ctx, investmentID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	for _, snap := range snaps {
		s.resolve(snap)
	}

	return snaps, nil
}

// resolve replaces an encrypted record's placeholder amounts with the
// decrypted plaintext. Without a cipher the record stays in its unconfirmed
// state (placeholder zeros are not real values).
func (s *Service) resolve(snap *domain.SnapshotMonth) {
	if len(snap.Payload) == 0 || s.Cipher == nil {
		return
	}

	plain, err := s.Cipher.Decrypt(snap.Payload)
	if err != nil {
		snap.Failed = true
		snap.Capital = domain.UnsetValue()
		return
	}

	native, usd, err := plain.Amounts()
	if err != nil {
		snap.Failed = true
		snap.Capital = domain.UnsetValue()
		return
	}

	snap.Capital = domain.EncryptedValue(native, usd, true)
}

// Upsert writes the snapshot for (investment, year, month).
// Logic:
//  1. Reject when the month, or the preceding month, is closed
//     (domain.ErrPeriodClosed / domain.ErrPriorPeriodClosed); nothing is saved.
//  2. Reject missing or negative amounts (domain.ErrInvalidAmount).
//  3. Derive the missing currency side via fx with the entry's rate or the
//     configured default.
//  4. Encrypt the amounts into the payload when a cipher is configured; the
//     stored numeric columns then hold placeholder zeros.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*domain.SnapshotMonth, error) {
	if input.Month < 1 || input.Month > 12 {
		return nil, domain.ErrInvalidAmount
	}

	inv, err := s.InvestmentRepo.GetByID(ctx, input.InvestmentID)
	if err != nil {
		return nil, err
	}

	closes, err := s.MonthCloseRepo.ClosedMonths(ctx, input.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to load closed months: %w", err)
	}
	if err := closes.SnapshotEditable(input.Year, input.Month); err != nil {
		return nil, err
	}

	native, usd, rateUsed, err := s.resolveAmounts(inv, input)
	if err != nil {
		return nil, err
	}

	snap := &domain.SnapshotMonth{
		InvestmentID: input.InvestmentID,
		Year:         input.Year,
		Month:        input.Month,
		Capital:      domain.RealValue(native, usd),
		FXRate:       rateUsed,
	}

	if s.Cipher != nil {
		payload, err := s.Cipher.Encrypt(domain.NewPlainRecord(native, usd))
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt snapshot: %w", err)
		}
		snap.Payload = payload
		snap.Capital = domain.EncryptedValue(native, usd, true)
	}

	if err := s.SnapshotRepo.Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return snap, nil
}

// resolveAmounts validates the input amounts and fills in whichever currency
// side is missing
func (s *Service) resolveAmounts(inv *domain.Investment, input UpsertInput) (native, usd decimal.Decimal, rateUsed *decimal.Decimal, err error) {
	if input.NativeAmount == nil && input.USDAmount == nil {
		return decimal.Zero, decimal.Zero, nil, domain.ErrInvalidAmount
	}
	if input.NativeAmount != nil && input.NativeAmount.IsNegative() {
		return decimal.Zero, decimal.Zero, nil, domain.ErrInvalidAmount
	}
	if input.USDAmount != nil && input.USDAmount.IsNegative() {
		return decimal.Zero, decimal.Zero, nil, domain.ErrInvalidAmount
	}

	rate := s.DefaultRate
	if input.FXRate != nil {
		rate = *input.FXRate
	}
	if inv.Currency == domain.CurrencyLocal {
		r := rate
		rateUsed = &r
	}

	switch {
	case inv.Currency == domain.CurrencyUSD:
		// Both sides are the same amount for USD-native investments
		if input.USDAmount != nil {
			usd = *input.USDAmount
		} else {
			usd = *input.NativeAmount
		}
		native = usd

	case input.NativeAmount != nil && input.USDAmount != nil:
		native, usd = *input.NativeAmount, *input.USDAmount

	case input.NativeAmount != nil:
		native = *input.NativeAmount
		usd, err = fx.ToUSD(native, inv.Currency, rate)
		if err != nil {
			return decimal.Zero, decimal.Zero, nil, err
		}

	default:
		usd = *input.USDAmount
		native, err = fx.ToNative(usd, inv.Currency, rate)
		if err != nil {
			return decimal.Zero, decimal.Zero, nil, err
		}
	}

	return native, usd, rateUsed, nil
}
