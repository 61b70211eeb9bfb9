package snapshot

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// MockInvestmentRepository is a mock implementation of InvestmentRepository for testing
type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) List(ctx context.Context) ([]*domain.Investment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *domain.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) Update(ctx context.Context, inv *domain.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvestmentRepository) HasClosedNonZeroValue(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) GetYear(ctx context.Context, investmentID uuid.UUID, year int) ([]*domain.SnapshotMonth, error) {
	args := m.Called(ctx, investmentID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SnapshotMonth), args.Error(1)
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, snap *domain.SnapshotMonth) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// MockMonthCloseRepository is a mock implementation of MonthCloseRepository for testing
type MockMonthCloseRepository struct {
	mock.Mock
}

func (m *MockMonthCloseRepository) ClosedMonths(ctx context.Context, year int) (*domain.MonthCloseSet, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthCloseSet), args.Error(1)
}

// stubCipher is a transparent cipher for testing the encryption plumbing
type stubCipher struct {
	failDecrypt bool
}

func (c *stubCipher) Encrypt(plain domain.PlainRecord) ([]byte, error) {
	return json.Marshal(plain)
}

func (c *stubCipher) Decrypt(payload []byte) (domain.PlainRecord, error) {
	if c.failDecrypt {
		return domain.PlainRecord{}, domain.ErrDecryptionFailed
	}
	var plain domain.PlainRecord
	if err := json.Unmarshal(payload, &plain); err != nil {
		return domain.PlainRecord{}, domain.ErrDecryptionFailed
	}
	return plain, nil
}

func usdInvestment(id uuid.UUID) *domain.Investment {
	return &domain.Investment{
		ID:              id,
		Name:            "Fund A",
		Class:           domain.ClassPortfolio,
		Currency:        domain.CurrencyUSD,
		YieldStartYear:  2024,
		YieldStartMonth: 1,
	}
}

func localInvestment(id uuid.UUID) *domain.Investment {
	inv := usdInvestment(id)
	inv.Currency = domain.CurrencyLocal
	return inv
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestService(cipher domain.Cipher, defaultRate decimal.Decimal) (*Service, *MockInvestmentRepository, *MockSnapshotRepository, *MockMonthCloseRepository) {
	investmentRepo := new(MockInvestmentRepository)
	snapshotRepo := new(MockSnapshotRepository)
	monthCloseRepo := new(MockMonthCloseRepository)
	return NewService(investmentRepo, snapshotRepo, monthCloseRepo, cipher, defaultRate),
		investmentRepo, snapshotRepo, monthCloseRepo
}

func TestUpsert_ClosedMonthRejected(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(nil, decimal.Zero)

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(usdInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).
		Return(domain.NewMonthCloseSet([]domain.MonthClose{{Year: 2024, Month: 5}}), nil)

	// Month 5 itself is closed
	_, err := service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 5, USDAmount: amount("1000"),
	})
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	// Month 6's opening baseline was frozen when month 5 closed
	_, err = service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 6, USDAmount: amount("1000"),
	})
	assert.ErrorIs(t, err, domain.ErrPriorPeriodClosed)

	// Nothing was saved either time
	snapshotRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsert_OpenMonthSucceeds(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(nil, decimal.Zero)

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(usdInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).
		Return(domain.NewMonthCloseSet([]domain.MonthClose{{Year: 2024, Month: 5}}), nil)
	snapshotRepo.On("Upsert", ctx, mock.MatchedBy(func(snap *domain.SnapshotMonth) bool {
		return snap.Month == 7 && snap.Capital.USD.Equal(decimal.NewFromInt(1000))
	})).Return(nil)

	snap, err := service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 7, USDAmount: amount("1000"),
	})

	require.NoError(t, err)
	// USD-native investment: both sides carry the same amount
	assert.True(t, snap.Capital.Native.Equal(decimal.NewFromInt(1000)))
	assert.True(t, snap.Capital.HasRealValue())
	snapshotRepo.AssertExpectations(t)
}

func TestUpsert_NegativeAmountRejected(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(nil, decimal.Zero)

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(usdInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).Return(domain.NewMonthCloseSet(nil), nil)

	_, err := service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 3, USDAmount: amount("-100"),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	snapshotRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsert_MissingAmountsRejected(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(nil, decimal.Zero)

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(usdInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).Return(domain.NewMonthCloseSet(nil), nil)

	_, err := service.Upsert(ctx, UpsertInput{InvestmentID: investmentID, Year: 2024, Month: 3})

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	snapshotRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsert_LocalCurrencyDerivesUSD(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(nil, decimal.NewFromInt(5))

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(localInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).Return(domain.NewMonthCloseSet(nil), nil)
	snapshotRepo.On("Upsert", ctx, mock.Anything).Return(nil)

	snap, err := service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 3, NativeAmount: amount("500"),
	})

	require.NoError(t, err)
	assert.True(t, snap.Capital.USD.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, snap.FXRate)
	assert.True(t, snap.FXRate.Equal(decimal.NewFromInt(5)))
}

func TestUpsert_LocalCurrencyWithoutRateRejected(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(nil, decimal.Zero)

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(localInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).Return(domain.NewMonthCloseSet(nil), nil)

	_, err := service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 3, NativeAmount: amount("500"),
	})

	// Unavailable, not zero: the write must not go through with a made-up value
	assert.ErrorIs(t, err, domain.ErrConversionUnavailable)
	snapshotRepo.AssertNotCalled(t, "Upsert")
}

func TestUpsert_EncryptsWhenCipherConfigured(t *testing.T) {
	ctx := context.Background()
	service, investmentRepo, snapshotRepo, monthCloseRepo := newTestService(&stubCipher{}, decimal.Zero)

	investmentID := uuid.New()
	investmentRepo.On("GetByID", ctx, investmentID).Return(usdInvestment(investmentID), nil)
	monthCloseRepo.On("ClosedMonths", ctx, 2024).Return(domain.NewMonthCloseSet(nil), nil)
	snapshotRepo.On("Upsert", ctx, mock.MatchedBy(func(snap *domain.SnapshotMonth) bool {
		return len(snap.Payload) > 0
	})).Return(nil)

	snap, err := service.Upsert(ctx, UpsertInput{
		InvestmentID: investmentID, Year: 2024, Month: 3, USDAmount: amount("1000"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ValueEncrypted, snap.Capital.State)
	assert.True(t, snap.Capital.ConfirmedZero)
	snapshotRepo.AssertExpectations(t)
}

func TestGetYear_ResolvesEncryptedPayloads(t *testing.T) {
	ctx := context.Background()
	cipher := &stubCipher{}
	service, _, snapshotRepo, _ := newTestService(cipher, decimal.Zero)

	investmentID := uuid.New()
	payload, err := cipher.Encrypt(domain.NewPlainRecord(decimal.NewFromInt(1000), decimal.NewFromInt(1000)))
	require.NoError(t, err)

	snapshotRepo.On("GetYear", ctx, investmentID, 2024).Return([]*domain.SnapshotMonth{
		{
			InvestmentID: investmentID,
			Year:         2024,
			Month:        3,
			Payload:      payload,
			Capital:      domain.EncryptedValue(decimal.Zero, decimal.Zero, false),
		},
	}, nil)

	snaps, err := service.GetYear(ctx, investmentID, 2024)

	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Capital.HasRealValue())
	assert.True(t, snaps[0].Capital.USD.Equal(decimal.NewFromInt(1000)))
	assert.False(t, snaps[0].Failed)
}

func TestGetYear_DecryptionFailureFlagsRecord(t *testing.T) {
	ctx := context.Background()
	service, _, snapshotRepo, _ := newTestService(&stubCipher{failDecrypt: true}, decimal.Zero)

	investmentID := uuid.New()
	snapshotRepo.On("GetYear", ctx, investmentID, 2024).Return([]*domain.SnapshotMonth{
		{
			InvestmentID: investmentID,
			Year:         2024,
			Month:        3,
			Payload:      []byte("garbage"),
			Capital:      domain.EncryptedValue(decimal.Zero, decimal.Zero, false),
		},
	}, nil)

	snaps, err := service.GetYear(ctx, investmentID, 2024)

	require.NoError(t, err)
	require.Len(t, snaps, 1)
	// Flagged and excluded from carry-forward, but still listed for display
	assert.True(t, snaps[0].Failed)
	assert.False(t, snaps[0].Capital.HasRealValue())
}

func TestGetYear_ConfirmedZeroIsRealValue(t *testing.T) {
	ctx := context.Background()
	cipher := &stubCipher{}
	service, _, snapshotRepo, _ := newTestService(cipher, decimal.Zero)

	investmentID := uuid.New()
	payload, err := cipher.Encrypt(domain.NewPlainRecord(decimal.Zero, decimal.Zero))
	require.NoError(t, err)

	snapshotRepo.On("GetYear", ctx, investmentID, 2024).Return([]*domain.SnapshotMonth{
		{
			InvestmentID: investmentID,
			Year:         2024,
			Month:        3,
			Payload:      payload,
			Capital:      domain.EncryptedValue(decimal.Zero, decimal.Zero, false),
		},
	}, nil)

	snaps, err := service.GetYear(ctx, investmentID, 2024)

	require.NoError(t, err)
	// A decrypted zero is a real zero, unlike the stored placeholder
	assert.True(t, snaps[0].Capital.HasRealValue())
	assert.True(t, snaps[0].Capital.USD.IsZero())
}
