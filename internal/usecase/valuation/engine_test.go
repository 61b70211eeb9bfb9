package valuation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

func portfolioInvestment(annualReturn string, startYear, startMonth int) *domain.Investment {
	return &domain.Investment{
		ID:                 uuid.New(),
		Name:               "Fund A",
		Class:              domain.ClassPortfolio,
		Currency:           domain.CurrencyUSD,
		TargetAnnualReturn: decimal.RequireFromString(annualReturn),
		YieldStartYear:     startYear,
		YieldStartMonth:    startMonth,
	}
}

func accountInvestment() *domain.Investment {
	return &domain.Investment{
		ID:       uuid.New(),
		Name:     "Checking",
		Class:    domain.ClassAccount,
		Currency: domain.CurrencyUSD,
	}
}

func realSnapshot(month int, usd string) *domain.SnapshotMonth {
	amount := decimal.RequireFromString(usd)
	return &domain.SnapshotMonth{
		Month:   month,
		Capital: domain.RealValue(amount, amount),
	}
}

func snapshotsByMonth(snaps ...*domain.SnapshotMonth) map[int]*domain.SnapshotMonth {
	out := make(map[int]*domain.SnapshotMonth, len(snaps))
	for _, s := range snaps {
		out[s.Month] = s
	}
	return out
}

func assertMonth(t *testing.T, series Series, month int, expected string) {
	t.Helper()
	want := decimal.RequireFromString(expected)
	got := series.Value(month)
	assert.Truef(t, got.Equal(want), "month %d: expected %s, got %s", month, want, got)
}

func TestBuild_NoSnapshots(t *testing.T) {
	series := Build(portfolioInvestment("0.12", 2020, 1), nil, 2024)

	for m := 1; m <= 12; m++ {
		assertMonth(t, series, m, "0")
	}
}

func TestBuild_ZeroBeforeFirstRealValue(t *testing.T) {
	inv := portfolioInvestment("0.12", 2020, 1)
	snaps := snapshotsByMonth(realSnapshot(3, "1000"))

	series := Build(inv, snaps, 2024)

	assertMonth(t, series, 1, "0")
	assertMonth(t, series, 2, "0")
	assertMonth(t, series, 3, "1000")
}

func TestBuild_CompoundingFromBaseMonth(t *testing.T) {
	// 12%/yr = 1.01 monthly factor; snapshot 1000 at month 3
	inv := portfolioInvestment("0.12", 2020, 1)
	snaps := snapshotsByMonth(realSnapshot(3, "1000"))

	series := Build(inv, snaps, 2024)

	assertMonth(t, series, 4, "1010")
	assertMonth(t, series, 5, "1020.1")
	// month 12 = 1000 x 1.01^9
	expected := decimal.RequireFromString("1000").
		Mul(decimal.RequireFromString("1.01").Pow(decimal.NewFromInt(9)))
	assert.True(t, series.Value(12).Equal(expected))
}

func TestBuild_RealSnapshotInterruptsProjection(t *testing.T) {
	inv := portfolioInvestment("0.12", 2020, 1)
	snaps := snapshotsByMonth(realSnapshot(3, "1000"), realSnapshot(6, "900"))

	series := Build(inv, snaps, 2024)

	// Recorded value wins over the projected 1030.301
	assertMonth(t, series, 6, "900")
	// Projection restarts from the new base
	assertMonth(t, series, 7, "909")
}

func TestBuild_NoGrowthBeforeYieldStart(t *testing.T) {
	// Yield starts at month 6; base snapshot at month 2 carries flat until then
	inv := portfolioInvestment("0.12", 2024, 6)
	snaps := snapshotsByMonth(realSnapshot(2, "1000"))

	series := Build(inv, snaps, 2024)

	for m := 2; m <= 6; m++ {
		assertMonth(t, series, m, "1000")
	}
	assertMonth(t, series, 7, "1010")
	assertMonth(t, series, 8, "1020.1")
}

func TestBuild_YieldStartYearInFuture(t *testing.T) {
	// Configured start year after the target year: no growth at all this year
	inv := portfolioInvestment("0.12", 2025, 1)
	snaps := snapshotsByMonth(realSnapshot(3, "1000"))

	series := Build(inv, snaps, 2024)

	for m := 3; m <= 12; m++ {
		assertMonth(t, series, m, "1000")
	}
}

func TestBuild_YieldStartYearInPast(t *testing.T) {
	// Start year before the target year resolves to month 1; growth runs
	// from the base month
	inv := portfolioInvestment("0.12", 2020, 9)
	snaps := snapshotsByMonth(realSnapshot(1, "1000"))

	series := Build(inv, snaps, 2024)

	assertMonth(t, series, 2, "1010")
}

func TestBuild_AccountCarriesFlat(t *testing.T) {
	inv := accountInvestment()
	snaps := snapshotsByMonth(realSnapshot(2, "5000"))

	series := Build(inv, snaps, 2024)

	assertMonth(t, series, 1, "0")
	for m := 2; m <= 12; m++ {
		assertMonth(t, series, m, "5000")
	}
}

func TestBuild_UndecryptedPlaceholderZeroIsNotData(t *testing.T) {
	inv := accountInvestment()
	snaps := snapshotsByMonth(
		realSnapshot(2, "5000"),
		// Month 4 has an encrypted record whose stored placeholder is zero
		// and was never confirmed by decryption
		&domain.SnapshotMonth{
			Month:   4,
			Payload: []byte("opaque"),
			Capital: domain.EncryptedValue(decimal.Zero, decimal.Zero, false),
		},
	)

	series := Build(inv, snaps, 2024)

	// Carry-forward rolls straight past the placeholder
	assertMonth(t, series, 4, "5000")
	assertMonth(t, series, 5, "5000")
}

func TestBuild_ConfirmedZeroIsData(t *testing.T) {
	inv := accountInvestment()
	snaps := snapshotsByMonth(
		realSnapshot(2, "5000"),
		// Month 4's decryption confirmed a real zero: the account was emptied
		&domain.SnapshotMonth{
			Month:   4,
			Payload: []byte("opaque"),
			Capital: domain.EncryptedValue(decimal.Zero, decimal.Zero, true),
		},
	)

	series := Build(inv, snaps, 2024)

	assertMonth(t, series, 3, "5000")
	assertMonth(t, series, 4, "0")
	assertMonth(t, series, 5, "0")
}

func TestBuild_FailedDecryptionExcludedFromCarryForward(t *testing.T) {
	inv := portfolioInvestment("0.12", 2020, 1)
	snaps := snapshotsByMonth(
		realSnapshot(3, "1000"),
		&domain.SnapshotMonth{Month: 5, Failed: true, Capital: domain.UnsetValue()},
	)

	series := Build(inv, snaps, 2024)

	// The failed record is "no value", not zero: projection continues from month 3
	assertMonth(t, series, 5, "1020.1")
}

func TestProjectedNextJanuary_Portfolio(t *testing.T) {
	inv := portfolioInvestment("0.12", 2020, 1)
	snaps := snapshotsByMonth(realSnapshot(3, "1000"))

	projected := ProjectedNextJanuary(inv, snaps, 2024)

	// One more compounding step past December: 1000 x 1.01^10
	expected := decimal.RequireFromString("1000").
		Mul(decimal.RequireFromString("1.01").Pow(decimal.NewFromInt(10)))
	assert.True(t, projected.Equal(expected))
}

func TestProjectedNextJanuary_Account(t *testing.T) {
	inv := accountInvestment()
	snaps := snapshotsByMonth(realSnapshot(7, "5000"))

	projected := ProjectedNextJanuary(inv, snaps, 2024)

	assert.True(t, projected.Equal(decimal.NewFromInt(5000)))
}

func TestProjectedNextJanuary_NoData(t *testing.T) {
	projected := ProjectedNextJanuary(portfolioInvestment("0.12", 2020, 1), nil, 2024)

	assert.True(t, projected.IsZero())
}

func TestProjectedNextJanuary_FutureYieldStartYear(t *testing.T) {
	// Growth never applies this year, so January projects flat
	inv := portfolioInvestment("0.12", 2025, 1)
	snaps := snapshotsByMonth(realSnapshot(3, "1000"))

	projected := ProjectedNextJanuary(inv, snaps, 2024)

	assert.True(t, projected.Equal(decimal.NewFromInt(1000)))
}

func TestBuild_DecemberSnapshotProjectsOneStep(t *testing.T) {
	inv := portfolioInvestment("0.12", 2020, 1)
	snaps := snapshotsByMonth(realSnapshot(12, "2000"))

	series := Build(inv, snaps, 2024)
	projected := ProjectedNextJanuary(inv, snaps, 2024)

	assertMonth(t, series, 12, "2000")
	assert.True(t, projected.Equal(decimal.RequireFromString("2020")))
}

func TestSum(t *testing.T) {
	a := Series{decimal.NewFromInt(1), decimal.NewFromInt(2)}
	b := Series{decimal.NewFromInt(10), decimal.NewFromInt(20)}

	total := Sum(a, b)

	assert.True(t, total[0].Equal(decimal.NewFromInt(11)))
	assert.True(t, total[1].Equal(decimal.NewFromInt(22)))
	assert.True(t, total[11].IsZero())
}
