// Package valuation reconstructs a dense month-by-month valuation series for
// an investment from its sparse snapshot set.
//
// For every month of the target year there is always a defined value:
// a recorded snapshot if the month has one, otherwise the nearest prior real
// value carried forward (flat for ACCOUNT investments, compounded at the
// target monthly rate for PORTFOLIO investments), otherwise zero.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// Series holds one USD value per calendar month (index 0 = January) of a
// single year.
type Series [12]decimal.Decimal

// Value returns the series value for a month in 1..12
func (s Series) Value(month int) decimal.Decimal {
	return s[month-1]
}

// Add returns the element-wise sum of two series
func (s Series) Add(other Series) Series {
	var out Series
	for i := range s {
		out[i] = s[i].Add(other[i])
	}
	return out
}

// Sum returns the element-wise sum of any number of series
func Sum(series ...Series) Series {
	var out Series
	for _, s := range series {
		out = out.Add(s)
	}
	return out
}

// Build produces the dense 12-month USD valuation series for an investment
// and target year from its recorded snapshots (keyed by month).
//
// Single forward pass over months 1..12:
//  1. A month with a real snapshot value (see CapitalValue.HasRealValue)
//     uses it directly and becomes the new carry-forward base.
//  2. A month with no real value carries the base forward: unchanged for
//     ACCOUNT investments, compounded for PORTFOLIO investments.
//  3. Months before the first real value are zero.
//
// Snapshots whose payload failed to decrypt never have a real value, so they
// neither seed the base nor interrupt an existing carry-forward.
func Build(inv *domain.Investment, snaps map[int]*domain.SnapshotMonth, year int) Series {
	var out Series

	start := inv.YieldStartFor(year)
	base := decimal.Zero
	baseMonth := 0 // 0 = no real value seen yet

	for m := 1; m <= 12; m++ {
		if snap, ok := snaps[m]; ok && snap.Capital.HasRealValue() {
			base = snap.Capital.USD
			baseMonth = m
			out[m-1] = base
			continue
		}

		if baseMonth == 0 {
			continue // stays zero until the first real value
		}

		out[m-1] = project(inv, base, baseMonth, start, m)
	}

	return out
}

// ProjectedNextJanuary returns the investment's projected value for January
// of the following year: the December carry-forward base taken one month
// further. ACCOUNT investments contribute their December value unchanged;
// PORTFOLIO investments get one more compounding step when growth is active.
// Zero when the year has no real snapshot at all.
func ProjectedNextJanuary(inv *domain.Investment, snaps map[int]*domain.SnapshotMonth, year int) decimal.Decimal {
	base := decimal.Zero
	baseMonth := 0

	for m := 1; m <= 12; m++ {
		if snap, ok := snaps[m]; ok && snap.Capital.HasRealValue() {
			base = snap.Capital.USD
			baseMonth = m
		}
	}

	if baseMonth == 0 {
		return decimal.Zero
	}

	return project(inv, base, baseMonth, inv.YieldStartFor(year), 13)
}

// project applies the carry-forward rule to a base value recorded at
// baseMonth, targeting month m (which may be 13 for next January).
// start is the first month growth applies to (13 = never this year).
func project(inv *domain.Investment, base decimal.Decimal, baseMonth, start, m int) decimal.Decimal {
	if inv.Class != domain.ClassPortfolio {
		return base
	}

	from := start
	if baseMonth > from {
		from = baseMonth
	}

	diff := m - from
	if diff <= 0 {
		return base
	}

	return base.Mul(monthlyFactor(inv.TargetAnnualReturn).Pow(decimal.NewFromInt(int64(diff))))
}

// monthlyFactor returns 1 + annual/12: simple monthly compounding at
// one-twelfth of the stated annual rate.
func monthlyFactor(annual decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(annual.Div(decimal.NewFromInt(12)))
}
