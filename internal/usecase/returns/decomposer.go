// Package returns decomposes month-over-month net-worth change into user
// cash flows and real investment return.
package returns

import (
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/usecase/valuation"
)

// Decomposition is the monthly breakdown of net-worth change.
// The identity Variation[m] = Flows[m] + RealReturns[m] holds exactly for
// every month: RealReturns is defined as the difference.
type Decomposition struct {
	Variation   valuation.Series
	Flows       valuation.Series
	RealReturns valuation.Series
}

// Decompose combines a net-worth series with the aggregated flow series.
//
// Variation for month m < 12 is netWorth[m+1] - netWorth[m]. December has no
// month-13 snapshot, so its variation uses projectedJan, the projected
// next-January value (one more carry-forward step applied to every
// investment's December value).
//
// Real returns isolate investment performance from the user's own deposits
// and withdrawals: realReturns[m] = variation[m] - flows[m].
func Decompose(netWorth valuation.Series, projectedJan decimal.Decimal, flowSeries valuation.Series) Decomposition {
	var d Decomposition
	d.Flows = flowSeries

	for m := 1; m <= 12; m++ {
		next := projectedJan
		if m < 12 {
			next = netWorth.Value(m + 1)
		}
		d.Variation[m-1] = next.Sub(netWorth.Value(m))
		d.RealReturns[m-1] = d.Variation[m-1].Sub(d.Flows[m-1])
	}

	return d
}
