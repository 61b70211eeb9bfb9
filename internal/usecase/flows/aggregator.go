// Package flows aggregates signed cash-flow movements into a per-month USD
// series, the "money the user added or removed" side of the return
// decomposition.
package flows

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/fx"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/valuation"
)

// Monthly sums sign(type) x USD(amount) per month over all movements on
// PORTFOLIO investments. classOf maps investment IDs to their class.
//
// Excluded from the aggregation:
//   - yield movements (yield is growth, not a flow; counting it would
//     double-count against the decomposed real return)
//   - movements on ACCOUNT investments (accounts are outside the
//     return-decomposition model)
//   - movements whose payload failed to decrypt (no trustworthy amount)
//
// A movement that requires a currency conversion with an unusable rate is an
// error, not a zero contribution.
func Monthly(movements []*domain.Movement, classOf map[uuid.UUID]domain.InvestmentClass, rate decimal.Decimal) (valuation.Series, error) {
	var out valuation.Series

	for _, mov := range movements {
		if classOf[mov.InvestmentID] != domain.ClassPortfolio {
			continue
		}

		if mov.Failed {
			continue
		}

		sign := mov.Type.Sign()
		if sign == 0 {
			continue
		}

		usd, err := fx.ToUSD(mov.Amount, mov.Currency, rate)
		if err != nil {
			return valuation.Series{}, fmt.Errorf("movement %s: %w", mov.ID, err)
		}

		m := mov.Month()
		if sign < 0 {
			usd = usd.Neg()
		}
		out[m-1] = out[m-1].Add(usd)
	}

	return out, nil
}
