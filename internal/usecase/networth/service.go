package networth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/flows"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/returns"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/valuation"
)

// SnapshotReader provides decrypted snapshots for an investment year
type SnapshotReader interface {
	GetYear(ctx context.Context, investmentID uuid.UUID, year int) ([]*domain.SnapshotMonth, error)
}

// MovementReader provides decrypted movements for a year
type MovementReader interface {
	ListYear(ctx context.Context, year int) ([]*domain.Movement, error)
}

// InvestmentSeries is the dense valuation series of one investment
type InvestmentSeries struct {
	Investment   *domain.Investment
	Values       valuation.Series
	FailedMonths []int // months whose snapshot payload could not be decrypted
}

// YearReport aggregates per-investment valuation series into net-worth
// series and the monthly return decomposition for one year
type YearReport struct {
	Year             int
	Investments      []InvestmentSeries
	Portfolio        valuation.Series // subtotal over PORTFOLIO investments, USD
	Accounts         valuation.Series // subtotal over ACCOUNT investments, USD
	NetWorth         valuation.Series // Portfolio + Accounts
	ProjectedJanuary decimal.Decimal  // projected next-January total, closes the December gap
	Variation        valuation.Series
	Flows            valuation.Series
	RealReturns      valuation.Series
}

// Service orchestrates the read path: load snapshots and movements, build
// each investment's valuation series, aggregate and decompose. Everything is
// recomputed from scratch on every call; derived series are never cached, so
// a currency, rate or data change can never leave stale figures behind.
type Service struct {
	InvestmentRepo domain.InvestmentRepository
	Snapshots      SnapshotReader
	Movements      MovementReader
}

// NewService creates a new net-worth Service instance
func NewService(investmentRepo domain.InvestmentRepository, snapshots SnapshotReader, movements MovementReader) *Service {
	return &Service{
		InvestmentRepo: investmentRepo,
		Snapshots:      snapshots,
		Movements:      movements,
	}
}

// YearReport builds the full valuation and return-decomposition report for a
// year. rate is the current LOCAL-per-USD rate used for movement conversion.
//
// Logic:
//  1. For every investment: load + resolve snapshots, build the dense
//     12-month series and the projected next-January value.
//  2. Sum series into Portfolio / Accounts / NetWorth subtotals.
//  3. Aggregate movement flows (portfolio investments only).
//  4. Decompose variation into flows and real returns.
//
// Aggregation only happens once every investment's data is in; a failed load
// aborts the report rather than producing partial totals.
func (s *Service) YearReport(ctx context.Context, year int, rate decimal.Decimal) (*YearReport, error) {
	investments, err := s.InvestmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	report := &YearReport{Year: year}
	classOf := make(map[uuid.UUID]domain.InvestmentClass, len(investments))
	projected := decimal.Zero

	for _, inv := range investments {
		classOf[inv.ID] = inv.Class

		snaps, err := s.Snapshots.GetYear(ctx, inv.ID, year)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshots for %s: %w", inv.Name, err)
		}

		byMonth := make(map[int]*domain.SnapshotMonth, len(snaps))
		var failed []int
		for _, snap := range snaps {
			byMonth[snap.Month] = snap
			if snap.Failed {
				failed = append(failed, snap.Month)
			}
		}

		series := valuation.Build(inv, byMonth, year)
		projected = projected.Add(valuation.ProjectedNextJanuary(inv, byMonth, year))

		report.Investments = append(report.Investments, InvestmentSeries{
			Investment:   inv,
			Values:       series,
			FailedMonths: failed,
		})

		if inv.Class == domain.ClassPortfolio {
			report.Portfolio = report.Portfolio.Add(series)
		} else {
			report.Accounts = report.Accounts.Add(series)
		}
	}

	report.NetWorth = report.Portfolio.Add(report.Accounts)
	report.ProjectedJanuary = projected

	movements, err := s.Movements.ListYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load movements: %w", err)
	}

	flowSeries, err := flows.Monthly(movements, classOf, rate)
	if err != nil {
		return nil, err
	}

	decomposition := returns.Decompose(report.NetWorth, report.ProjectedJanuary, flowSeries)
	report.Variation = decomposition.Variation
	report.Flows = decomposition.Flows
	report.RealReturns = decomposition.RealReturns

	return report, nil
}
