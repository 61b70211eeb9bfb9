package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentClass represents the class of investment in the system
type InvestmentClass string

const (
	ClassPortfolio InvestmentClass = "PORTFOLIO" // subject to modeled compound growth
	ClassAccount   InvestmentClass = "ACCOUNT"   // carried flat between snapshots
)

// Currency represents the currency an amount is denominated in
type Currency string

const (
	CurrencyUSD   Currency = "USD"
	CurrencyLocal Currency = "LOCAL"
)

// Investment represents an investment entity in the domain layer
type Investment struct {
	ID                 uuid.UUID
	Name               string
	Class              InvestmentClass
	Currency           Currency
	TargetAnnualReturn decimal.Decimal // decimal fraction per year (0.08 = 8%/yr); only meaningful for PORTFOLIO
	YieldStartYear     int             // first year from which compounding growth is applied
	YieldStartMonth    int             // first month of YieldStartYear from which growth is applied
}

// Validate ensures the investment adheres to domain rules
// Returns an error if validation fails
func (i *Investment) Validate() error {
	if i.Name == "" {
		return errors.New("investment name cannot be empty")
	}

	if i.Class != ClassPortfolio && i.Class != ClassAccount {
		return errors.New("investment class must be PORTFOLIO or ACCOUNT")
	}

	if i.Currency != CurrencyUSD && i.Currency != CurrencyLocal {
		return errors.New("investment currency must be USD or LOCAL")
	}

	if i.TargetAnnualReturn.IsNegative() {
		return errors.New("target annual return cannot be negative")
	}

	if i.YieldStartMonth < 1 || i.YieldStartMonth > 12 {
		return errors.New("yield start month must be between 1 and 12")
	}

	return nil
}

// YieldStartFor resolves the first month of year from which compounding
// growth applies to this investment:
//   - 13 ("never this year") if the configured start year is after year
//   - the configured month if the start year equals year
//   - 1 if the start year is before year
func (i *Investment) YieldStartFor(year int) int {
	switch {
	case i.YieldStartYear > year:
		return 13
	case i.YieldStartYear == year:
		return i.YieldStartMonth
	default:
		return 1
	}
}
