package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of cash-flow movement
type MovementType string

const (
	MovementDeposit    MovementType = "deposit"
	MovementWithdrawal MovementType = "withdrawal"
	MovementYield      MovementType = "yield" // growth, not a flow; excluded from flow accounting
)

// Sign returns the flow sign of the movement type: +1 for deposits,
// -1 for withdrawals, 0 for yield (yield is not a flow)
func (t MovementType) Sign() int {
	switch t {
	case MovementDeposit:
		return 1
	case MovementWithdrawal:
		return -1
	default:
		return 0
	}
}

// Valid reports whether the movement type is one of the known types
func (t MovementType) Valid() bool {
	return t == MovementDeposit || t == MovementWithdrawal || t == MovementYield
}

// Movement represents a cash-flow movement on an investment.
// Amount is always non-negative; the sign is derived from Type.
type Movement struct {
	ID           uuid.UUID
	InvestmentID uuid.UUID
	Date         time.Time
	Type         MovementType
	Currency     Currency
	Amount       decimal.Decimal
	Payload      []byte // opaque ciphertext; nil when stored in the clear
	Failed       bool   // payload present but could not be decrypted
}

// Year returns the calendar year the movement is dated in
func (m *Movement) Year() int {
	return m.Date.Year()
}

// Month returns the calendar month (1..12) the movement is dated in
func (m *Movement) Month() int {
	return int(m.Date.Month())
}

// Validate ensures the movement adheres to domain rules
// Returns an error if validation fails
func (m *Movement) Validate() error {
	if m.InvestmentID == uuid.Nil {
		return errors.New("movement must reference an investment")
	}

	if !m.Type.Valid() {
		return errors.New("movement type must be deposit, withdrawal or yield")
	}

	if m.Currency != CurrencyUSD && m.Currency != CurrencyLocal {
		return errors.New("movement currency must be USD or LOCAL")
	}

	if m.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	if m.Date.IsZero() {
		return errors.New("movement date cannot be empty")
	}

	return nil
}
