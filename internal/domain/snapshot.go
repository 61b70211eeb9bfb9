package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueState tags the state of a snapshot's closing capital
type ValueState string

const (
	// ValueUnset means no value was recorded for the month
	ValueUnset ValueState = "UNSET"
	// ValueReal means the amounts were recorded in the clear and are authoritative
	ValueReal ValueState = "REAL"
	// ValueEncrypted means the amounts came with an encrypted payload; they are
	// only trustworthy once the payload has been decrypted
	ValueEncrypted ValueState = "ENCRYPTED"
)

// CapitalValue is the tagged closing-capital value of a snapshot month.
// The tag exists because an encrypted record is stored server-side with a
// placeholder zero: a zero amount on an ENCRYPTED value that was never
// confirmed by decryption is NOT a real zero and must not seed carry-forward.
type CapitalValue struct {
	State         ValueState
	Native        decimal.Decimal // amount in the investment's native currency
	USD           decimal.Decimal
	ConfirmedZero bool // ENCRYPTED only: decryption confirmed the plaintext amounts
}

// UnsetValue returns the "no recorded value" capital value
func UnsetValue() CapitalValue {
	return CapitalValue{State: ValueUnset}
}

// RealValue returns a capital value recorded in the clear
func RealValue(native, usd decimal.Decimal) CapitalValue {
	return CapitalValue{State: ValueReal, Native: native, USD: usd}
}

// EncryptedValue returns a capital value backed by an encrypted payload.
// confirmed is true when the amounts come from a successful decryption.
func EncryptedValue(native, usd decimal.Decimal, confirmed bool) CapitalValue {
	return CapitalValue{State: ValueEncrypted, Native: native, USD: usd, ConfirmedZero: confirmed}
}

// HasRealValue reports whether this capital value may seed carry-forward and
// growth projection. An undecrypted placeholder zero must answer false; a
// decryption-confirmed zero must answer true. Every derived month downstream
// depends on this distinction.
func (v CapitalValue) HasRealValue() bool {
	switch v.State {
	case ValueUnset:
		return false
	case ValueEncrypted:
		if v.Native.IsZero() && v.USD.IsZero() && !v.ConfirmedZero {
			return false
		}
		return true
	default:
		return true
	}
}

// SnapshotMonth represents the recorded closing balance of an investment for
// a specific (year, month). Absence of a record means the month's value must
// be derived by carry-forward.
type SnapshotMonth struct {
	InvestmentID uuid.UUID
	Year         int
	Month        int // 1..12
	Capital      CapitalValue
	Payload      []byte           // opaque ciphertext; nil when the record is stored in the clear
	FXRate       *decimal.Decimal // rate used when the amounts were entered, if any
	Failed       bool             // payload present but could not be decrypted; display as dash, never as 0
	IsClosed     bool             // mirrors whether (Year, Month) is a closed period
}

// Validate ensures the snapshot adheres to domain rules
func (s *SnapshotMonth) Validate() error {
	if s.Month < 1 || s.Month > 12 {
		return ErrInvalidAmount
	}
	if s.Capital.Native.IsNegative() || s.Capital.USD.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// PlainRecord is the plaintext carried inside an encrypted payload.
// Amounts travel as strings so the encoded bytes are stable regardless of
// the decimal library's internal representation.
type PlainRecord struct {
	Native string `msgpack:"native"`
	USD    string `msgpack:"usd"`
	IsZero bool   `msgpack:"is_zero"` // the amounts are a confirmed real zero
}

// NewPlainRecord builds the plaintext record for a pair of amounts
func NewPlainRecord(native, usd decimal.Decimal) PlainRecord {
	return PlainRecord{
		Native: native.String(),
		USD:    usd.String(),
		IsZero: native.IsZero() && usd.IsZero(),
	}
}

// Amounts decodes the record's amounts back into decimals
func (p PlainRecord) Amounts() (native, usd decimal.Decimal, err error) {
	native, err = decimal.NewFromString(p.Native)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	usd, err = decimal.NewFromString(p.USD)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return native, usd, nil
}
