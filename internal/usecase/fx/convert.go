// Package fx converts amounts between an investment's native currency and USD.
package fx

import (
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// ToUSD converts an amount in the given currency to USD using rate
// (units of local currency per USD). USD amounts pass through unchanged.
// Returns domain.ErrConversionUnavailable when a conversion is required but
// the rate is not positive; the caller must treat the value as unavailable,
// never as zero.
func ToUSD(amount decimal.Decimal, currency domain.Currency, rate decimal.Decimal) (decimal.Decimal, error) {
	if currency == domain.CurrencyUSD {
		return amount, nil
	}

	if rate.Sign() <= 0 {
		return decimal.Zero, domain.ErrConversionUnavailable
	}

	return amount.Div(rate), nil
}

// ToNative is the inverse of ToUSD: it converts a USD amount back into the
// given currency using the same rate convention.
func ToNative(amountUSD decimal.Decimal, currency domain.Currency, rate decimal.Decimal) (decimal.Decimal, error) {
	if currency == domain.CurrencyUSD {
		return amountUSD, nil
	}

	if rate.Sign() <= 0 {
		return decimal.Zero, domain.ErrConversionUnavailable
	}

	return amountUSD.Mul(rate), nil
}
