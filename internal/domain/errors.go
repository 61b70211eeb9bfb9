package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across use cases and adapters.
// Wrap with fmt.Errorf("...: %w", err) to add context; match with errors.Is.
var (
	// ErrNotFound is returned when an entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrPeriodClosed is returned when a write targets a month that is closed
	ErrPeriodClosed = errors.New("month is closed")

	// ErrPriorPeriodClosed is returned when a snapshot write targets a month
	// whose preceding month is closed. It matches ErrPeriodClosed under
	// errors.Is so callers that only care about "locked" need one check.
	ErrPriorPeriodClosed = fmt.Errorf("previous %w", ErrPeriodClosed)

	// ErrInvalidAmount is returned for negative, unparsable or otherwise
	// disallowed amounts; the write is rejected before any mutation
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrConversionUnavailable is returned when a currency conversion is
	// required but the rate is not positive. The result is "unavailable",
	// never zero.
	ErrConversionUnavailable = errors.New("currency conversion unavailable")

	// ErrDecryptionFailed is returned when an encrypted payload is present
	// but unreadable
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrHasClosedValues is returned when deleting an investment that holds
	// a non-zero recorded value in a closed month
	ErrHasClosedValues = errors.New("investment has recorded values in closed months")
)
