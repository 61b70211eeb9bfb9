package domain

import (
	"context"

	"github.com/google/uuid"
)

// InvestmentRepository defines the interface for investment persistence operations
type InvestmentRepository interface {
	// GetByID retrieves an investment by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Investment, error)

	// List retrieves all investments
	List(ctx context.Context) ([]*Investment, error)

	// Create creates a new investment
	Create(ctx context.Context, inv *Investment) error

	// Update persists changes to an existing investment
	Update(ctx context.Context, inv *Investment) error

	// Delete removes an investment and its snapshots/movements
	Delete(ctx context.Context, id uuid.UUID) error

	// HasClosedNonZeroValue reports whether any closed month holds a
	// non-zero recorded value for the investment
	HasClosedNonZeroValue(ctx context.Context, id uuid.UUID) (bool, error)
}

// SnapshotRepository defines the interface for snapshot persistence operations
type SnapshotRepository interface {
	// GetYear retrieves all recorded snapshots for (investment, year)
	GetYear(ctx context.Context, investmentID uuid.UUID, year int) ([]*SnapshotMonth, error)

	// Upsert inserts or replaces the snapshot for (investment, year, month)
	Upsert(ctx context.Context, snap *SnapshotMonth) error
}

// MovementRepository defines the interface for movement persistence operations
type MovementRepository interface {
	// GetByID retrieves a movement by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// ListYear retrieves all movements dated in the year, across investments
	ListYear(ctx context.Context, year int) ([]*Movement, error)

	// Create creates a new movement
	Create(ctx context.Context, mov *Movement) error

	// Update persists changes to an existing movement
	Update(ctx context.Context, mov *Movement) error

	// Delete removes a movement
	Delete(ctx context.Context, id uuid.UUID) error
}

// MonthCloseRepository defines the interface for reading closed periods
type MonthCloseRepository interface {
	// ClosedMonths retrieves the closed periods of the year plus the prior
	// year, so January snapshot edits can check the preceding December
	ClosedMonths(ctx context.Context, year int) (*MonthCloseSet, error)
}

// Cipher is the opaque encryption capability consumed by the snapshot and
// movement read/write paths. Implementations are interchangeable; the domain
// never inspects payloads.
type Cipher interface {
	Encrypt(plain PlainRecord) ([]byte, error)
	Decrypt(payload []byte) (PlainRecord, error)
}
