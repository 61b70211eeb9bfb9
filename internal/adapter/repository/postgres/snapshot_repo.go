package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// GetYear retrieves all recorded snapshots for (investment, year).
// Encrypted records come back in their unconfirmed state (placeholder
// amounts, ConfirmedZero=false); the snapshot service resolves them.
func (r *snapshotRepository) GetYear(ctx context.Context, investmentID uuid.UUID, year int) ([]*domain.SnapshotMonth, error) {
	query := `
		SELECT s.investment_id, s.year, s.month,
		       s.closing_capital, s.closing_capital_usd, s.fx_rate, s.payload,
		       EXISTS (
		           SELECT 1 FROM month_closes c
		           WHERE c.year = s.year AND c.month = s.month
		       ) AS is_closed
		FROM snapshot_months s
		WHERE s.investment_id = $1 AND s.year = $2
		ORDER BY s.month
	`

	rows, err := r.db.QueryContext(ctx, query, investmentID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.SnapshotMonth
	for rows.Next() {
		var snap domain.SnapshotMonth
		var native, usd, rate sql.NullString
		var payload []byte

		if err := rows.Scan(
			&snap.InvestmentID,
			&snap.Year,
			&snap.Month,
			&native,
			&usd,
			&rate,
			&payload,
			&snap.IsClosed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snap.Payload = payload

		nativeAmount, err := nullDecimal(native)
		if err != nil {
			return nil, fmt.Errorf("failed to parse closing_capital: %w", err)
		}
		usdAmount, err := nullDecimal(usd)
		if err != nil {
			return nil, fmt.Errorf("failed to parse closing_capital_usd: %w", err)
		}

		switch {
		case len(payload) > 0:
			// Stored columns are placeholders until the payload is decrypted
			snap.Capital = domain.EncryptedValue(nativeAmount, usdAmount, false)
		case !native.Valid && !usd.Valid:
			snap.Capital = domain.UnsetValue()
		default:
			snap.Capital = domain.RealValue(nativeAmount, usdAmount)
		}

		if rate.Valid {
			r, err := decimal.NewFromString(rate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse fx_rate: %w", err)
			}
			snap.FXRate = &r
		}

		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snaps, nil
}

// Upsert inserts or replaces the snapshot for (investment, year, month).
// When the snapshot carries a payload the numeric columns are written as
// placeholder zeros; the real amounts live only inside the ciphertext.
func (r *snapshotRepository) Upsert(ctx context.Context, snap *domain.SnapshotMonth) error {
	query := `
		INSERT INTO snapshot_months (investment_id, year, month, closing_capital, closing_capital_usd, fx_rate, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (investment_id, year, month)
		DO UPDATE SET closing_capital = EXCLUDED.closing_capital,
		              closing_capital_usd = EXCLUDED.closing_capital_usd,
		              fx_rate = EXCLUDED.fx_rate,
		              payload = EXCLUDED.payload
	`

	native := snap.Capital.Native
	usd := snap.Capital.USD
	if len(snap.Payload) > 0 {
		native, usd = decimal.Zero, decimal.Zero
	}

	var rate any
	if snap.FXRate != nil {
		rate = snap.FXRate.String()
	}

	_, err := r.db.ExecContext(ctx, query,
		snap.InvestmentID,
		snap.Year,
		snap.Month,
		native.String(),
		usd.String(),
		rate,
		snap.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// nullDecimal parses a nullable decimal column, defaulting to zero
func nullDecimal(v sql.NullString) (decimal.Decimal, error) {
	if !v.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(v.String)
}
