package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// investmentRepository implements domain.InvestmentRepository
type investmentRepository struct {
	db *DB
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *DB) domain.InvestmentRepository {
	return &investmentRepository{db: db}
}

const investmentColumns = `id, name, class, currency, target_annual_return, yield_start_year, yield_start_month`

// GetByID retrieves an investment by its ID
func (r *investmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE id = $1
	`

	inv, err := scanInvestment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("investment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	return inv, nil
}

// List retrieves all investments ordered by name
func (r *investmentRepository) List(ctx context.Context) ([]*domain.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []*domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return investments, nil
}

// Create creates a new investment
func (r *investmentRepository) Create(ctx context.Context, inv *domain.Investment) error {
	query := `
		INSERT INTO investments (id, name, class, currency, target_annual_return, yield_start_year, yield_start_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.Name,
		string(inv.Class),
		string(inv.Currency),
		inv.TargetAnnualReturn.String(),
		inv.YieldStartYear,
		inv.YieldStartMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to insert investment: %w", err)
	}

	return nil
}

// Update persists changes to an existing investment
func (r *investmentRepository) Update(ctx context.Context, inv *domain.Investment) error {
	query := `
		UPDATE investments
		SET name = $2, class = $3, currency = $4, target_annual_return = $5,
		    yield_start_year = $6, yield_start_month = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		inv.ID,
		inv.Name,
		string(inv.Class),
		string(inv.Currency),
		inv.TargetAnnualReturn.String(),
		inv.YieldStartYear,
		inv.YieldStartMonth,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("investment %s: %w", inv.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an investment and its dependent snapshots and movements
func (r *investmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM snapshot_months WHERE investment_id = $1`,
		`DELETE FROM movements WHERE investment_id = $1`,
		`DELETE FROM investments WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete investment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	return nil
}

// HasClosedNonZeroValue reports whether any closed month holds a non-zero
// recorded value for the investment. An encrypted record (payload present)
// counts as non-zero: its placeholder columns say nothing about the
// plaintext, so history is preserved conservatively.
func (r *investmentRepository) HasClosedNonZeroValue(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM snapshot_months s
			JOIN month_closes c ON c.year = s.year AND c.month = s.month
			WHERE s.investment_id = $1
			  AND (COALESCE(s.closing_capital, 0) <> 0
			       OR COALESCE(s.closing_capital_usd, 0) <> 0
			       OR s.payload IS NOT NULL)
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check closed values: %w", err)
	}

	return exists, nil
}

// scanInvestment reads one investment row from a row scanner
func scanInvestment(row interface{ Scan(dest ...any) error }) (*domain.Investment, error) {
	var inv domain.Investment
	var class, currency, targetReturn string

	if err := row.Scan(
		&inv.ID,
		&inv.Name,
		&class,
		&currency,
		&targetReturn,
		&inv.YieldStartYear,
		&inv.YieldStartMonth,
	); err != nil {
		return nil, err
	}

	ret, err := decimal.NewFromString(targetReturn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target_annual_return: %w", err)
	}

	inv.Class = domain.InvestmentClass(class)
	inv.Currency = domain.Currency(currency)
	inv.TargetAnnualReturn = ret
	return &inv, nil
}
