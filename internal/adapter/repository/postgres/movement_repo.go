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

// movementRepository implements domain.MovementRepository
type movementRepository struct {
	db *DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *DB) domain.MovementRepository {
	return &movementRepository{db: db}
}

const movementColumns = `id, investment_id, date, type, currency, amount, payload`

// GetByID retrieves a movement by its ID
func (r *movementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE id = $1
	`

	mov, err := scanMovement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("movement %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}

	return mov, nil
}

// ListYear retrieves all movements dated in the year, across investments
func (r *movementRepository) ListYear(ctx context.Context, year int) ([]*domain.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE date >= make_date($1, 1, 1) AND date < make_date($1 + 1, 1, 1)
		ORDER BY date, id
	`

	rows, err := r.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var movements []*domain.Movement
	for rows.Next() {
		mov, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, mov)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}

	return movements, nil
}

// Create creates a new movement. When the movement carries a payload the
// amount column is written as a placeholder zero.
func (r *movementRepository) Create(ctx context.Context, mov *domain.Movement) error {
	query := `
		INSERT INTO movements (id, investment_id, date, type, currency, amount, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		mov.ID,
		mov.InvestmentID,
		mov.Date,
		string(mov.Type),
		string(mov.Currency),
		storedAmount(mov).String(),
		mov.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	return nil
}

// Update persists changes to an existing movement
func (r *movementRepository) Update(ctx context.Context, mov *domain.Movement) error {
	query := `
		UPDATE movements
		SET investment_id = $2, date = $3, type = $4, currency = $5, amount = $6, payload = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		mov.ID,
		mov.InvestmentID,
		mov.Date,
		string(mov.Type),
		string(mov.Currency),
		storedAmount(mov).String(),
		mov.Payload,
	)
	if err != nil {
		return fmt.Errorf("failed to update movement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movement %s: %w", mov.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a movement
func (r *movementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("movement %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// storedAmount returns the amount to persist: a placeholder zero when the
// real amount lives inside the encrypted payload
func storedAmount(mov *domain.Movement) decimal.Decimal {
	if len(mov.Payload) > 0 {
		return decimal.Zero
	}
	return mov.Amount
}

// scanMovement reads one movement row from a row scanner
func scanMovement(row interface{ Scan(dest ...any) error }) (*domain.Movement, error) {
	var mov domain.Movement
	var movType, currency, amount string

	if err := row.Scan(
		&mov.ID,
		&mov.InvestmentID,
		&mov.Date,
		&movType,
		&currency,
		&amount,
		&mov.Payload,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}

	mov.Type = domain.MovementType(movType)
	mov.Currency = domain.Currency(currency)
	mov.Amount = parsed
	return &mov, nil
}
