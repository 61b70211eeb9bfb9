package postgres

import (
	"context"
	"fmt"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// monthCloseRepository implements domain.MonthCloseRepository
type monthCloseRepository struct {
	db *DB
}

// NewMonthCloseRepository creates a new month-close repository
func NewMonthCloseRepository(db *DB) domain.MonthCloseRepository {
	return &monthCloseRepository{db: db}
}

// ClosedMonths retrieves the closed periods of the year and the prior year,
// so January snapshot edits can check the preceding December
func (r *monthCloseRepository) ClosedMonths(ctx context.Context, year int) (*domain.MonthCloseSet, error) {
	query := `
		SELECT year, month
		FROM month_closes
		WHERE year = $1 OR year = $2
	`

	rows, err := r.db.QueryContext(ctx, query, year, year-1)
	if err != nil {
		return nil, fmt.Errorf("failed to query month closes: %w", err)
	}
	defer rows.Close()

	var closes []domain.MonthClose
	for rows.Next() {
		var c domain.MonthClose
		if err := rows.Scan(&c.Year, &c.Month); err != nil {
			return nil, fmt.Errorf("failed to scan month close: %w", err)
		}
		closes = append(closes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate month closes: %w", err)
	}

	return domain.NewMonthCloseSet(closes), nil
}
