package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
)

// PgRateRepository implements TableRepository with PostgreSQL.
type PgRateRepository struct {
	pool *pgxpool.Pool
}

// NewPgRateRepository creates a new PostgreSQL rate repository.
func NewPgRateRepository(pool *pgxpool.Pool) *PgRateRepository {
	return &PgRateRepository{pool: pool}
}

// SaveTable replaces the stored table. Fallback tables are not stored.
func (r *PgRateRepository) SaveTable(ctx context.Context, table domain.RateTable) error {
	if !table.IsLive() {
		return nil
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM exchange_rates`); err != nil {
			return fmt.Errorf("clearing exchange rates: %w", err)
		}
		for currency, rate := range table.Rates() {
			_, err := tx.Exec(ctx,
				`INSERT INTO exchange_rates (currency, rate, updated_at) VALUES ($1, $2, $3)`,
				string(currency), rate, table.UpdatedAt())
			if err != nil {
				return fmt.Errorf("saving rate for %s: %w", currency, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving exchange rates: %w", err)
	}
	return nil
}

// LoadTable returns the stored table, or ErrNoRates when nothing was saved.
func (r *PgRateRepository) LoadTable(ctx context.Context) (domain.RateTable, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT currency, rate, updated_at FROM exchange_rates ORDER BY currency`)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("loading exchange rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[domain.Currency]decimal.Decimal)
	var updatedAt time.Time
	for rows.Next() {
		var (
			code string
			rate decimal.Decimal
			at   time.Time
		)
		if err := rows.Scan(&code, &rate, &at); err != nil {
			return domain.RateTable{}, fmt.Errorf("scanning exchange rate: %w", err)
		}
		rates[domain.Currency(code)] = rate
		if updatedAt.IsZero() || at.Before(updatedAt) {
			updatedAt = at
		}
	}
	if err := rows.Err(); err != nil {
		return domain.RateTable{}, fmt.Errorf("iterating exchange rates: %w", err)
	}

	if len(rates) == 0 {
		return domain.RateTable{}, ErrNoRates
	}
	return domain.NewRateTable(rates, updatedAt, domain.RateSourceLive), nil
}
