package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
)

const selectAssets = `
	SELECT a.id, a.kind, a.brand, a.model, a.office, a.purchase_date, a.price_id, p.amount, p.currency
	FROM assets a
	JOIN prices p ON p.id = a.price_id`

// PgStorage implements Storage with PostgreSQL.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a new PostgreSQL storage.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

func (s *PgStorage) InsertPrice(ctx context.Context, price domain.MonetaryValue) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO prices (amount, currency) VALUES ($1, $2) RETURNING id`,
		price.Amount, string(price.Currency)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting price: %w", err)
	}
	return id, nil
}

func (s *PgStorage) UpdatePrice(ctx context.Context, id int64, price domain.MonetaryValue) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE prices SET amount = $2, currency = $3 WHERE id = $1`,
		id, price.Amount, string(price.Currency))
	if err != nil {
		return false, fmt.Errorf("updating price %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgStorage) ListPrices(ctx context.Context) ([]PriceRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, amount, currency FROM prices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing prices: %w", err)
	}
	defer rows.Close()

	var prices []PriceRecord
	for rows.Next() {
		var (
			p        PriceRecord
			currency string
		)
		if err := rows.Scan(&p.ID, &p.Value.Amount, &currency); err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		p.Value.Currency = domain.Currency(currency)
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prices: %w", err)
	}
	return prices, nil
}

func (s *PgStorage) InsertAsset(ctx context.Context, rec AssetRecord) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO assets (kind, brand, model, office, purchase_date, price_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		string(rec.Kind), rec.Brand, rec.Model, string(rec.Office), rec.PurchaseDate, rec.PriceID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting asset: %w", err)
	}
	return id, nil
}

func (s *PgStorage) GetAsset(ctx context.Context, id int64) (AssetRecord, error) {
	rec, err := scanAsset(s.pool.QueryRow(ctx, selectAssets+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AssetRecord{}, ErrNotFound
		}
		return AssetRecord{}, fmt.Errorf("getting asset %d: %w", id, err)
	}
	return rec, nil
}

func (s *PgStorage) ListAssets(ctx context.Context, order Order) ([]AssetRecord, error) {
	query := selectAssets + ` ORDER BY a.id`
	if order == OrderByOfficeAndDate {
		query = selectAssets + ` ORDER BY a.office, a.purchase_date, a.id`
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var recs []AssetRecord
	for rows.Next() {
		rec, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assets: %w", err)
	}
	return recs, nil
}

func (s *PgStorage) UpdateAsset(ctx context.Context, rec AssetRecord) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE assets SET kind = $2, brand = $3, model = $4, office = $5, purchase_date = $6
		 WHERE id = $1`,
		rec.ID, string(rec.Kind), rec.Brand, rec.Model, string(rec.Office), rec.PurchaseDate)
	if err != nil {
		return false, fmt.Errorf("updating asset %d: %w", rec.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteAsset removes the asset and its price in one transaction.
func (s *PgStorage) DeleteAsset(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var priceID int64
		err := tx.QueryRow(ctx, `DELETE FROM assets WHERE id = $1 RETURNING price_id`, id).Scan(&priceID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM prices WHERE id = $1`, priceID); err != nil {
			return fmt.Errorf("deleting price %d: %w", priceID, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("deleting asset %d: %w", id, err)
	}
	return deleted, nil
}

func scanAsset(row pgx.Row) (AssetRecord, error) {
	var (
		rec                    AssetRecord
		kind, office, currency string
		amount                 decimal.Decimal
	)
	err := row.Scan(&rec.ID, &kind, &rec.Brand, &rec.Model, &office, &rec.PurchaseDate, &rec.PriceID, &amount, &currency)
	if err != nil {
		return AssetRecord{}, err
	}
	rec.Kind = domain.AssetKind(kind)
	rec.Office = domain.Office(office)
	rec.Price = domain.MonetaryValue{Amount: amount, Currency: domain.Currency(currency)}
	return rec, nil
}
