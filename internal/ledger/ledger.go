package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/assettrack/internal/domain"
)

// Ledger keeps assets and their owned prices consistent on top of a Storage.
// No method returns storage errors; failures are logged and reported as
// false, absent or empty results.
type Ledger struct {
	storage Storage
	logger  *slog.Logger
	now     func() time.Time
}

// NewLedger creates a Ledger. A nil logger uses slog.Default.
func NewLedger(storage Storage, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{storage: storage, logger: logger, now: time.Now}
}

// Create stores the price first, then the asset referencing it.
// If the asset write fails the price row is left behind; see Orphans.
func (l *Ledger) Create(ctx context.Context, asset domain.Asset) (int64, bool) {
	if err := asset.Validate(l.now()); err != nil {
		l.logger.Warn("ledger: rejected asset", "op", "create", "error", err)
		return 0, false
	}

	priceID, err := l.storage.InsertPrice(ctx, asset.Price)
	if err != nil {
		l.logger.Error("ledger: failed to insert price", "op", "create", "error", err)
		return 0, false
	}

	id, err := l.storage.InsertAsset(ctx, AssetRecord{Asset: asset, PriceID: priceID})
	if err != nil {
		l.logger.Error("ledger: failed to insert asset, price left orphaned",
			"op", "create", "price_id", priceID, "error", err)
		return 0, false
	}

	return id, true
}

// Get returns the asset with its price, or false when absent or unreadable.
func (l *Ledger) Get(ctx context.Context, id int64) (domain.Asset, bool) {
	rec, err := l.storage.GetAsset(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Error("ledger: failed to get asset", "op", "get", "id", id, "error", err)
		}
		return domain.Asset{}, false
	}
	return rec.Asset, true
}

// All returns every asset in creation order.
func (l *Ledger) All(ctx context.Context) []domain.Asset {
	return l.list(ctx, OrderByID, "all")
}

// Sorted returns every asset ordered by office, then purchase date.
func (l *Ledger) Sorted(ctx context.Context) []domain.Asset {
	return l.list(ctx, OrderByOfficeAndDate, "sorted")
}

func (l *Ledger) list(ctx context.Context, order Order, op string) []domain.Asset {
	recs, err := l.storage.ListAssets(ctx, order)
	if err != nil {
		l.logger.Error("ledger: failed to list assets", "op", op, "error", err)
		return []domain.Asset{}
	}
	return lo.Map(recs, func(r AssetRecord, _ int) domain.Asset { return r.Asset })
}

// Update replaces the asset with the same id. Its owned price is rewritten alongside.
func (l *Ledger) Update(ctx context.Context, asset domain.Asset) bool {
	if err := asset.Validate(l.now()); err != nil {
		l.logger.Warn("ledger: rejected asset", "op", "update", "id", asset.ID, "error", err)
		return false
	}

	existing, err := l.storage.GetAsset(ctx, asset.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			l.logger.Error("ledger: failed to load asset", "op", "update", "id", asset.ID, "error", err)
		}
		return false
	}

	if !existing.Price.Equal(asset.Price) {
		ok, err := l.storage.UpdatePrice(ctx, existing.PriceID, asset.Price)
		if err != nil || !ok {
			l.logger.Error("ledger: failed to update price", "op", "update", "id", asset.ID,
				"price_id", existing.PriceID, "error", err)
			return false
		}
	}

	ok, err := l.storage.UpdateAsset(ctx, AssetRecord{Asset: asset, PriceID: existing.PriceID})
	if err != nil {
		l.logger.Error("ledger: failed to update asset", "op", "update", "id", asset.ID, "error", err)
		return false
	}
	return ok
}

// Delete removes the asset; the storage removes its owned price.
func (l *Ledger) Delete(ctx context.Context, id int64) bool {
	ok, err := l.storage.DeleteAsset(ctx, id)
	if err != nil {
		l.logger.Error("ledger: failed to delete asset", "op", "delete", "id", id, "error", err)
		return false
	}
	return ok
}

// CountByKind returns how many assets are of the given kind.
func (l *Ledger) CountByKind(ctx context.Context, kind domain.AssetKind) int {
	return lo.CountBy(l.All(ctx), func(a domain.Asset) bool { return a.Kind == kind })
}

// CountByOffice returns the number of assets per office.
func (l *Ledger) CountByOffice(ctx context.Context) map[domain.Office]int {
	return lo.CountValuesBy(l.All(ctx), func(a domain.Asset) domain.Office { return a.Office })
}

// Orphans returns ids of prices that no asset references.
func (l *Ledger) Orphans(ctx context.Context) []int64 {
	prices, err := l.storage.ListPrices(ctx)
	if err != nil {
		l.logger.Error("ledger: failed to list prices", "op", "orphans", "error", err)
		return []int64{}
	}
	assets, err := l.storage.ListAssets(ctx, OrderByID)
	if err != nil {
		l.logger.Error("ledger: failed to list assets", "op", "orphans", "error", err)
		return []int64{}
	}

	referenced := lo.SliceToMap(assets, func(r AssetRecord) (int64, bool) { return r.PriceID, true })
	return lo.FilterMap(prices, func(p PriceRecord, _ int) (int64, bool) {
		return p.ID, !referenced[p.ID]
	})
}
