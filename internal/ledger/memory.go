package ledger

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mtlprog/assettrack/internal/domain"
)

// MemoryStorage is an in-process Storage used when no database is configured and in tests.
type MemoryStorage struct {
	mu          sync.RWMutex
	prices      map[int64]domain.MonetaryValue
	assets      map[int64]AssetRecord
	nextPriceID int64
	nextAssetID int64
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		prices: make(map[int64]domain.MonetaryValue),
		assets: make(map[int64]AssetRecord),
	}
}

func (s *MemoryStorage) InsertPrice(_ context.Context, price domain.MonetaryValue) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPriceID++
	s.prices[s.nextPriceID] = price
	return s.nextPriceID, nil
}

func (s *MemoryStorage) UpdatePrice(_ context.Context, id int64, price domain.MonetaryValue) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[id]; !ok {
		return false, nil
	}
	s.prices[id] = price
	return true, nil
}

func (s *MemoryStorage) ListPrices(_ context.Context) ([]PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(s.prices))
	out := make([]PriceRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, PriceRecord{ID: id, Value: s.prices[id]})
	}
	return out, nil
}

func (s *MemoryStorage) InsertAsset(_ context.Context, rec AssetRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[rec.PriceID]; !ok {
		return 0, fmt.Errorf("inserting asset: price %d: %w", rec.PriceID, ErrNotFound)
	}
	s.nextAssetID++
	rec.ID = s.nextAssetID
	s.assets[rec.ID] = rec
	return rec.ID, nil
}

func (s *MemoryStorage) GetAsset(_ context.Context, id int64) (AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.assets[id]
	if !ok {
		return AssetRecord{}, ErrNotFound
	}
	return s.withPrice(rec), nil
}

func (s *MemoryStorage) ListAssets(_ context.Context, order Order) ([]AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]AssetRecord, 0, len(s.assets))
	for _, rec := range s.assets {
		out = append(out, s.withPrice(rec))
	}

	slices.SortFunc(out, func(a, b AssetRecord) int {
		if order == OrderByOfficeAndDate {
			if c := cmp.Compare(a.Office, b.Office); c != 0 {
				return c
			}
			if c := a.PurchaseDate.Compare(b.PurchaseDate); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStorage) UpdateAsset(_ context.Context, rec AssetRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.assets[rec.ID]
	if !ok {
		return false, nil
	}
	rec.PriceID = existing.PriceID
	s.assets[rec.ID] = rec
	return true, nil
}

func (s *MemoryStorage) DeleteAsset(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.assets[id]
	if !ok {
		return false, nil
	}
	delete(s.assets, id)
	delete(s.prices, rec.PriceID)
	return true, nil
}

// withPrice fills the asset's price from the prices table. Callers hold mu.
func (s *MemoryStorage) withPrice(rec AssetRecord) AssetRecord {
	rec.Price = s.prices[rec.PriceID]
	return rec
}
