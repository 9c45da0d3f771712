package ledger

import (
	"context"
	"errors"

	"github.com/mtlprog/assettrack/internal/domain"
)

// ErrNotFound indicates that the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Order selects the ordering of ListAssets.
type Order int

const (
	// OrderByID lists assets in creation order.
	OrderByID Order = iota
	// OrderByOfficeAndDate lists assets by office ascending, then purchase date ascending.
	OrderByOfficeAndDate
)

// AssetRecord is a stored asset together with the storage id of its owned price.
type AssetRecord struct {
	domain.Asset
	PriceID int64
}

// PriceRecord is a stored price row.
type PriceRecord struct {
	ID    int64
	Value domain.MonetaryValue
}

// Storage is the record store the Ledger runs on.
// DeleteAsset must also delete the price the asset references.
type Storage interface {
	InsertPrice(ctx context.Context, price domain.MonetaryValue) (int64, error)
	UpdatePrice(ctx context.Context, id int64, price domain.MonetaryValue) (bool, error)
	ListPrices(ctx context.Context) ([]PriceRecord, error)

	InsertAsset(ctx context.Context, rec AssetRecord) (int64, error)
	GetAsset(ctx context.Context, id int64) (AssetRecord, error)
	ListAssets(ctx context.Context, order Order) ([]AssetRecord, error)
	UpdateAsset(ctx context.Context, rec AssetRecord) (bool, error)
	DeleteAsset(ctx context.Context, id int64) (bool, error)
}
