package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
)

// ReportCurrency is the currency all asset values are totalled in.
const ReportCurrency = domain.USD

// AssetSource lists assets in report order.
type AssetSource interface {
	Sorted(ctx context.Context) []domain.Asset
}

// CurrencyConverter converts prices and exposes the rate table in use.
type CurrencyConverter interface {
	ConvertValue(ctx context.Context, value domain.MonetaryValue, to domain.Currency) (decimal.Decimal, error)
	Current() (domain.RateTable, bool)
}

// Row is one asset with its lifecycle classification and converted values.
// Converted values are nil when no rate was available.
type Row struct {
	Asset         domain.Asset     `json:"asset"`
	Lifecycle     domain.Lifecycle `json:"lifecycle"`
	ValueUSD      *decimal.Decimal `json:"valueUsd"`
	LocalCurrency domain.Currency  `json:"localCurrency,omitempty"`
	LocalValue    *decimal.Decimal `json:"localValue"`
}

// Report is the presentation-independent asset report.
type Report struct {
	GeneratedAt    time.Time                      `json:"generatedAt"`
	Rows           []Row                          `json:"rows"`
	CountsByKind   map[domain.AssetKind]int       `json:"countsByKind"`
	CountsByOffice map[domain.Office]int          `json:"countsByOffice"`
	CountsByStatus map[domain.LifecycleStatus]int `json:"countsByStatus"`
	TotalUSD       decimal.Decimal                `json:"totalUsd"`
	LiveRates      bool                           `json:"liveRates"`
	RatesUpdatedAt *time.Time                     `json:"ratesUpdatedAt"`
}

// Builder assembles reports from the ledger and the converter.
type Builder struct {
	assets    AssetSource
	converter CurrencyConverter
	now       func() time.Time
}

// NewBuilder creates a new report Builder.
func NewBuilder(assets AssetSource, converter CurrencyConverter) *Builder {
	return &Builder{assets: assets, converter: converter, now: time.Now}
}

// Build classifies and values every asset at the current time.
func (b *Builder) Build(ctx context.Context) Report {
	now := b.now()
	assets := b.assets.Sorted(ctx)

	rows := lo.Map(assets, func(a domain.Asset, _ int) Row {
		return b.row(ctx, a, now)
	})

	r := Report{
		GeneratedAt: now,
		Rows:        rows,
		CountsByKind: lo.CountValuesBy(assets, func(a domain.Asset) domain.AssetKind {
			return a.Kind
		}),
		CountsByOffice: lo.CountValuesBy(assets, func(a domain.Asset) domain.Office {
			return a.Office
		}),
		CountsByStatus: lo.CountValuesBy(rows, func(r Row) domain.LifecycleStatus {
			return r.Lifecycle.Status
		}),
		TotalUSD: lo.Reduce(rows, func(acc decimal.Decimal, r Row, _ int) decimal.Decimal {
			return acc.Add(lo.FromPtr(r.ValueUSD))
		}, decimal.Zero),
	}

	if table, ok := b.converter.Current(); ok {
		r.LiveRates = table.IsLive()
		r.RatesUpdatedAt = lo.ToPtr(table.UpdatedAt())
	}
	return r
}

func (b *Builder) row(ctx context.Context, a domain.Asset, now time.Time) Row {
	row := Row{
		Asset:     a,
		Lifecycle: a.Lifecycle(now),
	}

	if usd, err := b.converter.ConvertValue(ctx, a.Price, ReportCurrency); err != nil {
		slog.Warn("report: failed to convert price", "asset_id", a.ID, "currency", a.Price.Currency, "error", err)
	} else {
		row.ValueUSD = lo.ToPtr(usd.Round(domain.MoneyPrecision))
	}

	if local, ok := a.Office.LocalCurrency(); ok {
		row.LocalCurrency = local
		if v, err := b.converter.ConvertValue(ctx, a.Price, local); err != nil {
			slog.Warn("report: failed to convert price", "asset_id", a.ID, "currency", local, "error", err)
		} else {
			row.LocalValue = lo.ToPtr(v.Round(domain.MoneyPrecision))
		}
	}

	return row
}
