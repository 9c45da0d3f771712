package domain

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// RateSource labels where a RateTable came from.
type RateSource string

const (
	RateSourceLive     RateSource = "live"
	RateSourceFallback RateSource = "fallback"
)

// RateTable holds rates expressed as units of each currency per 1 unit of BaseCurrency.
// A table is never mutated after construction; replace it instead.
type RateTable struct {
	rates     map[Currency]decimal.Decimal
	updatedAt time.Time
	source    RateSource
}

// NewRateTable copies rates, forces the base currency to 1 and drops non-positive entries.
func NewRateTable(rates map[Currency]decimal.Decimal, updatedAt time.Time, source RateSource) RateTable {
	copied := make(map[Currency]decimal.Decimal, len(rates)+1)
	for c, r := range rates {
		if r.IsPositive() {
			copied[c] = r
		}
	}
	copied[BaseCurrency] = decimal.NewFromInt(1)
	return RateTable{rates: copied, updatedAt: updatedAt, source: source}
}

// Rate returns the rate for c, if present.
func (t RateTable) Rate(c Currency) (decimal.Decimal, bool) {
	r, ok := t.rates[c]
	return r, ok
}

// Rates returns a copy of all rates in the table.
func (t RateTable) Rates() map[Currency]decimal.Decimal {
	return maps.Clone(t.rates)
}

// UpdatedAt is the time of the successful fetch, or the time the fallback was set.
func (t RateTable) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t RateTable) Source() RateSource {
	return t.source
}

// IsLive reports whether the table came from the rate provider.
func (t RateTable) IsLive() bool {
	return t.source == RateSourceLive
}

// CoversSupported reports whether every supported non-base currency has a rate.
func (t RateTable) CoversSupported() bool {
	for _, c := range SupportedCurrencies {
		if c == BaseCurrency {
			continue
		}
		if _, ok := t.rates[c]; !ok {
			return false
		}
	}
	return true
}
