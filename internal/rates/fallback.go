package rates

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
)

// FallbackTable returns the hardcoded approximate rates used whenever the provider is unavailable.
func FallbackTable(now time.Time) domain.RateTable {
	return domain.NewRateTable(map[domain.Currency]decimal.Decimal{
		domain.EUR: decimal.NewFromInt(1),
		domain.USD: decimal.RequireFromString("1.1"),
		domain.SEK: decimal.RequireFromString("10.5"),
	}, now, domain.RateSourceFallback)
}
