package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrUnsupportedCurrency is returned when a currency code is outside the supported set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	SEK Currency = "SEK"
)

// BaseCurrency is the currency every rate in a RateTable is quoted against.
const BaseCurrency = EUR

// SupportedCurrencies is the closed set of currencies prices may be recorded in.
var SupportedCurrencies = []Currency{USD, EUR, SEK}

// IsSupported reports whether c belongs to SupportedCurrencies.
func (c Currency) IsSupported() bool {
	return lo.Contains(SupportedCurrencies, c)
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes a code ("usd", " SEK ") and checks it is supported.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsSupported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return c, nil
}
