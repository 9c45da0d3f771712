package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of fraction digits kept for monetary amounts.
const MoneyPrecision = 2

// ErrNegativeAmount is returned when a monetary amount is below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// MonetaryValue is an amount in a given currency.
type MonetaryValue struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMonetaryValue validates the currency and amount and rounds the amount to MoneyPrecision digits.
func NewMonetaryValue(amount decimal.Decimal, currency Currency) (MonetaryValue, error) {
	if !currency.IsSupported() {
		return MonetaryValue{}, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
	if amount.IsNegative() {
		return MonetaryValue{}, fmt.Errorf("%w: %s", ErrNegativeAmount, amount)
	}
	return MonetaryValue{Amount: amount.Round(MoneyPrecision), Currency: currency}, nil
}

// MustMoney parses amount and panics on error. Intended for tests and constants.
func MustMoney(amount string, currency Currency) MonetaryValue {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	mv, err := NewMonetaryValue(d, currency)
	if err != nil {
		panic(err)
	}
	return mv
}

// Validate checks the invariants of an already constructed value.
func (m MonetaryValue) Validate() error {
	if !m.Currency.IsSupported() {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, m.Currency)
	}
	if m.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, m.Amount)
	}
	return nil
}

// Equal compares amount numerically and currency exactly.
func (m MonetaryValue) Equal(other MonetaryValue) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// String formats as "999.99 USD".
func (m MonetaryValue) String() string {
	return m.Amount.StringFixed(MoneyPrecision) + " " + string(m.Currency)
}
