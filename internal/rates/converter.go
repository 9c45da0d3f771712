package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
)

// AutoRefreshAge is the table age after which Convert silently refreshes rates.
const AutoRefreshAge = 24 * time.Hour

// ErrMissingRate is returned when a currency has no entry in the current table.
var ErrMissingRate = errors.New("missing exchange rate")

// Fetcher retrieves a fresh rate table from an external provider.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.RateTable, error)
}

// TableRepository persists the last live table across restarts.
type TableRepository interface {
	SaveTable(ctx context.Context, table domain.RateTable) error
	LoadTable(ctx context.Context) (domain.RateTable, error)
}

// Converter converts amounts between currencies by triangulating through the base currency.
// It refreshes its Store from the Fetcher when rates are missing or stale and falls back
// to FallbackTable when the provider fails.
type Converter struct {
	store  *Store
	source Fetcher
	repo   TableRepository
	logger *slog.Logger

	// refreshMu serializes fetches only; readers of the store never wait on it.
	refreshMu sync.Mutex
}

// Option configures a Converter.
type Option func(*Converter)

// WithRepository persists live tables and enables Warm.
func WithRepository(repo TableRepository) Option {
	return func(c *Converter) { c.repo = repo }
}

// WithLogger overrides slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// NewConverter creates a Converter over store, refreshing from source.
func NewConverter(store *Store, source Fetcher, opts ...Option) *Converter {
	c := &Converter{
		store:  store,
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Warm loads the last persisted live table into an empty store.
func (c *Converter) Warm(ctx context.Context) {
	if c.repo == nil {
		return
	}
	if _, ok := c.store.Get(); ok {
		return
	}
	table, err := c.repo.LoadTable(ctx)
	if err != nil {
		c.logger.Debug("no persisted exchange rates", "error", err)
		return
	}
	c.store.Set(table)
	c.logger.Info("loaded persisted exchange rates", "updated_at", table.UpdatedAt())
}

// EnsureFresh refreshes the store when it is empty or older than maxAge.
// It returns true when live rates are in use afterwards. Failures are never
// returned; they are logged at warn level unless suppressErrors is set.
func (c *Converter) EnsureFresh(ctx context.Context, maxAge time.Duration, suppressErrors bool) bool {
	if !c.store.IsStale(maxAge) {
		return c.HasLiveRates()
	}
	return c.refresh(ctx, suppressErrors, func() bool { return c.store.IsStale(maxAge) })
}

// Refresh fetches unconditionally. It returns false if the fallback table had to be used.
func (c *Converter) Refresh(ctx context.Context) bool {
	return c.refresh(ctx, false, func() bool { return true })
}

// refresh fetches when needed() still holds after acquiring the refresh lock.
// If another refresh is running and a table exists, the current table is used as is.
func (c *Converter) refresh(ctx context.Context, suppressErrors bool, needed func() bool) bool {
	if _, ok := c.store.Get(); ok {
		if !c.refreshMu.TryLock() {
			return c.HasLiveRates()
		}
	} else {
		c.refreshMu.Lock()
	}
	defer c.refreshMu.Unlock()

	if !needed() {
		return c.HasLiveRates()
	}

	table, err := c.source.Fetch(ctx)
	if err != nil {
		c.store.Set(FallbackTable(c.store.now()))
		if suppressErrors {
			c.logger.Debug("exchange rate refresh failed, using fallback rates", "error", err)
		} else {
			c.logger.Warn("exchange rate refresh failed, using fallback rates", "error", err)
		}
		return false
	}

	c.store.Set(table)
	c.logger.Info("exchange rates refreshed", "currencies", len(table.Rates()))

	if c.repo != nil {
		if err := c.repo.SaveTable(ctx, table); err != nil {
			c.logger.Warn("failed to persist exchange rates", "error", err)
		}
	}
	return true
}

// Convert converts amount from one currency to another.
// Rates older than AutoRefreshAge are refreshed first without surfacing provider errors.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (decimal.Decimal, error) {
	if c.store.IsStale(AutoRefreshAge) {
		c.EnsureFresh(ctx, AutoRefreshAge, true)
	}

	if from == to {
		return amount, nil
	}

	table, ok := c.store.Get()
	if !ok {
		return decimal.Zero, ErrNoRates
	}

	fromRate, ok := table.Rate(from)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingRate, from)
	}
	inBase := amount.Div(fromRate)

	if to == domain.BaseCurrency {
		return inBase, nil
	}

	toRate, ok := table.Rate(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingRate, to)
	}
	return inBase.Mul(toRate), nil
}

// ConvertValue converts a monetary value into currency to.
func (c *Converter) ConvertValue(ctx context.Context, value domain.MonetaryValue, to domain.Currency) (decimal.Decimal, error) {
	return c.Convert(ctx, value.Amount, value.Currency, to)
}

// HasValidRates reports whether the current table covers every supported currency.
func (c *Converter) HasValidRates() bool {
	t, ok := c.store.Get()
	return ok && t.CoversSupported()
}

// HasLiveRates reports whether the current table came from the provider.
func (c *Converter) HasLiveRates() bool {
	t, ok := c.store.Get()
	return ok && t.IsLive()
}

// Current returns the table in use, if any.
func (c *Converter) Current() (domain.RateTable, bool) {
	return c.store.Get()
}
