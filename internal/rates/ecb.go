package rates

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
)

const (
	// DefaultECBURL publishes the daily euro foreign exchange reference rates.
	DefaultECBURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

	// DefaultFetchTimeout bounds a single provider request.
	DefaultFetchTimeout = 10 * time.Second

	ecbNamespace = "http://www.ecb.int/vocabulary/2002-08-01/eurofxref"

	maxResponseBytes = 1 << 20
)

// ErrNoRates is returned when a document or store yields no usable rates.
var ErrNoRates = errors.New("no exchange rates available")

// <gesmes:Envelope><Cube><Cube time="..."><Cube currency="USD" rate="1.0389"/>...
type ecbEnvelope struct {
	XMLName xml.Name `xml:"http://www.gesmes.org/xml/2002-08-01 Envelope"`
	Cube    struct {
		Days []struct {
			Time  string    `xml:"time,attr"`
			Rates []ecbRate `xml:"http://www.ecb.int/vocabulary/2002-08-01/eurofxref Cube"`
		} `xml:"http://www.ecb.int/vocabulary/2002-08-01/eurofxref Cube"`
	} `xml:"http://www.ecb.int/vocabulary/2002-08-01/eurofxref Cube"`
}

type ecbRate struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

// ECBClient fetches euro reference rates from the European Central Bank.
type ECBClient struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
}

// NewECBClient creates a client for url. A non-positive timeout uses DefaultFetchTimeout.
func NewECBClient(url string, timeout time.Duration) *ECBClient {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &ECBClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		now:        time.Now,
	}
}

// Fetch downloads and parses the current rate table.
func (c *ECBClient) Fetch(ctx context.Context) (domain.RateTable, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("creating ECB request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("ECB request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.RateTable{}, fmt.Errorf("reading ECB response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.RateTable{}, fmt.Errorf("ECB HTTP %d", resp.StatusCode)
	}

	rates, err := parseECB(body)
	if err != nil {
		return domain.RateTable{}, err
	}

	return domain.NewRateTable(rates, c.now(), domain.RateSourceLive), nil
}

// parseECB extracts currency/rate pairs. The base currency is not part of the document.
func parseECB(body []byte) (map[domain.Currency]decimal.Decimal, error) {
	var env ecbEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing ECB document: %w", err)
	}

	rates := make(map[domain.Currency]decimal.Decimal)
	for _, day := range env.Cube.Days {
		for _, r := range day.Rates {
			if r.Currency == "" {
				continue
			}
			rate, err := decimal.NewFromString(r.Rate)
			if err != nil {
				return nil, fmt.Errorf("parsing ECB rate for %s: %w", r.Currency, err)
			}
			if !rate.IsPositive() {
				return nil, fmt.Errorf("ECB rate for %s is not positive: %s", r.Currency, r.Rate)
			}
			rates[domain.Currency(r.Currency)] = rate
		}
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no rates in %s namespace", ErrNoRates, ecbNamespace)
	}
	return rates, nil
}
