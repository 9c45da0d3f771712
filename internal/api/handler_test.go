package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/assettrack/internal/domain"
	"github.com/mtlprog/assettrack/internal/ledger"
	"github.com/mtlprog/assettrack/internal/rates"
	"github.com/mtlprog/assettrack/internal/report"
)

type stubFetcher struct {
	table domain.RateTable
	err   error
}

func (s *stubFetcher) Fetch(_ context.Context) (domain.RateTable, error) {
	return s.table, s.err
}

type testEnv struct {
	handler *Handler
	ledger  *ledger.Ledger
	fetcher *stubFetcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.NewLedger(ledger.NewMemoryStorage(), logger)

	store := rates.NewStore(nil)
	store.Set(domain.NewRateTable(map[domain.Currency]decimal.Decimal{
		domain.USD: decimal.RequireFromString("1.1"),
		domain.SEK: decimal.RequireFromString("10.5"),
	}, time.Now(), domain.RateSourceLive))

	fetcher := &stubFetcher{err: errors.New("provider down")}
	conv := rates.NewConverter(store, fetcher, rates.WithLogger(logger))

	return &testEnv{
		handler: NewHandler(l, conv, report.NewBuilder(l, conv)),
		ledger:  l,
		fetcher: fetcher,
	}
}

func (e *testEnv) serve(method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	NewServer("0", e.handler, "").Handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T, brand string, office domain.Office, purchased time.Time) int64 {
	t.Helper()
	id, ok := e.ledger.Create(context.Background(), domain.Asset{
		Kind:         domain.KindComputer,
		Brand:        brand,
		Model:        "Model",
		Office:       office,
		PurchaseDate: purchased,
		Price:        domain.MustMoney("1000", domain.EUR),
	})
	if !ok {
		t.Fatalf("seeding %s failed", brand)
	}
	return id
}

const validAsset = `{
	"kind": "computer",
	"brand": "Apple",
	"model": "MacBook Pro",
	"office": "sweden",
	"purchaseDate": "2024-03-15",
	"price": {"amount": "2499.999", "currency": "usd"}
}`

func TestCreateAsset(t *testing.T) {
	env := newTestEnv(t)

	w := env.serve(http.MethodPost, "/api/v1/assets", validAsset)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body)
	}

	var got domain.Asset
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.ID == 0 {
		t.Error("id not assigned")
	}
	if got.Office != domain.OfficeSweden {
		t.Errorf("office = %q, want Sweden", got.Office)
	}
	if !got.Price.Equal(domain.MustMoney("2500", domain.USD)) {
		t.Errorf("price = %s, want 2500.00 USD", got.Price)
	}

	stored, ok := env.ledger.Get(context.Background(), got.ID)
	if !ok || stored.Brand != "Apple" {
		t.Errorf("stored asset = %+v, %v", stored, ok)
	}
}

func TestCreateAssetValidation(t *testing.T) {
	future := time.Now().AddDate(0, 0, 2).Format(time.DateOnly)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"kind":`},
		{"unknown field", `{"kind":"phone","colour":"red"}`},
		{"blank brand", strings.Replace(validAsset, `"Apple"`, `"  "`, 1)},
		{"blank model", strings.Replace(validAsset, `"MacBook Pro"`, `""`, 1)},
		{"unknown kind", strings.Replace(validAsset, `"computer"`, `"tablet"`, 1)},
		{"unknown office", strings.Replace(validAsset, `"sweden"`, `"France"`, 1)},
		{"bad date", strings.Replace(validAsset, `"2024-03-15"`, `"15/03/2024"`, 1)},
		{"future date", strings.Replace(validAsset, `"2024-03-15"`, `"`+future+`"`, 1)},
		{"negative amount", strings.Replace(validAsset, `"2499.999"`, `"-1"`, 1)},
		{"unsupported currency", strings.Replace(validAsset, `"usd"`, `"GBP"`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.serve(http.MethodPost, "/api/v1/assets", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body)
			}
			if got := env.ledger.All(context.Background()); len(got) != 0 {
				t.Errorf("ledger has %d assets, want 0", len(got))
			}
		})
	}
}

func TestListAssetsSorted(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Late", domain.OfficeUSA, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, "Germany", domain.OfficeGermany, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, "Early", domain.OfficeUSA, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC))

	w := env.serve(http.MethodGet, "/api/v1/assets", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []domain.Asset
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	brands := make([]string, len(got))
	for i, a := range got {
		brands[i] = a.Brand
	}
	if strings.Join(brands, ",") != "Germany,Early,Late" {
		t.Errorf("order = %v, want [Germany Early Late]", brands)
	}
}

func TestListAssetsEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.serve(http.MethodGet, "/api/v1/assets", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", w.Body.String())
	}
}

func TestGetAsset(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, "Dell", domain.OfficeGermany, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"found", "/api/v1/assets/" + itoa(id), http.StatusOK},
		{"missing", "/api/v1/assets/999", http.StatusNotFound},
		{"not a number", "/api/v1/assets/abc", http.StatusBadRequest},
		{"zero", "/api/v1/assets/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.serve(http.MethodGet, tt.target, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestUpdateAsset(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, "Dell", domain.OfficeGermany, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	w := env.serve(http.MethodPut, "/api/v1/assets/"+itoa(id), validAsset)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}

	got, ok := env.ledger.Get(context.Background(), id)
	if !ok {
		t.Fatal("asset disappeared")
	}
	if got.Brand != "Apple" || got.Office != domain.OfficeSweden {
		t.Errorf("asset = %+v", got)
	}
	if !got.Price.Equal(domain.MustMoney("2500", domain.USD)) {
		t.Errorf("price = %s, want 2500.00 USD", got.Price)
	}
}

func TestUpdateAssetMissing(t *testing.T) {
	env := newTestEnv(t)

	w := env.serve(http.MethodPut, "/api/v1/assets/42", validAsset)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteAsset(t *testing.T) {
	env := newTestEnv(t)
	id := env.seed(t, "Dell", domain.OfficeGermany, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	w := env.serve(http.MethodDelete, "/api/v1/assets/"+itoa(id), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if _, ok := env.ledger.Get(context.Background(), id); ok {
		t.Error("asset still present after delete")
	}
	if orphans := env.ledger.Orphans(context.Background()); len(orphans) != 0 {
		t.Errorf("orphans = %v, want none", orphans)
	}

	w = env.serve(http.MethodDelete, "/api/v1/assets/"+itoa(id), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "A", domain.OfficeUSA, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, "B", domain.OfficeUSA, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	env.seed(t, "C", domain.OfficeSweden, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	w := env.serve(http.MethodGet, "/api/v1/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got statsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("total = %d, want 3", got.Total)
	}
	if got.ByKind[domain.KindComputer] != 3 || got.ByKind[domain.KindPhone] != 0 {
		t.Errorf("byKind = %v", got.ByKind)
	}
	if got.ByOffice[domain.OfficeUSA] != 2 || got.ByOffice[domain.OfficeSweden] != 1 {
		t.Errorf("byOffice = %v", got.ByOffice)
	}
}

func TestGetRates(t *testing.T) {
	env := newTestEnv(t)

	w := env.serve(http.MethodGet, "/api/v1/rates", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got ratesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Base != domain.EUR {
		t.Errorf("base = %s, want EUR", got.Base)
	}
	if !got.Valid || !got.Live {
		t.Errorf("valid = %v, live = %v, want both true", got.Valid, got.Live)
	}
	if !got.Rates[domain.EUR].Equal(decimal.NewFromInt(1)) {
		t.Errorf("EUR rate = %s, want 1", got.Rates[domain.EUR])
	}
	if got.UpdatedAt == nil {
		t.Error("updatedAt missing")
	}
}

func TestRefreshRatesFallback(t *testing.T) {
	env := newTestEnv(t)

	w := env.serve(http.MethodPost, "/api/v1/rates/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got ratesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Live {
		t.Error("live = true after failed refresh, want false")
	}
	if !got.Valid {
		t.Error("valid = false, fallback table covers every currency")
	}
	if got.Source != domain.RateSourceFallback {
		t.Errorf("source = %q, want fallback", got.Source)
	}
}

func TestRefreshRatesLive(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.err = nil
	env.fetcher.table = domain.NewRateTable(map[domain.Currency]decimal.Decimal{
		domain.USD: decimal.RequireFromString("1.2"),
		domain.SEK: decimal.RequireFromString("11"),
	}, time.Now(), domain.RateSourceLive)

	w := env.serve(http.MethodPost, "/api/v1/rates/refresh", "")

	var got ratesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !got.Live {
		t.Error("live = false, want true")
	}
	if !got.Rates[domain.USD].Equal(decimal.RequireFromString("1.2")) {
		t.Errorf("USD rate = %s, want 1.2", got.Rates[domain.USD])
	}
}

func TestGetReportJSON(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Dell", domain.OfficeSweden, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	w := env.serve(http.MethodGet, "/api/v1/report", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got report.Report
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(got.Rows))
	}
	row := got.Rows[0]
	if row.ValueUSD == nil || !row.ValueUSD.Equal(decimal.RequireFromString("1100")) {
		t.Errorf("usd = %v, want 1100", row.ValueUSD)
	}
	if row.LocalCurrency != domain.SEK || row.LocalValue == nil || !row.LocalValue.Equal(decimal.RequireFromString("10500")) {
		t.Errorf("local = %v %s, want 10500 SEK", row.LocalValue, row.LocalCurrency)
	}
	if !got.LiveRates {
		t.Error("liveRates = false, want true")
	}
}

func TestGetReportXLSX(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "Dell", domain.OfficeSweden, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	w := env.serve(http.MethodGet, "/api/v1/report?format=xlsx", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %q", ct)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip archive")
	}
}

func TestGetReportUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	w := env.serve(http.MethodGet, "/api/v1/report?format=pdf", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
