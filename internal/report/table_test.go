package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/assettrack/internal/domain"
)

func sampleReport(source domain.RateSource) Report {
	return newTestBuilder(sampleAssets(), newStubConverter(source)).Build(context.Background())
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleReport(domain.RateSourceLive))

	for _, want := range []string{
		"Brand", "Days Left",
		"Lenovo", "iPhone 13", "XPS 13",
		"10500.00 SEK", "1100.00",
		"expired", "critical", "normal",
		"Total value: 2750.00 USD",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
	if strings.Contains(out, "approximate") {
		t.Error("live report should not carry the fallback notice")
	}
}

func TestRenderTableFallbackNotice(t *testing.T) {
	out := RenderTable(sampleReport(domain.RateSourceFallback))
	if !strings.Contains(out, "approximate") {
		t.Error("fallback report should carry the approximate-rates notice")
	}
}

func TestRenderTableEmpty(t *testing.T) {
	conv := newStubConverter(domain.RateSourceLive)
	r := newTestBuilder(staticAssets{}, conv).Build(context.Background())

	out := RenderTable(r)
	if !strings.Contains(out, "Assets: 0") {
		t.Errorf("summary missing asset count:\n%s", out)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleReport(domain.RateSourceLive)); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) < 4 {
		t.Fatalf("rows = %d, want at least 4", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][len(columns)-1] != "Status" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "Lenovo" || rows[1][len(columns)-1] != "expired" {
		t.Errorf("first asset row = %v", rows[1])
	}
	if rows[2][9] != "550" {
		t.Errorf("usd value = %q, want 550", rows[2][9])
	}

	total := strings.Join(rows[len(rows)-1], " ")
	if !strings.Contains(total, "Total USD") || !strings.Contains(total, "2750") {
		t.Errorf("total row = %q, want Total USD 2750", total)
	}
}

func TestBuildAssetRows(t *testing.T) {
	data := buildAssetRows(sampleReport(domain.RateSourceLive))

	if len(data) != 4 {
		t.Fatalf("rows = %d, want 4", len(data))
	}
	if data[0][0] != "ID" {
		t.Errorf("header = %v", data[0])
	}
	if data[1][0] != int64(1) {
		t.Errorf("first id = %v, want 1", data[1][0])
	}
	if v, ok := data[3][9].(float64); !ok || v != 1100 {
		t.Errorf("usd value = %v, want 1100", data[3][9])
	}
	for i, row := range data {
		if len(row) != len(columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
	}
}

func TestBuildAssetRowsMissingValue(t *testing.T) {
	conv := newStubConverter(domain.RateSourceLive)
	conv.failTo = map[domain.Currency]bool{domain.USD: true}
	r := newTestBuilder(sampleAssets(), conv).Build(context.Background())

	data := buildAssetRows(r)
	if data[1][9] != nil {
		t.Errorf("usd cell = %v, want nil", data[1][9])
	}
}

func TestBuildSummaryRows(t *testing.T) {
	data := buildSummaryRows(sampleReport(domain.RateSourceFallback))

	labels := make(map[string]any, len(data))
	for _, row := range data {
		labels[row[0].(string)] = row[1]
	}
	if labels["Assets"] != 3 {
		t.Errorf("Assets = %v, want 3", labels["Assets"])
	}
	if labels["Computers"] != 2 {
		t.Errorf("Computers = %v, want 2", labels["Computers"])
	}
	if labels["Status expired"] != 1 {
		t.Errorf("Status expired = %v, want 1", labels["Status expired"])
	}
	if labels["Rates"] != "fallback" {
		t.Errorf("Rates = %v, want fallback", labels["Rates"])
	}
	if labels["Total USD"] != 2750.0 {
		t.Errorf("Total USD = %v, want 2750", labels["Total USD"])
	}
}
