package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/mtlprog/assettrack/internal/domain"
)

const (
	assetsSheet  = "ASSETS"
	summarySheet = "SUMMARY"
)

// SheetsWriter publishes reports to a Google spreadsheet.
type SheetsWriter struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSheetsWriter creates a SheetsWriter authenticated with a service account JSON.
func NewSheetsWriter(ctx context.Context, spreadsheetID, credentialsJSON string) (*SheetsWriter, error) {
	creds, err := google.CredentialsFromJSON(
		ctx,
		[]byte(credentialsJSON),
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsWriter{spreadsheetID: spreadsheetID, svc: svc}, nil
}

// Write ensures the report sheets exist, then clears and rewrites them.
func (w *SheetsWriter) Write(ctx context.Context, r Report) error {
	if err := w.ensureSheets(ctx, assetsSheet, summarySheet); err != nil {
		return err
	}

	_, err := w.svc.Spreadsheets.Values.BatchClear(
		w.spreadsheetID,
		&sheets.BatchClearValuesRequest{
			Ranges: []string{assetsSheet + "!A:M", summarySheet + "!A:B"},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clearing sheets: %w", err)
	}

	_, err = w.svc.Spreadsheets.Values.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data: []*sheets.ValueRange{
				{Range: assetsSheet + "!A1", Values: buildAssetRows(r)},
				{Range: summarySheet + "!A1", Values: buildSummaryRows(r)},
			},
		},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("writing sheets: %w", err)
	}

	return nil
}

// buildAssetRows builds the ASSETS sheet: a header followed by one row per asset.
func buildAssetRows(r Report) [][]any {
	data := make([][]any, 0, len(r.Rows)+1)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	data = append(data, header)

	for _, row := range r.Rows {
		data = append(data, valueCells(row))
	}
	return data
}

// buildSummaryRows builds the SUMMARY sheet as label/value pairs.
func buildSummaryRows(r Report) [][]any {
	data := [][]any{
		{"Generated", r.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Assets", len(r.Rows)},
	}
	for _, k := range domain.AssetKinds {
		data = append(data, []any{k.Label() + "s", r.CountsByKind[k]})
	}
	for _, o := range domain.Offices {
		data = append(data, []any{"Office " + string(o), r.CountsByOffice[o]})
	}
	for _, s := range domain.LifecycleStatuses {
		data = append(data, []any{"Status " + string(s), r.CountsByStatus[s]})
	}
	data = append(data, []any{"Total " + string(ReportCurrency), toFloat(r.TotalUSD)})

	rates := "fallback"
	if r.LiveRates {
		rates = "live"
	}
	data = append(data, []any{"Rates", rates})
	if r.RatesUpdatedAt != nil {
		data = append(data, []any{"Rates updated", r.RatesUpdatedAt.UTC().Format(time.RFC3339)})
	}
	return data
}

// ensureSheets creates any of the named sheets that do not already exist.
func (w *SheetsWriter) ensureSheets(ctx context.Context, names ...string) error {
	spreadsheet, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("getting spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		existing[s.Properties.Title] = true
	}

	var requests []*sheets.Request
	for _, name := range names {
		if !existing[name] {
			requests = append(requests, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: name},
				},
			})
		}
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = w.svc.Spreadsheets.BatchUpdate(
		w.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests},
	).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("creating sheets: %w", err)
	}

	return nil
}
