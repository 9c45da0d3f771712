package report

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// columns shared by every presentation.
var columns = []string{
	"ID", "Type", "Brand", "Model", "Office", "Purchased",
	"Price", "Currency", "Local Value", "USD Value",
	"End of Life", "Days Left", "Status",
}

// textCells formats a row for text output.
func textCells(r Row) []string {
	return []string{
		strconv.FormatInt(r.Asset.ID, 10),
		r.Asset.Kind.Label(),
		r.Asset.Brand,
		r.Asset.Model,
		string(r.Asset.Office),
		r.Asset.PurchaseDate.Format(time.DateOnly),
		r.Asset.Price.Amount.StringFixed(2),
		string(r.Asset.Price.Currency),
		formatLocal(r),
		formatOptional(r.ValueUSD),
		r.Lifecycle.EndOfLife.Format(time.DateOnly),
		strconv.Itoa(r.Lifecycle.RemainingDays),
		string(r.Lifecycle.Status),
	}
}

// valueCells formats a row for spreadsheets, keeping numbers numeric.
func valueCells(r Row) []any {
	return []any{
		r.Asset.ID,
		r.Asset.Kind.Label(),
		r.Asset.Brand,
		r.Asset.Model,
		string(r.Asset.Office),
		r.Asset.PurchaseDate.Format(time.DateOnly),
		toFloat(r.Asset.Price.Amount),
		string(r.Asset.Price.Currency),
		ptrFloat(r.LocalValue),
		ptrFloat(r.ValueUSD),
		r.Lifecycle.EndOfLife.Format(time.DateOnly),
		r.Lifecycle.RemainingDays,
		string(r.Lifecycle.Status),
	}
}

func formatLocal(r Row) string {
	if r.LocalValue == nil {
		return "-"
	}
	return r.LocalValue.StringFixed(2) + " " + string(r.LocalCurrency)
}

func formatOptional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
