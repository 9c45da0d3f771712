package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/assettrack/internal/domain"
)

const xlsxSheet = "Assets"

// statusFills are the background colours of the Status column.
var statusFills = map[domain.LifecycleStatus]string{
	domain.StatusExpired:  "#F4CCCC",
	domain.StatusCritical: "#F9CB9C",
	domain.StatusWarning:  "#FFF2CC",
	domain.StatusNormal:   "#D9EAD3",
}

// WriteXLSX writes the report as a single-sheet workbook.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9EAD3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	statusStyles := make(map[domain.LifecycleStatus]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("creating %s style: %w", status, err)
		}
		statusStyles[status] = id
	}

	for i, row := range r.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := valueCells(row)
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}

		statusCell, err := excelize.CoordinatesToCellName(len(columns), i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(xlsxSheet, statusCell, statusCell, statusStyles[row.Lifecycle.Status]); err != nil {
			return fmt.Errorf("styling row %d: %w", i+2, err)
		}
	}

	totalRow := len(r.Rows) + 3
	totalCell, err := excelize.CoordinatesToCellName(len(columns)-4, totalRow)
	if err != nil {
		return err
	}
	total := []any{"Total " + string(ReportCurrency), toFloat(r.TotalUSD)}
	if err := f.SetSheetRow(xlsxSheet, totalCell, &total); err != nil {
		return fmt.Errorf("writing total: %w", err)
	}

	if err := f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
