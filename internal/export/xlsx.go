// Package export renders reports as spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"prodboard/internal/core"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	RecordsSheet = "Producao"
	SummarySheet = "Resumo"

	timestampLayout = "02/01/2006 15:04:05"
)

var recordHeaders = []string{"ID", "Data/Hora", "Cor", "Material", "Tamanho"}

// FileName returns the attachment name for a range export.
func FileName(r core.DateRange) string {
	return fmt.Sprintf("relatorio_%s_%s.xlsx", r.Start.String(), r.End.String())
}

// WriteFullReport writes a workbook with one row per record and a summary
// sheet holding the range and the record count.
func WriteFullReport(w io.Writer, r core.DateRange, records []core.ProductionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with Sheet1; rename it instead of leaving it empty.
	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range recordHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(RecordsSheet, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := f.SetCellStyle(RecordsSheet, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{rec.ID, rec.Timestamp.Format(timestampLayout), rec.Color, rec.Material, rec.Size}
		if err := f.SetSheetRow(RecordsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(RecordsSheet, "A", "A", 10); err != nil {
		return err
	}
	if err := f.SetColWidth(RecordsSheet, "B", "E", 20); err != nil {
		return err
	}

	summary := [][]any{
		{"Inicio", r.Start.String()},
		{"Fim", r.End.String()},
		{"Total de pecas", len(records)},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
