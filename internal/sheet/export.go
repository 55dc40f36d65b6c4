package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"CancelDash/internal/config"
	"CancelDash/internal/pipeline"
)

// WriteWorkbook renders the table under its report headers, plus a summary
// sheet with the overall, regional and status totals. The detail sheet can be
// uploaded again as is.
func WriteWorkbook(t pipeline.Table, res pipeline.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	detail := config.ExportSheetName
	if err := f.SetSheetName("Sheet1", detail); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, err
	}

	for i, col := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(detail, cell, pipeline.SourceHeader(col))
	}
	if len(t.Columns) > 0 {
		f.SetRowStyle(detail, 1, 1, headerStyle)
	}

	for r, row := range t.Rows {
		for c, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := writeCell(f, detail, cell, row, col, dateStyle); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	if err := writeSummary(f, res, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCell(f *excelize.File, sheet, cell string, row pipeline.Row, col string, dateStyle int) error {
	if amount, ok := row.Money(col); ok {
		return f.SetCellValue(sheet, cell, amount.InexactFloat64())
	}
	if col == pipeline.FieldDate && row.Date != nil {
		if err := f.SetCellValue(sheet, cell, *row.Date); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, dateStyle)
	}
	return f.SetCellValue(sheet, cell, row.Text(col))
}

func writeSummary(f *excelize.File, res pipeline.Result, headerStyle int) error {
	sheet := config.SummarySheetName
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	s := res.Summary
	rows := [][]interface{}{
		{"Indicador", "Valor"},
		{"Total de pedidos", s.TotalOrders},
		{"Venda total", s.OrderTotal.InexactFloat64()},
		{"Cancelamento inicial", s.InitialCancellation.InexactFloat64()},
		{"Reversão", s.Reversal.InexactFloat64()},
		{"Cancelamento final", s.FinalCancellation.InexactFloat64()},
		{"% antes da reversão", s.PercentageBefore.InexactFloat64()},
		{"% após reversão", s.PercentageAfter.InexactFloat64()},
		{},
		{"Regional", "Total do pedido", "Canc. inicial", "Reversão", "Canc. final", "% antes", "% após"},
	}
	regionHeader := len(rows)
	for _, g := range res.ByRegion {
		rows = append(rows, []interface{}{
			g.Region,
			g.OrderTotal.InexactFloat64(),
			g.InitialCancellation.InexactFloat64(),
			g.Reversal.InexactFloat64(),
			g.FinalCancellation.InexactFloat64(),
			g.PercentageBefore.InexactFloat64(),
			g.PercentageAfter.InexactFloat64(),
		})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Primeira análise", "Total do pedido", "Canc. inicial", "Reversão", "Canc. final"})
	statusHeader := len(rows)
	for _, g := range res.ByStatus {
		rows = append(rows, []interface{}{
			g.Status,
			g.OrderTotal.InexactFloat64(),
			g.InitialCancellation.InexactFloat64(),
			g.Reversal.InexactFloat64(),
			g.FinalCancellation.InexactFloat64(),
		})
	}

	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		vals := values
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	for _, r := range []int{1, regionHeader, statusHeader} {
		if err := f.SetRowStyle(sheet, r, r, headerStyle); err != nil {
			return err
		}
	}
	return nil
}
