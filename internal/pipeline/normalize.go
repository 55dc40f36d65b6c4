package pipeline

import (
	"fmt"
	"strings"
)

// requiredColumns must be present after mapping; aggregation groups by them.
var requiredColumns = []string{FieldRegion, FieldStatus}

// Normalize maps the report's headers onto canonical fields and builds a Table.
// Missing monetary cells, and monetary columns absent from the sheet, read as zero.
func Normalize(raw RawTable) (Table, error) {
	targets := make([]string, len(raw.Header))
	columns := make([]string, 0, len(raw.Header))
	seen := make(map[string]int, len(raw.Header))

	for i, h := range raw.Header {
		name := normalizeHeader(h)
		if canonical, ok := CanonicalName(name); ok {
			if _, dup := seen[canonical]; !dup {
				seen[canonical] = 1
				targets[i] = canonical
				columns = append(columns, canonical)
				continue
			}
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		}
		seen[name] = 1
		targets[i] = name
		columns = append(columns, name)
	}

	for _, col := range requiredColumns {
		if _, ok := seen[col]; !ok {
			return Table{}, &MissingColumnError{Column: col, Source: SourceHeader(col)}
		}
	}

	rows := make([]Row, 0, len(raw.Records))
	for r, rec := range raw.Records {
		if blankRecord(rec) {
			continue
		}
		row := Row{}
		for i, target := range targets {
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			if err := setCell(&row, target, cell); err != nil {
				return Table{}, &ParseError{Row: r + 1, Column: target, Value: cell, Err: err}
			}
		}
		rows = append(rows, row)
	}

	return Table{Columns: columns, Rows: rows}, nil
}

// setCell stores text into the field named by column. Monetary and date cells
// are parsed; everything else is kept byte for byte, since region and status
// group by exact text.
func setCell(row *Row, column, cell string) error {
	if isMonetary(column) {
		d, err := ParseMoney(cell)
		if err != nil {
			return err
		}
		switch column {
		case FieldInitialCancellation:
			row.InitialCancellation = d
		case FieldReversal:
			row.Reversal = d
		case FieldFinalCancellation:
			row.FinalCancellation = d
		case FieldOrderTotal:
			row.OrderTotal = d
		}
		return nil
	}

	switch column {
	case FieldDate:
		row.DateText = cell
		row.Date = nil
		if t, ok := ParseDate(cell); ok {
			row.Date = &t
		}
	case FieldRegion:
		row.Region = cell
	case FieldStatus:
		row.Status = cell
	case FieldOrderNumber:
		row.OrderNumber = cell
	case FieldRestaurant:
		row.Restaurant = cell
	case FieldCancellationOrigin:
		row.CancellationOrigin = cell
	case FieldCancellationReason:
		row.CancellationReason = cell
	case FieldSalesChannel:
		row.SalesChannel = cell
	default:
		if row.Extra == nil {
			row.Extra = make(map[string]string)
		}
		row.Extra[column] = cell
	}
	return nil
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
