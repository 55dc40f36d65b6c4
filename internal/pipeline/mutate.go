package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CancelDash/internal/config"
)

// now is swapped in tests.
var now = time.Now

// NewRow carries a manually entered record. The five required fields are
// pointers or NullDecimal so that an absent value is distinguishable from zero.
type NewRow struct {
	Region              *string             `json:"region"`
	InitialCancellation decimal.NullDecimal `json:"initial_cancellation"`
	Reversal            decimal.NullDecimal `json:"reversal"`
	FinalCancellation   decimal.NullDecimal `json:"final_cancellation"`
	OrderTotal          decimal.NullDecimal `json:"order_total"`

	Date               string  `json:"date"`
	Status             string  `json:"status"`
	OrderNumber        string  `json:"order_number"`
	Restaurant         string  `json:"restaurant"`
	CancellationOrigin string  `json:"cancellation_origin"`
	CancellationReason string  `json:"cancellation_reason"`
	SalesChannel       *string `json:"sales_channel"`
}

// validate checks required fields in a fixed order so the error always names
// the first missing one.
func (n NewRow) validate() error {
	if n.Region == nil {
		return &ValidationError{Field: FieldRegion}
	}
	required := []struct {
		field string
		value decimal.NullDecimal
	}{
		{FieldInitialCancellation, n.InitialCancellation},
		{FieldReversal, n.Reversal},
		{FieldFinalCancellation, n.FinalCancellation},
		{FieldOrderTotal, n.OrderTotal},
	}
	for _, r := range required {
		if !r.value.Valid {
			return &ValidationError{Field: r.field}
		}
	}
	return nil
}

// Append returns a new table with one row built from f added at the end.
func Append(t Table, f NewRow) (Table, error) {
	if err := f.validate(); err != nil {
		return Table{}, err
	}

	row := Row{
		Region:              *f.Region,
		Status:              f.Status,
		InitialCancellation: f.InitialCancellation.Decimal,
		Reversal:            f.Reversal.Decimal,
		FinalCancellation:   f.FinalCancellation.Decimal,
		OrderTotal:          f.OrderTotal.Decimal,
		OrderNumber:         f.OrderNumber,
		Restaurant:          f.Restaurant,
		CancellationOrigin:  f.CancellationOrigin,
		CancellationReason:  f.CancellationReason,
		SalesChannel:        config.DefaultSalesChannel,
	}
	if f.SalesChannel != nil {
		row.SalesChannel = *f.SalesChannel
	}
	if strings.TrimSpace(f.Date) == "" {
		d := now()
		row.Date = &d
	} else {
		row.DateText = strings.TrimSpace(f.Date)
		if d, ok := ParseDate(row.DateText); ok {
			row.Date = &d
		}
	}

	out := Table{
		Columns: mergeColumns(t.Columns, CanonicalFields),
		Rows:    make([]Row, 0, len(t.Rows)+1),
	}
	out.Rows = append(out.Rows, t.Rows...)
	out.Rows = append(out.Rows, row)
	return out, nil
}

// Update returns a copy of t with the given fields of row index overwritten.
// Keys that name no canonical field, report header or existing column are ignored.
// When several keys resolve to the same field the one spelled exactly as the
// field wins. A canonical field missing from t.Columns is added to the copy.
func Update(t Table, index int, updates map[string]any) (Table, error) {
	if index < 0 || index >= len(t.Rows) {
		return Table{}, &NotFoundError{Index: index, Len: len(t.Rows)}
	}

	resolved := resolveUpdates(t, updates)
	columns := make([]string, 0, len(resolved))
	for column := range resolved {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	row := cloneRow(t.Rows[index])
	for _, column := range columns {
		if err := assign(&row, column, resolved[column].value); err != nil {
			return Table{}, err
		}
	}

	out := Table{
		Columns: mergeColumns(t.Columns, columns),
		Rows:    append([]Row(nil), t.Rows...),
	}
	out.Rows[index] = row
	return out, nil
}

type resolvedUpdate struct {
	key   string
	value any
}

// resolveUpdates maps each usable key to its column, one value per column.
func resolveUpdates(t Table, updates map[string]any) map[string]resolvedUpdate {
	out := make(map[string]resolvedUpdate, len(updates))
	for key, value := range updates {
		column, ok := CanonicalName(key)
		if !ok {
			if !t.HasColumn(key) {
				continue
			}
			column = key
		}
		if prev, seen := out[column]; seen && !preferKey(column, key, prev.key) {
			continue
		}
		out[column] = resolvedUpdate{key: key, value: value}
	}
	return out
}

// preferKey reports whether key should replace prev as the source of column.
func preferKey(column, key, prev string) bool {
	if (key == column) != (prev == column) {
		return key == column
	}
	return key < prev
}

func assign(row *Row, column string, value any) error {
	if isMonetary(column) {
		d, err := moneyValue(value)
		if err != nil {
			return &ValidationError{Field: column, Reason: "expected a number"}
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
	return setCell(row, column, textValue(value))
}

func mergeColumns(existing, extra []string) []string {
	out := append([]string(nil), existing...)
	for _, c := range extra {
		found := false
		for _, e := range out {
			if e == c {
				found = true
				break
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}
