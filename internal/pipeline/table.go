package pipeline

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical field names.
const (
	FieldDate                = "date"
	FieldRegion              = "region"
	FieldStatus              = "status"
	FieldInitialCancellation = "initial_cancellation"
	FieldReversal            = "reversal"
	FieldFinalCancellation   = "final_cancellation"
	FieldOrderTotal          = "order_total"
	FieldOrderNumber         = "order_number"
	FieldRestaurant          = "restaurant"
	FieldCancellationOrigin  = "cancellation_origin"
	FieldCancellationReason  = "cancellation_reason"
	FieldSalesChannel        = "sales_channel"
)

// CanonicalFields lists every canonical column in export order.
var CanonicalFields = []string{
	FieldOrderNumber,
	FieldDate,
	FieldRestaurant,
	FieldCancellationOrigin,
	FieldCancellationReason,
	FieldOrderTotal,
	FieldInitialCancellation,
	FieldReversal,
	FieldFinalCancellation,
	FieldStatus,
	FieldRegion,
	FieldSalesChannel,
}

// sourceHeaders maps the report vocabulary onto canonical fields.
var sourceHeaders = map[string]string{
	"CANC. INICIAL/VALOR DOS ITENS": FieldInitialCancellation,
	"REVERSÃO":                      FieldReversal,
	"CANCELAMENTO FINAL":            FieldFinalCancellation,
	"TOTAL DO PEDIDO":               FieldOrderTotal,
	"REGIONAIS":                     FieldRegion,
	"PRIMEIRA ANALISE":              FieldStatus,
	"DATA":                          FieldDate,
	"N° PEDIDO":                     FieldOrderNumber,
	"RESTAURANTE":                   FieldRestaurant,
	"ORIGEM DO CANCELAMENTO":        FieldCancellationOrigin,
	"MOTIVO DO CANCELAMENTO":        FieldCancellationReason,
	"CANAL DE VENDA":                FieldSalesChannel,
}

// SourceHeader returns the report header a canonical field is exported under.
// Unknown names are returned unchanged.
func SourceHeader(field string) string {
	for src, canonical := range sourceHeaders {
		if canonical == field {
			return src
		}
	}
	return field
}

// CanonicalName resolves a header or update key to its canonical field.
func CanonicalName(name string) (string, bool) {
	key := normalizeHeader(name)
	if canonical, ok := sourceHeaders[key]; ok {
		return canonical, true
	}
	if isCanonical(key) {
		return key, true
	}
	return "", false
}

func isCanonical(name string) bool {
	for _, f := range CanonicalFields {
		if f == name {
			return true
		}
	}
	return false
}

func isMonetary(field string) bool {
	switch field {
	case FieldInitialCancellation, FieldReversal, FieldFinalCancellation, FieldOrderTotal:
		return true
	}
	return false
}

// Row is one cancellation record.
type Row struct {
	Date     *time.Time `json:"date"`
	DateText string     `json:"date_text,omitempty"`

	Region string `json:"region"`
	Status string `json:"status"`

	InitialCancellation decimal.Decimal `json:"initial_cancellation"`
	Reversal            decimal.Decimal `json:"reversal"`
	FinalCancellation   decimal.Decimal `json:"final_cancellation"`
	OrderTotal          decimal.Decimal `json:"order_total"`

	OrderNumber        string `json:"order_number"`
	Restaurant         string `json:"restaurant"`
	CancellationOrigin string `json:"cancellation_origin"`
	CancellationReason string `json:"cancellation_reason"`
	SalesChannel       string `json:"sales_channel"`

	// Extra holds unmapped columns keyed by their original header.
	Extra map[string]string `json:"extra,omitempty"`
}

// Text returns the display value of a column, canonical or extra.
func (r Row) Text(column string) string {
	switch column {
	case FieldDate:
		if r.Date != nil {
			if r.Date.Hour() == 0 && r.Date.Minute() == 0 && r.Date.Second() == 0 {
				return r.Date.Format("2006-01-02")
			}
			return r.Date.Format("2006-01-02 15:04:05")
		}
		return r.DateText
	case FieldRegion:
		return r.Region
	case FieldStatus:
		return r.Status
	case FieldInitialCancellation:
		return r.InitialCancellation.String()
	case FieldReversal:
		return r.Reversal.String()
	case FieldFinalCancellation:
		return r.FinalCancellation.String()
	case FieldOrderTotal:
		return r.OrderTotal.String()
	case FieldOrderNumber:
		return r.OrderNumber
	case FieldRestaurant:
		return r.Restaurant
	case FieldCancellationOrigin:
		return r.CancellationOrigin
	case FieldCancellationReason:
		return r.CancellationReason
	case FieldSalesChannel:
		return r.SalesChannel
	}
	return r.Extra[column]
}

// Money returns the value of a monetary column.
func (r Row) Money(field string) (decimal.Decimal, bool) {
	switch field {
	case FieldInitialCancellation:
		return r.InitialCancellation, true
	case FieldReversal:
		return r.Reversal, true
	case FieldFinalCancellation:
		return r.FinalCancellation, true
	case FieldOrderTotal:
		return r.OrderTotal, true
	}
	return decimal.Zero, false
}

// Table is an ordered set of rows sharing a column list. Operations in this
// package never modify a Table they receive.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RawTable is a parsed sheet before normalization.
type RawTable struct {
	Header  []string
	Records [][]string
}

func cloneRow(r Row) Row {
	if r.Extra != nil {
		extra := make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			extra[k] = v
		}
		r.Extra = extra
	}
	if r.Date != nil {
		d := *r.Date
		r.Date = &d
	}
	return r
}
