package pipeline

import "time"

// FilterByDate keeps rows dated within [start, end], both ends inclusive.
// With either bound nil the table is returned as is. Rows without a readable
// date never match an active filter, and an inverted range matches nothing.
func FilterByDate(t Table, start, end *time.Time) Table {
	if start == nil || end == nil {
		return t
	}
	out := Table{
		Columns: t.Columns,
		Rows:    make([]Row, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		if r.Date == nil {
			continue
		}
		if r.Date.Before(*start) || r.Date.After(*end) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}
