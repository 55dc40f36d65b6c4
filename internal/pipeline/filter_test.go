package pipeline

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func datedTable() Table {
	return Table{Rows: []Row{
		{OrderNumber: "a", Date: day(2025, 1, 1)},
		{OrderNumber: "b", Date: day(2025, 1, 10)},
		{OrderNumber: "c", DateText: "sem data"},
		{OrderNumber: "d", Date: day(2025, 1, 31)},
		{OrderNumber: "e", Date: day(2025, 2, 1)},
	}}
}

func orderNumbers(t Table) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r.OrderNumber)
	}
	return out
}

func TestFilterByDate_InclusiveBounds(t *testing.T) {
	t.Parallel()

	got := orderNumbers(FilterByDate(datedTable(), day(2025, 1, 1), day(2025, 1, 31)))
	want := []string{"a", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want=%v got=%v", want, got)
		}
	}
}

func TestFilterByDate_MissingBoundPassesThrough(t *testing.T) {
	t.Parallel()

	tbl := datedTable()
	if got := FilterByDate(tbl, nil, day(2025, 1, 1)); got.Len() != tbl.Len() {
		t.Fatalf("nil start should pass through, got %d rows", got.Len())
	}
	if got := FilterByDate(tbl, day(2025, 1, 1), nil); got.Len() != tbl.Len() {
		t.Fatalf("nil end should pass through, got %d rows", got.Len())
	}
}

func TestFilterByDate_InvertedRangeIsEmpty(t *testing.T) {
	t.Parallel()

	got := FilterByDate(datedTable(), day(2025, 2, 1), day(2025, 1, 1))
	if got.Len() != 0 {
		t.Fatalf("inverted range want=0 rows got=%d", got.Len())
	}
}
