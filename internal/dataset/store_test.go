package dataset

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"CancelDash/internal/pipeline"
)

func sampleTable() pipeline.Table {
	return pipeline.Table{
		Columns: []string{pipeline.FieldRegion, pipeline.FieldStatus},
		Rows: []pipeline.Row{
			{Region: "North", OrderTotal: decimal.NewFromInt(100)},
		},
	}
}

func TestStore_EmptyCurrent(t *testing.T) {
	s := NewStore()
	if _, err := s.Current(); !errors.Is(err, ErrNoDataset) {
		t.Fatalf("want ErrNoDataset got %v", err)
	}
	_, err := s.Mutate("x", false, func(tb pipeline.Table) (pipeline.Table, error) { return tb, nil })
	if !errors.Is(err, ErrNoDataset) {
		t.Fatalf("Mutate without data want ErrNoDataset got %v", err)
	}
}

func TestStore_ReplaceAndMutate(t *testing.T) {
	s := NewStore()
	var published []string
	s.OnPublish(func(snap *Snapshot) { published = append(published, snap.Kind) })

	first := s.Replace(sampleTable(), "jan.xlsx", 2048)
	cur, err := s.Current()
	if err != nil || cur.ID != first.ID {
		t.Fatalf("Current want=%v got=%v err=%v", first.ID, cur, err)
	}

	region := "South"
	snap, err := s.Mutate("manual", false, func(tb pipeline.Table) (pipeline.Table, error) {
		return pipeline.Append(tb, pipeline.NewRow{
			Region:              &region,
			InitialCancellation: decimal.NewNullDecimal(decimal.NewFromInt(1)),
			Reversal:            decimal.NewNullDecimal(decimal.Zero),
			FinalCancellation:   decimal.NewNullDecimal(decimal.NewFromInt(1)),
			OrderTotal:          decimal.NewNullDecimal(decimal.NewFromInt(10)),
		})
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if snap.Table.Len() != 2 || first.Table.Len() != 1 {
		t.Fatalf("want new snapshot with 2 rows and old with 1, got %d and %d", snap.Table.Len(), first.Table.Len())
	}
	if snap.Kind != KindManualUpdate {
		t.Fatalf("kind want=%s got=%s", KindManualUpdate, snap.Kind)
	}
	if len(published) != 2 || published[0] != KindUpload {
		t.Fatalf("listeners not called: %v", published)
	}

	_, err = s.Mutate("manual", false, func(tb pipeline.Table) (pipeline.Table, error) {
		return pipeline.Update(tb, 9, map[string]any{"region": "X"})
	})
	var nf *pipeline.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError got %v", err)
	}
	if cur, _ := s.Current(); cur.ID != snap.ID {
		t.Fatalf("failed mutation must not publish")
	}
}

func TestStore_MutateOnEmptyAllowed(t *testing.T) {
	s := NewStore()
	snap, err := s.Mutate("manual", true, func(tb pipeline.Table) (pipeline.Table, error) {
		if tb.Len() != 0 {
			t.Fatalf("want empty base table")
		}
		return sampleTable(), nil
	})
	if err != nil || snap.Table.Len() != 1 {
		t.Fatalf("Mutate on empty: %v", err)
	}
}

func TestStore_ConcurrentMutationsSerialized(t *testing.T) {
	s := NewStore()
	s.Replace(pipeline.Table{}, "empty", 0)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Mutate("m", false, func(tb pipeline.Table) (pipeline.Table, error) {
				out := pipeline.Table{Columns: tb.Columns, Rows: append(append([]pipeline.Row(nil), tb.Rows...), pipeline.Row{})}
				return out, nil
			})
			if cur, err := s.Current(); err != nil || cur == nil {
				t.Errorf("reader saw no snapshot")
			}
		}()
	}
	wg.Wait()

	cur, _ := s.Current()
	if cur.Table.Len() != writers {
		t.Fatalf("lost update: want=%d rows got=%d", writers, cur.Table.Len())
	}
}

func TestStore_HistoryNewestFirstAndPrune(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.AddDate(0, 0, tick)
	}

	s.Replace(sampleTable(), "a.xlsx", 1)
	s.Replace(sampleTable(), "b.xlsx", 1)
	s.Replace(sampleTable(), "c.xlsx", 1)

	h := s.History()
	if len(h) != 3 || h[0].Filename != "c.xlsx" || h[2].Filename != "a.xlsx" {
		t.Fatalf("unexpected history order %+v", h)
	}

	removed := s.PruneHistory(base.AddDate(0, 0, 3))
	if removed != 2 {
		t.Fatalf("pruned want=2 got=%d", removed)
	}
	if h := s.History(); len(h) != 1 || h[0].Filename != "c.xlsx" {
		t.Fatalf("unexpected history after prune %+v", h)
	}
}

func TestExports_Expiry(t *testing.T) {
	e := NewExports(time.Minute)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return clock }

	token := e.Put("out.xlsx", []byte("data"))
	if got, ok := e.Get(token); !ok || got.Filename != "out.xlsx" {
		t.Fatalf("Get fresh export failed")
	}

	clock = clock.Add(2 * time.Minute)
	if n := e.Purge(); n != 1 {
		t.Fatalf("purged want=1 got=%d", n)
	}
	if _, ok := e.Get(token); ok {
		t.Fatalf("expired export still served")
	}
}
