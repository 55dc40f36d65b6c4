package dataset

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"CancelDash/internal/pipeline"
)

// Snapshot kinds.
const (
	KindUpload       = "upload"
	KindManualUpdate = "manual_update"
)

var ErrNoDataset = errors.New("no data available, upload a report first")

// Snapshot is one published version of the current table. Snapshots are never
// modified after Store publishes them.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	Filename  string         `json:"filename"`
	Kind      string         `json:"type"`
	CreatedAt time.Time      `json:"upload_date"`
	Table     pipeline.Table `json:"-"`
}

// HistoryEntry records a published snapshot.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Kind      string    `json:"type"`
	CreatedAt time.Time `json:"upload_date"`
	Size      int64     `json:"size"`
	Rows      int       `json:"rows"`
}

// Store holds the current table. Readers never block; writers are serialized
// so each mutation sees the snapshot published by the previous one.
type Store struct {
	current atomic.Pointer[Snapshot]
	writeMu sync.Mutex

	histMu  sync.RWMutex
	history []HistoryEntry

	listeners []func(*Snapshot)
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// OnPublish registers fn to be called after every published snapshot.
// Register listeners before the store is shared.
func (s *Store) OnPublish(fn func(*Snapshot)) {
	s.listeners = append(s.listeners, fn)
}

// Current returns the latest snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoDataset
	}
	return snap, nil
}

// Replace publishes t as the current table, as an upload does.
func (s *Store) Replace(t pipeline.Table, filename string, size int64) *Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.publish(t, filename, KindUpload, size)
}

// Mutate applies fn to the current table and publishes the result. With
// allowEmpty, fn receives an empty table when nothing has been uploaded yet;
// otherwise ErrNoDataset is returned. Nothing is published when fn fails.
func (s *Store) Mutate(filename string, allowEmpty bool, fn func(pipeline.Table) (pipeline.Table, error)) (*Snapshot, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var base pipeline.Table
	if snap := s.current.Load(); snap != nil {
		base = snap.Table
	} else if !allowEmpty {
		return nil, ErrNoDataset
	}

	next, err := fn(base)
	if err != nil {
		return nil, err
	}
	return s.publish(next, filename, KindManualUpdate, 0), nil
}

func (s *Store) publish(t pipeline.Table, filename, kind string, size int64) *Snapshot {
	snap := &Snapshot{
		ID:        uuid.New(),
		Filename:  filename,
		Kind:      kind,
		CreatedAt: s.now(),
		Table:     t,
	}
	s.current.Store(snap)

	s.histMu.Lock()
	s.history = append(s.history, HistoryEntry{
		ID:        snap.ID,
		Filename:  filename,
		Kind:      kind,
		CreatedAt: snap.CreatedAt,
		Size:      size,
		Rows:      t.Len(),
	})
	s.histMu.Unlock()

	for _, fn := range s.listeners {
		fn(snap)
	}
	return snap
}

// History returns published snapshots, newest first.
func (s *Store) History() []HistoryEntry {
	s.histMu.RLock()
	defer s.histMu.RUnlock()

	out := make([]HistoryEntry, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// PruneHistory drops history entries created before cutoff and returns how
// many were removed. The current snapshot itself is unaffected.
func (s *Store) PruneHistory(cutoff time.Time) int {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	kept := s.history[:0]
	for _, h := range s.history {
		if h.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, h)
	}
	removed := len(s.history) - len(kept)
	s.history = kept
	return removed
}
