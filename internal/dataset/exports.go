package dataset

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Export is a rendered workbook waiting to be downloaded.
type Export struct {
	Filename  string
	Data      []byte
	ExpiresAt time.Time
}

// Exports keeps rendered workbooks in memory until they expire.
type Exports struct {
	mu    sync.Mutex
	items map[string]Export
	ttl   time.Duration
	now   func() time.Time
}

func NewExports(ttl time.Duration) *Exports {
	return &Exports{
		items: make(map[string]Export),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores data and returns the download token.
func (e *Exports) Put(filename string, data []byte) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.purgeExpiredLocked(e.now())

	token := uuid.NewString()
	e.items[token] = Export{
		Filename:  filename,
		Data:      data,
		ExpiresAt: e.now().Add(e.ttl),
	}
	return token
}

func (e *Exports) Get(token string) (Export, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.items[token]
	if !ok {
		return Export{}, false
	}
	if e.now().After(v.ExpiresAt) {
		delete(e.items, token)
		return Export{}, false
	}
	return v, true
}

// Len counts stored exports, expired ones included until purged.
func (e *Exports) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Purge drops expired exports and returns how many were removed.
func (e *Exports) Purge() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.purgeExpiredLocked(e.now())
}

func (e *Exports) purgeExpiredLocked(now time.Time) int {
	n := 0
	for k, v := range e.items {
		if now.After(v.ExpiresAt) {
			delete(e.items, k)
			n++
		}
	}
	return n
}
