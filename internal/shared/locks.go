package shared

import "sync"

// LockTable serializes multi-step mutations per entity id. Project lifecycle
// operations span a database write and a filesystem write with no transaction
// covering both, so concurrent mutations of the same id must not interleave.
type LockTable struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLockTable constructs an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{entries: make(map[int64]*lockEntry)}
}

// Acquire blocks until the id's lock is held and returns the release func.
// Entries are reference counted so the table does not grow with id space.
func (t *LockTable) Acquire(id int64) func() {
	t.mu.Lock()
	entry, ok := t.entries[id]
	if !ok {
		entry = &lockEntry{}
		t.entries[id] = entry
	}
	entry.refs++
	t.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			t.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(t.entries, id)
			}
			t.mu.Unlock()
		})
	}
}
