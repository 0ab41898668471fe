package writer

import "sync"

// DedupRecord is what a DedupIndex remembers about one previously written
// digest: the extent it can be reused from and the original byte length
// (spec.md §4.5, "Deduplication").
type DedupRecord struct {
	Partition  uint8
	StartBlock uint64
	UID        uint64
	Length     uint64
}

// DedupIndex is the external deduplication map the write pipeline
// consults before writing a file's bytes. Callers may supply a
// tape-spanning or distributed implementation; pkg/ltfs.Open supplies a
// MemoryDedupIndex. A nil DedupIndex given to New disables deduplication.
type DedupIndex interface {
	Lookup(digest string) (DedupRecord, bool)
	Record(digest string, rec DedupRecord)
}

// MemoryDedupIndex is a process-local DedupIndex, adequate for a single
// write session against one cartridge.
type MemoryDedupIndex struct {
	mu      sync.RWMutex
	entries map[string]DedupRecord
}

// NewMemoryDedupIndex builds an empty in-memory DedupIndex.
func NewMemoryDedupIndex() *MemoryDedupIndex {
	return &MemoryDedupIndex{entries: make(map[string]DedupRecord)}
}

func (m *MemoryDedupIndex) Lookup(digest string) (DedupRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.entries[digest]
	return rec, ok
}

func (m *MemoryDedupIndex) Record(digest string, rec DedupRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[digest] = rec
}
