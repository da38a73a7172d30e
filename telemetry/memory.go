package telemetry

import (
	"sort"
	"sync"

	"github.com/google/btree"
)

// btreeDegree is the branching factor of each event tree
const btreeDegree = 32

func lessByDate(a, b Record) bool {
	return a.Date < b.Date
}

// eventEntry is the record set of one event
type eventEntry struct {
	mu      sync.RWMutex
	records *btree.BTreeG[Record]
}

func newEventEntry() *eventEntry {
	return &eventEntry{
		records: btree.NewG(btreeDegree, lessByDate),
	}
}

// MemoryStore is an in-memory Store.
// The directory lock guards the name map only; every event has its own lock,
// so writers to different events never contend after the entry exists.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*eventEntry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string]*eventEntry),
	}
}

// lookup returns the entry for name, or nil
func (s *MemoryStore) lookup(name string) *eventEntry {
	s.mu.RLock()
	entry := s.events[name]
	s.mu.RUnlock()
	return entry
}

// entry returns the entry for name, creating it if absent
func (s *MemoryStore) entry(name string) *eventEntry {
	if entry := s.lookup(name); entry != nil {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another writer may have created it between the two locks
	if entry, ok := s.events[name]; ok {
		return entry
	}
	entry := newEventEntry()
	s.events[name] = entry
	return entry
}

// StoreEvent records r under name
func (s *MemoryStore) StoreEvent(name string, r Record) {
	entry := s.entry(name)

	entry.mu.Lock()
	entry.records.ReplaceOrInsert(r)
	entry.mu.Unlock()
}

// EventInteractions returns values with from <= Date <= to in Date order
func (s *MemoryStore) EventInteractions(name string, from, to uint64) []Values {
	result := make([]Values, 0)
	if from > to {
		return result
	}

	entry := s.lookup(name)
	if entry == nil {
		return result
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()

	entry.records.AscendGreaterOrEqual(Record{Date: from}, func(r Record) bool {
		if r.Date > to {
			return false
		}
		result = append(result, r.Values)
		return true
	})
	return result
}

// EventNames returns the known event names, sorted
func (s *MemoryStore) EventNames() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.events))
	for name := range s.events {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of records stored under name
func (s *MemoryStore) Len(name string) int {
	entry := s.lookup(name)
	if entry == nil {
		return 0
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.records.Len()
}
