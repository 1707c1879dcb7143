package fakeapi

import (
	"sort"
	"sync"
)

// Dump is a stored code dump as the API reports it.
type Dump struct {
	ID          string `json:"-"`
	Owner       string `json:"-"`
	Code        string `json:"-"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Access      string `json:"access"`
	Created     string `json:"created"`
}

// Store defines the dump storage operations of the fake API.
type Store interface {
	// Create attempts to store d under d.ID.
	// Returns true if created, false if the ID already exists (collision).
	Create(d Dump) bool
	// ByOwner returns the dumps created with the given key, oldest first.
	ByOwner(owner string) []Dump
}

// MemoryStore implements Store in memory.
type MemoryStore struct {
	mu    sync.Mutex
	seq   int
	dumps map[string]storedDump
}

type storedDump struct {
	Dump
	seq int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dumps: make(map[string]storedDump)}
}

// Create stores d unless its ID is taken.
func (s *MemoryStore) Create(d Dump) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dumps[d.ID]; ok {
		return false
	}
	s.seq++
	s.dumps[d.ID] = storedDump{Dump: d, seq: s.seq}
	return true
}

// ByOwner returns the dumps of owner in creation order.
func (s *MemoryStore) ByOwner(owner string) []Dump {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []storedDump
	for _, d := range s.dumps {
		if d.Owner == owner {
			found = append(found, d)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })

	out := make([]Dump, 0, len(found))
	for _, d := range found {
		out = append(out, d.Dump)
	}
	return out
}
