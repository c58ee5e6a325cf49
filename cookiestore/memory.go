// cookiestore/memory.go
package cookiestore

import "sync"

// MemoryStore keeps cookies in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// Entry is a stored cookie.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Path  string `json:"path"`
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[name]
	if !ok {
		return "", ErrCookieNotFound
	}
	return entry.Value, nil
}

func (s *MemoryStore) Set(name, value string, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[name] = Entry{Name: name, Value: value, Path: pathOrDefault(opts.Path)}
	return nil
}

func (s *MemoryStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, name)
	return nil
}

// Entries returns a copy of all stored cookies.
func (s *MemoryStore) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out
}
