package core

import (
	"strings"
	"sync"

	"github.com/tidwall/btree"
)

// MetadataStore is a thread-safe, in-memory key-value store for engine-wide
// bookkeeping such as schema or version markers. Keys are kept ordered so
// they can be listed by prefix.
type MetadataStore struct {
	mu   sync.RWMutex
	data btree.Map[string, []byte]
}

// NewMetadataStore creates and returns a new, empty MetadataStore.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{}
}

// Set adds or updates the value for key. The slice is stored as given.
func (s *MetadataStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Set(key, value)
}

// Get retrieves the value for key.
func (s *MetadataStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data.Get(key)
}

// Delete removes key and reports whether it was present.
func (s *MetadataStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found := s.data.Delete(key)
	return found
}

// Keys returns, in order, every key starting with prefix.
func (s *MetadataStore) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	s.data.Ascend(prefix, func(key string, _ []byte) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		keys = append(keys, key)
		return true
	})
	return keys
}

// Len returns the number of keys.
func (s *MetadataStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Len()
}

// Clear removes every key.
func (s *MetadataStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = btree.Map[string, []byte]{}
}
