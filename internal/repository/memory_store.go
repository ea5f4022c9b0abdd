package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/nikolayk812/lpg-cart/internal/port"
)

var _ port.LocalStore = (*MemoryStore)(nil)

// MemoryStore is a process-local store; values are copied on the way in and out.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[port.Collection]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	collections := make(map[port.Collection]map[string][]byte, len(port.Collections))
	for _, c := range port.Collections {
		collections[c] = map[string][]byte{}
	}
	return &MemoryStore{collections: collections}
}

func (s *MemoryStore) Put(_ context.Context, collection port.Collection, key string, value []byte) error {
	if err := validateKey(collection, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection][key] = slices.Clone(value)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, collection port.Collection, key string) ([]byte, error) {
	if err := validateKey(collection, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.collections[collection][key]
	if !ok {
		return nil, port.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *MemoryStore) Delete(_ context.Context, collection port.Collection, key string) error {
	if err := validateKey(collection, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], key)
	return nil
}

func (s *MemoryStore) GetAll(_ context.Context, collection port.Collection) ([]port.Record, error) {
	if !collection.Valid() {
		return nil, unknownCollection(collection)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]port.Record, 0, len(s.collections[collection]))
	for key, value := range s.collections[collection] {
		records = append(records, port.Record{Key: key, Value: slices.Clone(value)})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

func (s *MemoryStore) Clear(_ context.Context, collection port.Collection) error {
	if !collection.Valid() {
		return unknownCollection(collection)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = map[string][]byte{}
	return nil
}

func (s *MemoryStore) ReplaceAll(_ context.Context, collection port.Collection, records []port.Record) error {
	if !collection.Valid() {
		return unknownCollection(collection)
	}
	next := make(map[string][]byte, len(records))
	for _, r := range records {
		if err := validateKey(collection, r.Key); err != nil {
			return err
		}
		next[r.Key] = slices.Clone(r.Value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = next
	return nil
}
