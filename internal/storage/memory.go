package storage

import (
	"context"
	"sync"

	"github.com/user/chengjiao-crawler/internal/domain"
)

// MemoryStore is an in-process record store for dry runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.TransactionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.TransactionRecord)}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Exists(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[url]
	return ok, nil
}

func (s *MemoryStore) Insert(_ context.Context, rec *domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.URL]; ok {
		return domain.ErrDuplicateRecord
	}
	s.records[rec.URL] = *rec
	return nil
}

func (s *MemoryStore) FindByURL(_ context.Context, url string) (*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[url]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}
