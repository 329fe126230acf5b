package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-process store. Used in tests and as a
// single-node fallback when no Redis address is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recs: make(map[string]Record),
	}
}

func (s *MemoryStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	s.recs[rec.JTI] = rec
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Get(_ context.Context, jti string) (Record, error) {
	s.mu.RLock()
	rec, ok := s.recs[jti]
	s.mu.RUnlock()

	if !ok {
		return Record{}, ErrNoSession
	}

	// lazy expiry
	if time.Now().After(rec.ExpiresAt) {
		s.mu.Lock()
		delete(s.recs, jti)
		s.mu.Unlock()

		return Record{}, ErrNoSession
	}

	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, jti string) error {
	s.mu.Lock()
	delete(s.recs, jti)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID, keepJTI string) error {
	s.mu.Lock()

	for jti, rec := range s.recs {
		if rec.UserID == userID && jti != keepJTI {
			delete(s.recs, jti)
		}
	}

	s.mu.Unlock()

	return nil
}
