package store

import (
	"context"
	"sync"

	"github.com/zaqqye/seb_proctor/internal/models"
)

type memoryEntry struct {
	mu  sync.Mutex
	rec models.ExamMetadata
}

// MemoryStore keeps records in process. Each key has its own lock; an
// entry exists only once a record was written for it.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[models.UserID]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[models.UserID]*memoryEntry)}
}

func (s *MemoryStore) lookup(user models.UserID) (*memoryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[user]
	return e, ok
}

func (s *MemoryStore) Get(ctx context.Context, user models.UserID) (models.ExamMetadata, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.ExamMetadata{}, false, err
	}
	e, ok := s.lookup(user)
	if !ok {
		return models.ExamMetadata{}, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone(), true, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, user models.UserID, rec models.ExamMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	e, ok := s.entries[user]
	if !ok {
		s.entries[user] = &memoryEntry{rec: rec.Clone()}
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	e.mu.Lock()
	e.rec = rec.Clone()
	e.mu.Unlock()
	return nil
}

// Update holds the store lock while deciding a first write, so a record
// that fn declines to create never gets an entry.
func (s *MemoryStore) Update(ctx context.Context, user models.UserID, fn func(rec *models.ExamMetadata, found bool) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	e, ok := s.entries[user]
	if !ok {
		defer s.mu.Unlock()
		var rec models.ExamMetadata
		if fn(&rec, false) {
			s.entries[user] = &memoryEntry{rec: rec}
		}
		return nil
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	rec := e.rec.Clone()
	if fn(&rec, true) {
		e.rec = rec
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
