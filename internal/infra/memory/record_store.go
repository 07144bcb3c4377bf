package memory

import (
	"context"
	"sort"
	"sync"

	"quizverse/internal/domain"
)

// RecordStore keeps JSON documents in process memory. Data is lost on restart.
type RecordStore struct {
	mu    sync.RWMutex
	kinds map[string]map[string][]byte
}

func NewRecordStore() *RecordStore {
	return &RecordStore{kinds: make(map[string]map[string][]byte)}
}

func (s *RecordStore) Put(_ context.Context, kind, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, ok := s.kinds[kind]
	if !ok {
		records = make(map[string][]byte)
		s.kinds[kind] = records
	}
	records[id] = append([]byte(nil), data...)
	return nil
}

func (s *RecordStore) Get(_ context.Context, kind, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.kinds[kind][id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *RecordStore) Delete(_ context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.kinds[kind], id)
	return nil
}

// List returns records of a kind ordered by id.
func (s *RecordStore) List(_ context.Context, kind string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.kinds[kind]
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, append([]byte(nil), records[id]...))
	}
	return out, nil
}
