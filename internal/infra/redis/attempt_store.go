package redis

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizverse/internal/app"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Attempts own a countdown goroutine, so the live objects stay in a local map.
//   - Redis holds an operations marker per attempt (quiz:attempt:{id} -> quiz id)
//     so live attempts can be listed with `SCAN quiz:attempt:*`. The service never
//     reads it back. Its TTL covers the quiz duration plus ttl and is refreshed
//     whenever the attempt is used.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Add(attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID()] = attempt
	// best-effort marker
	_ = s.client.Set(context.Background(), s.key(attempt.ID()), attempt.Quiz().ID, s.markerTTL(attempt)).Err()
}

func (s *AttemptStore) Get(attemptID string) (*app.Attempt, bool) {
	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if ok {
		_ = s.client.Expire(context.Background(), s.key(attemptID), s.markerTTL(attempt)).Err()
	}
	return attempt, ok
}

func (s *AttemptStore) Remove(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[attemptID]; !ok {
		return
	}
	delete(s.attempts, attemptID)
	_ = s.client.Del(context.Background(), s.key(attemptID)).Err()
}

func (s *AttemptStore) List() []*app.Attempt {
	s.mu.RLock()
	out := make([]*app.Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, a)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (s *AttemptStore) markerTTL(attempt *app.Attempt) time.Duration {
	return s.ttl + time.Duration(attempt.Quiz().DurationMinutes)*time.Minute
}

func (s *AttemptStore) key(attemptID string) string {
	return "quiz:attempt:" + attemptID
}
