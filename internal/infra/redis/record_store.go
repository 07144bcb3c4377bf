package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"quizverse/internal/domain"
)

// RecordStore keeps content records in one hash per kind:
// HSET records:{kind} {id} {json}
type RecordStore struct {
	client *redis.Client
}

func NewRecordStore(client *redis.Client) *RecordStore {
	return &RecordStore{client: client}
}

func (s *RecordStore) Put(ctx context.Context, kind, id string, data []byte) error {
	if err := s.client.HSet(ctx, s.key(kind), id, data).Err(); err != nil {
		return fmt.Errorf("put %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *RecordStore) Get(ctx context.Context, kind, id string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.key(kind), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}
	return data, nil
}

func (s *RecordStore) Delete(ctx context.Context, kind, id string) error {
	if err := s.client.HDel(ctx, s.key(kind), id).Err(); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *RecordStore) List(ctx context.Context, kind string) ([][]byte, error) {
	all, err := s.client.HGetAll(ctx, s.key(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, []byte(all[id]))
	}
	return out, nil
}

func (s *RecordStore) key(kind string) string {
	return "records:" + kind
}
