package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/smarthealthy/tracker-api/internal/models"
)

// RedisDocumentStore keeps the whole document under a single key.
type RedisDocumentStore struct {
	client *redis.Client
	key    string
}

// NewRedisDocumentStore constructs a redis-backed document store.
func NewRedisDocumentStore(client *redis.Client, key string) *RedisDocumentStore {
	if key == "" {
		key = "tracker:document"
	}
	return &RedisDocumentStore{client: client, key: key}
}

func (s *RedisDocumentStore) Load(ctx context.Context) (*models.Document, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (s *RedisDocumentStore) Save(ctx context.Context, doc *models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisDocumentStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
