// Package session keeps per-browser state (signed-in identity and one-shot
// flash notices) on the server, addressed by a signed cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound 表示会话不存在或已过期。
var ErrNotFound = errors.New("session: not found")

// Flash 是下一次页面渲染时展示一次的提示。
type Flash struct {
	Type     string   `json:"type"`
	Messages []string `json:"messages"`
}

// Data 是会话中持久化的全部字段。
type Data struct {
	UserID   uint   `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Flash    *Flash `json:"flash,omitempty"`
}

// Store 抽象会话存储后端。
type Store interface {
	Get(ctx context.Context, id string) (Data, error)
	Set(ctx context.Context, id string, data Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

const redisKeyPrefix = "session:"

// RedisStore 以 JSON 形式把会话写入 Redis，并依赖键过期回收。
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Data, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, ErrNotFound
		}
		return Data{}, fmt.Errorf("get session: %w", err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("decode session: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, data Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore 是单进程内存实现，用于本地开发与测试。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Data{}, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return Data{}, ErrNotFound
	}
	return cloneData(entry.data), nil
}

func (s *MemoryStore) Set(_ context.Context, id string, data Data, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{data: cloneData(data)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[id] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func cloneData(d Data) Data {
	if d.Flash != nil {
		f := *d.Flash
		f.Messages = append([]string(nil), d.Flash.Messages...)
		d.Flash = &f
	}
	return d
}
