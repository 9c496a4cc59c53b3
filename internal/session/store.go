package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "session_id"
	keyPrefix  = "session:"
)

// Store tracks which browser sessions are alive. Sessions expire after a
// period of inactivity.
type Store interface {
	// Create starts a new session and returns its ID.
	Create(ctx context.Context) (string, error)
	// Touch extends a live session and reports whether it existed.
	Touch(ctx context.Context, id string) (bool, error)
	// Exists reports whether id is live without extending it.
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in Redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()
	created := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.rdb.Set(ctx, keyPrefix+id, created, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Touch(ctx context.Context, id string) (bool, error) {
	return s.rdb.Expire(ctx, keyPrefix+id, s.ttl).Result()
}

func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+id).Result()
	return n == 1, err
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

// MemoryStore is a process-local Store used when no Redis is configured.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	expires map[string]time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, expires: make(map[string]time.Time)}
}

func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()
	s.mu.Lock()
	s.expires[id] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Touch(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.liveLocked(id) {
		return false, nil
	}
	s.expires[id] = s.now().Add(s.ttl)
	return true, nil
}

func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(id), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.expires, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) liveLocked(id string) bool {
	exp, ok := s.expires[id]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.expires, id)
		return false
	}
	return true
}
