package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a key or record does not exist
var ErrNotFound = errors.New("not found")

// KVStore is the durable key-value surface conversation state lives in
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// StoreConfig selects and configures a KVStore backend
type StoreConfig struct {
	Backend   string // memory, redis, postgres, sqlite
	KeyPrefix string

	PostgresDSN          string
	PostgresMaxConns     int
	PostgresMaxIdleConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	SQLitePath string
}

// OpenStore opens the configured backend
func OpenStore(cfg StoreConfig) (KVStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
			Prefix:   cfg.KeyPrefix,
		})
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN, cfg.PostgresMaxConns, cfg.PostgresMaxIdleConns)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a key; missing keys are not an error
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
