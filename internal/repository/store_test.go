package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKVStore runs the behaviour every backend must share
func testKVStore(t *testing.T, kv KVStore) {
	t.Helper()
	ctx := context.Background()
	key := fmt.Sprintf("test:%d", time.Now().UnixNano())

	_, err := kv.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, key, []byte(`{"a":1}`)))
	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)

	require.NoError(t, kv.Set(ctx, key, []byte(`{"a":2}`)), "set overwrites")
	got, err = kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), got)

	require.NoError(t, kv.Delete(ctx, key))
	_, err = kv.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, kv.Delete(ctx, key), "deleting a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	kv := NewMemoryStore()
	defer kv.Close()
	testKVStore(t, kv)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[0] = 'y'
	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestSQLiteStore(t *testing.T) {
	kv, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer kv.Close()
	testKVStore(t, kv)
}

func TestSQLiteStore_File(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/state.db"

	kv, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	kv, err := NewRedisStore(RedisConfig{Addr: addr, Prefix: "propertychat-test:"})
	require.NoError(t, err)
	defer kv.Close()
	testKVStore(t, kv)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	kv, err := NewPostgresStore(dsn, 2, 1)
	require.NoError(t, err)
	defer kv.Close()
	testKVStore(t, kv)
}

func TestOpenStore(t *testing.T) {
	kv, err := OpenStore(StoreConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)

	kv, err = OpenStore(StoreConfig{Backend: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, kv)
	require.NoError(t, kv.Close())

	_, err = OpenStore(StoreConfig{Backend: "etcd"})
	assert.Error(t, err)
}
