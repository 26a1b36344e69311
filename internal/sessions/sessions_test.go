package sessions

import (
	"context"
	"fmt"
	"stickynotes/internal/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return config.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port()), Prefix: "session:"}
}

func TestRedisStorage(t *testing.T) {
	storage, err := NewRedisStorage(context.Background(), startRedis(t))
	require.NoError(t, err)
	defer storage.Close()

	val, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("abc", []byte("payload"), time.Minute))
	val, err = storage.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)

	require.NoError(t, storage.Delete("abc"))
	val, err = storage.Get("abc")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Set("one", []byte("1"), 0))
	require.NoError(t, storage.Set("two", []byte("2"), 0))
	require.NoError(t, storage.Reset())
	val, err = storage.Get("one")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestRedisStorageExpiry(t *testing.T) {
	storage, err := NewRedisStorage(context.Background(), startRedis(t))
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Set("short", []byte("x"), time.Second))
	time.Sleep(1500 * time.Millisecond)
	val, err := storage.Get("short")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestNewStorageMemory(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{Store: "memory"}}
	storage, err := NewStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, storage)
}

func TestNewStorageRedisUnavailable(t *testing.T) {
	cfg := &config.Config{
		Session: config.SessionConfig{Store: "redis"},
		Redis:   config.RedisConfig{Addr: "127.0.0.1:1"},
	}
	_, err := NewStorage(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
