// Package util provides test utilities shared by integration tests.
package util

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	// Shared address for all tests in local dev
	sharedRedisAddr string
	containerOnce   sync.Once
	containerErr    error
)

// SetupTestRedis returns a Redis client for integration tests, isolated
// per test by flushing a dedicated logical database.
// - CI: connects to an external Redis service via CI_REDIS_URL
// - Local: uses a shared testcontainer (started once per package)
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	addr := getOrCreateSharedRedis(t)

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err(), "redis not reachable at %s", addr)

	// Each test starts from a clean keyspace.
	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}

// getOrCreateSharedRedis returns the address of the shared Redis backend.
// In CI, uses CI_REDIS_URL. In local dev, starts a shared testcontainer once.
func getOrCreateSharedRedis(t *testing.T) string {
	if ciURL := os.Getenv("CI_REDIS_URL"); ciURL != "" {
		t.Log("Using external Redis from CI_REDIS_URL")
		opts, err := redis.ParseURL(ciURL)
		require.NoError(t, err)
		return opts.Addr
	}

	containerOnce.Do(func() {
		ctx := context.Background()
		t.Log("Starting shared Redis testcontainer for all tests")

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor: wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			containerErr = err
			return
		}

		endpoint, err := container.Endpoint(ctx, "")
		if err != nil {
			containerErr = err
			return
		}

		sharedRedisAddr = endpoint
		t.Logf("Shared Redis container ready: %s", sharedRedisAddr)
	})

	require.NoError(t, containerErr, "Failed to setup shared Redis container")
	return sharedRedisAddr
}
