package repositorytest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Alturino/marketplace/internal/config"
	"github.com/Alturino/marketplace/internal/infra"
)

const (
	postgresImage = "postgres:16-alpine"
	redisImage    = "redis:7-alpine"
	dbName        = "marketplace"
	dbUser        = "postgres"
	dbPassword    = "postgres"
)

func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// NewPostgres starts a postgres container, applies the migrations found at
// migrationPath and returns a pool connected to it. The test is skipped
// when no container runtime is reachable.
func NewPostgres(t *testing.T, migrationPath string) *pgxpool.Pool {
	t.Helper()
	skipShort(t)

	c := zerolog.Nop().WithContext(context.Background())
	container, err := postgres.Run(c, postgresImage,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Skipf("failed starting postgres container with error=%s", err.Error())
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(c)
	require.NoError(t, err)
	port, err := container.MappedPort(c, "5432/tcp")
	require.NoError(t, err)

	cfg := config.Database{
		Name:           dbName,
		Host:           host,
		Port:           uint16(port.Int()),
		Username:       dbUser,
		Password:       dbPassword,
		TimeZone:       "UTC",
		MigrationPath:  migrationPath,
		MaxConnections: 8,
		MinConnections: 1,
	}
	require.NoError(t, infra.RunMigration(c, cfg, infra.MigrationUp))

	pool := infra.NewDatabaseClient(c, cfg)
	t.Cleanup(pool.Close)
	return pool
}

func NewRedis(t *testing.T) *redis.Client {
	t.Helper()
	skipShort(t)

	c := zerolog.Nop().WithContext(context.Background())
	container, err := tcRedis.Run(c, redisImage)
	if err != nil {
		t.Skipf("failed starting redis container with error=%s", err.Error())
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(c)
	require.NoError(t, err)
	port, err := container.MappedPort(c, "6379/tcp")
	require.NoError(t, err)

	client := infra.NewCacheClient(c, config.Cache{Host: host, Port: uint16(port.Int())})
	t.Cleanup(func() { _ = client.Close() })
	return client
}
