// Package storagetest spins up a disposable Postgres instance for
// integration tests that need the real database — the event log's
// LISTEN/NOTIFY behavior and the graph projector's MERGE semantics can't
// be meaningfully exercised against a mock.
package storagetest

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fourthplaces/rootsignal/internal/storage"
)

// NewTestClient starts a pgvector-enabled Postgres container, runs every
// migration plus ent schema creation plus vector index promotion, and
// returns a ready storage.Client. The container is torn down automatically
// at test cleanup, mirroring the teacher's test/database.NewTestClient.
func NewTestClient(t *testing.T) (*storage.Client, storage.Config) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("rootsignal_test"),
		postgres.WithUsername("rootsignal"),
		postgres.WithPassword("rootsignal"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := storage.Config{
		Host:            host,
		Port:            port.Int(),
		User:            "rootsignal",
		Password:        "rootsignal",
		Database:        "rootsignal_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: time.Minute,
	}

	client, err := storage.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client, cfg
}

// ConnString assembles the DSN NotifyListener needs for its own dedicated
// pgx connection, independent of the pooled *sql.DB on storage.Client.
func ConnString(cfg storage.Config) string {
	return "host=" + cfg.Host +
		" port=" + strconv.Itoa(cfg.Port) +
		" user=" + cfg.User +
		" password=" + cfg.Password +
		" dbname=" + cfg.Database +
		" sslmode=" + cfg.SSLMode
}
