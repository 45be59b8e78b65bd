// Package testutil starts the throwaway PostgreSQL instance the store
// integration tests run against.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pgOnce sync.Once
	pgDSN  string
	pgErr  error
)

// GetPostgresEndpoint returns a DSN for a ready PostgreSQL instance. If
// FANFOLD_POSTGRES_DSN is set it is returned as-is; otherwise a postgres:16
// container is started once and shared by every test in the package.
func GetPostgresEndpoint(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("FANFOLD_POSTGRES_DSN"); dsn != "" {
		return dsn
	}

	pgOnce.Do(func() {
		// Give generous timeout in CI environments
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		postgresC, err := testcontainers.Run(
			ctx, "postgres:16",
			testcontainers.WithExposedPorts("5432/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForAll(
					// Container is listening
					wait.ForListeningPort("5432/tcp"),
					// Postgres reports readiness in logs
					wait.ForLog("ready to accept connections"),
				).WithDeadline(2*time.Minute),
			),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_USER":     "fanfold",
				"POSTGRES_PASSWORD": "fanfold",
				"POSTGRES_DB":       "fanfold_test",
			}),
		)
		if err != nil {
			pgErr = err
			return
		}

		t.Cleanup(func() {
			testcontainers.CleanupContainer(t, postgresC)
		})

		endpoint, err := postgresC.Endpoint(ctx, "")
		if err != nil {
			_ = postgresC.Terminate(context.Background()) // best-effort cleanup
			pgErr = err
			return
		}

		pgDSN = fmt.Sprintf("postgres://fanfold:fanfold@%s/fanfold_test?sslmode=disable", endpoint)
	})

	if pgErr != nil {
		t.Fatalf("starting postgres container: %v", pgErr)
	}
	return pgDSN
}
