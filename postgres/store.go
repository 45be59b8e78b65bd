// Package postgres provides a PostgreSQL-backed result store for fanfold
// runners, so terminal step results survive the process and specific failed
// windows can be inspected and re-run later.
package postgres

import (
	"database/sql"

	"github.com/fanfold/fanfold"

	pstore "github.com/fanfold/fanfold/postgres/internal/persistence"
)

// NewStoreProvider returns a StoreProvider that persists run results in the
// given PostgreSQL database. The schema is initialized once, up front.
func NewStoreProvider(db *sql.DB) (fanfold.StoreProvider, error) {
	s, err := pstore.NewPostgresStore(db)
	if err != nil {
		return nil, err
	}
	return func(runID string) (fanfold.ResultStore, error) {
		return s.Run(runID), nil
	}, nil
}

// NewPostgresRunner constructs a LocalRunner whose per-run result bags are
// persisted in PostgreSQL.
func NewPostgresRunner(db *sql.DB, cfg fanfold.LocalRunnerConfig) (*fanfold.LocalRunner, error) {
	provider, err := NewStoreProvider(db)
	if err != nil {
		return nil, err
	}
	cfg.Provider = provider
	return fanfold.NewLocalRunnerWithConfig(cfg), nil
}
