package fanfold

import (
	"database/sql"

	"github.com/fanfold/fanfold/internal/persistence"
)

// NewSQLiteRunner constructs a LocalRunner whose per-run result bags are
// persisted in the provided SQLite database, so terminal step results survive
// the process and specific failed windows can be inspected and re-run later.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:fanfold.db?_journal=WAL")
//	r, err := fanfold.NewSQLiteRunner(db, fanfold.LocalRunnerConfig{Concurrency: 8})
func NewSQLiteRunner(db *sql.DB, cfg LocalRunnerConfig) (*LocalRunner, error) {
	provider, err := persistence.SQLiteProvider(db)
	if err != nil {
		return nil, err
	}
	cfg.Provider = provider
	return NewLocalRunnerWithConfig(cfg), nil
}
