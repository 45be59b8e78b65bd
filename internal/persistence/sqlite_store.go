package persistence

import (
	"database/sql"
	"errors"
)

// SQLiteStore persists run results in a SQLite database, one row per
// (run, address). Payloads are gob-encoded blobs.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS step_results (
			run_id TEXT NOT NULL,
			address TEXT NOT NULL,
			payload BLOB,
			PRIMARY KEY (run_id, address)
		);`,
	)
	return err
}

// Run returns a Store view scoped to a single run.
func (s *SQLiteStore) Run(runID string) Store {
	return &sqliteRunStore{db: s.db, runID: runID}
}

// SQLiteProvider returns a Provider backed by the given database. The schema
// is initialized once, up front.
func SQLiteProvider(db *sql.DB) (Provider, error) {
	s, err := NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return func(runID string) (Store, error) {
		return s.Run(runID), nil
	}, nil
}

// sqliteRunStore is the per-run view over the shared step_results table.
type sqliteRunStore struct {
	db    *sql.DB
	runID string
}

var _ Store = (*sqliteRunStore)(nil)

func (s *sqliteRunStore) Save(address string, payload any) error {
	data, err := EncodeValue(payload)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO step_results (run_id, address, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (run_id, address) DO UPDATE SET payload = excluded.payload`,
		s.runID,
		address,
		data,
	)
	return err
}

func (s *sqliteRunStore) Lookup(address string) (any, bool) {
	row := s.db.QueryRow(`
		SELECT payload
		FROM step_results
		WHERE run_id = ? AND address = ?`,
		s.runID,
		address,
	)

	var data []byte
	if err := row.Scan(&data); err != nil {
		// Treat both missing rows and scan failures as "no result"; the
		// lookup capability has no error channel by contract.
		return nil, false
	}
	if errors.Is(row.Err(), sql.ErrNoRows) {
		return nil, false
	}

	payload, err := DecodeValue(data)
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (s *sqliteRunStore) Addresses() []string {
	rows, err := s.db.Query(`
		SELECT address
		FROM step_results
		WHERE run_id = ?`,
		s.runID,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return addrs
		}
		addrs = append(addrs, addr)
	}
	return addrs
}
