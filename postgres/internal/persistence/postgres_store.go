// Package persistence provides the PostgreSQL-backed result store.
package persistence

import (
	"bytes"
	"database/sql"
	"encoding/gob"

	"github.com/fanfold/fanfold/pkg/batch"
)

func init() {
	// Payload shapes that cross the store boundary; mirrors the root
	// module's codec registrations for stores opened from this package.
	gob.Register(batch.PlanOutcome{})
	gob.Register(batch.SkipResult{})
	gob.Register(batch.WorkerReport{})
	gob.Register(batch.WorkerFailure{})
	gob.Register(batch.ReportSummary{})
	gob.Register(batch.CursorWindow{})
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// PostgresStore persists run results in PostgreSQL, one row per
// (run, address). Payloads are gob-encoded BYTEA values.
//
// It expects an *sql.DB with a PostgreSQL driver registered (for example,
// "github.com/jackc/pgx/v5/stdlib"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "github.com/jackc/pgx/v5/stdlib"
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore initializes the required schema in the given database and
// returns a new PostgresStore.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS fanfold_step_results (
			run_id TEXT NOT NULL,
			address TEXT NOT NULL,
			payload BYTEA,
			PRIMARY KEY (run_id, address)
		);`,
	)
	return err
}

// Run returns a per-run store view satisfying the result lookup capability
// plus Save.
func (s *PostgresStore) Run(runID string) *RunStore {
	return &RunStore{db: s.db, runID: runID}
}

// RunStore is the per-run view over the shared results table.
type RunStore struct {
	db    *sql.DB
	runID string
}

var _ batch.ResultLookup = (*RunStore)(nil)

func (s *RunStore) Save(address string, payload any) error {
	data, err := encodeValue(payload)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO fanfold_step_results (run_id, address, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, address) DO UPDATE SET payload = EXCLUDED.payload`,
		s.runID,
		address,
		data,
	)
	return err
}

func (s *RunStore) Lookup(address string) (any, bool) {
	row := s.db.QueryRow(`
		SELECT payload
		FROM fanfold_step_results
		WHERE run_id = $1 AND address = $2`,
		s.runID,
		address,
	)

	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, false
	}

	payload, err := decodeValue(data)
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (s *RunStore) Addresses() []string {
	rows, err := s.db.Query(`
		SELECT address
		FROM fanfold_step_results
		WHERE run_id = $1`,
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

func encodeValue(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	var iv = v
	if err := enc.Encode(&iv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var iv any
	dec := gob.NewDecoder(bytes.NewBuffer(data))
	if err := dec.Decode(&iv); err != nil {
		return nil, err
	}
	return iv, nil
}
