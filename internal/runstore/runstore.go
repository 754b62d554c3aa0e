// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runstore persists research runs in a SQLite database so that runs
// awaiting clarifying answers, and finished runs, survive across
// invocations.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// Summary is the listing view of a run: identity and state without the
// full artifact payload.
type Summary struct {
	ID        string         `json:"id"`
	State     types.RunState `json:"state"`
	Query     string         `json:"query"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Open opens or creates the run database at cfg.Path, creating the parent
// directory and schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, &types.ConfigError{Setting: "store.path", Detail: "database path is required"}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			query TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save upserts the run. The full run is stored as a JSON document; the
// indexed columns are denormalized for listing.
func (s *Store) Save(ctx context.Context, run *types.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding run %s: %w", run.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, state, query, created_at, updated_at, data)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			state=excluded.state, query=excluded.query,
			updated_at=excluded.updated_at, data=excluded.data`,
		run.ID, string(run.State), run.Query.Text,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.UpdatedAt.UTC().Format(time.RFC3339Nano),
		string(data),
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// Load returns the run with the given ID, or an error naming the ID when no
// such run exists.
func (s *Store) Load(ctx context.Context, id string) (*types.Run, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM runs WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	var run types.Run
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("decoding run %s: %w", id, err)
	}
	return &run, nil
}

// List returns summaries of all runs, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, state, query, created_at, updated_at FROM runs ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var state, createdAt, updatedAt string
		if err := rows.Scan(&sum.ID, &state, &sum.Query, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		sum.State = types.RunState(state)
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at for run %s: %w", sum.ID, err)
		}
		if sum.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at for run %s: %w", sum.ID, err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// Export writes every run, in full, to w. Format is "yaml" or "json";
// runs come out most recently updated first.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM runs ORDER BY updated_at DESC`,
	)
	if err != nil {
		return fmt.Errorf("exporting runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("scanning run row: %w", err)
		}
		var run types.Run
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			return fmt.Errorf("decoding run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	switch format {
	case "yaml", "":
		out, err := yaml.Marshal(runs)
		if err != nil {
			return fmt.Errorf("encoding runs: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

// Delete removes the run with the given ID. Deleting an absent run is an
// error so callers can distinguish a typo from a cleanup.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}
