package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	mode TEXT NOT NULL,
	source TEXT,
	ingredients TEXT NOT NULL,
	instructions TEXT NOT NULL,
	substitutions TEXT NOT NULL,
	notes TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS verdicts (
	kind TEXT NOT NULL,
	term TEXT NOT NULL,
	ok INTEGER NOT NULL,
	label TEXT,
	updated_at TEXT NOT NULL,
	PRIMARY KEY(kind, term)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	cols, err := marshalColumns(r.Ingredients, r.Instructions, r.Substitutions, r.Notes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, name, mode, source, ingredients, instructions, substitutions, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	mode=excluded.mode,
	source=excluded.source,
	ingredients=excluded.ingredients,
	instructions=excluded.instructions,
	substitutions=excluded.substitutions,
	notes=excluded.notes,
	created_at=excluded.created_at;
`, r.ID, r.Name, r.Mode, r.Source, cols[0], cols[1], cols[2], cols[3], r.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// GetRun retrieves a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, mode, source, ingredients, instructions, substitutions, notes, created_at
FROM runs WHERE id = ?;
`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, err
}

// ListRuns returns the most recent runs, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, mode, source, ingredients, instructions, substitutions, notes, created_at
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetVerdict retrieves a cached oracle verdict
func (s *sqliteStore) GetVerdict(ctx context.Context, kind, term string) (store.Verdict, bool, error) {
	var (
		v       store.Verdict
		ok      int
		label   sql.NullString
		updated string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT kind, term, ok, label, updated_at FROM verdicts WHERE kind = ? AND term = ?;
`, kind, term).Scan(&v.Kind, &v.Term, &ok, &label, &updated)
	if err == sql.ErrNoRows {
		return store.Verdict{}, false, nil
	}
	if err != nil {
		return store.Verdict{}, false, err
	}
	v.OK = ok != 0
	v.Label = label.String
	v.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return v, true, nil
}

// PutVerdict inserts or updates an oracle verdict
func (s *sqliteStore) PutVerdict(ctx context.Context, v store.Verdict) error {
	ok := 0
	if v.OK {
		ok = 1
	}
	updated := v.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO verdicts (kind, term, ok, label, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(kind, term) DO UPDATE SET
	ok=excluded.ok,
	label=excluded.label,
	updated_at=excluded.updated_at;
`, v.Kind, v.Term, ok, v.Label, updated.UTC().Format(time.RFC3339Nano))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (store.Run, error) {
	var (
		r                                   store.Run
		source                              sql.NullString
		ingredients, instructions, subs, ns string
		created                             string
	)
	if err := row.Scan(&r.ID, &r.Name, &r.Mode, &source, &ingredients, &instructions, &subs, &ns, &created); err != nil {
		return store.Run{}, err
	}
	r.Source = source.String
	for _, col := range []struct {
		raw string
		dst any
	}{
		{ingredients, &r.Ingredients},
		{instructions, &r.Instructions},
		{subs, &r.Substitutions},
		{ns, &r.Notes},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return store.Run{}, fmt.Errorf("run %s: %w", r.ID, err)
		}
	}
	var err error
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return store.Run{}, fmt.Errorf("run %s: created_at: %w", r.ID, err)
	}
	return r, nil
}

func marshalColumns(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(data)
	}
	return out, nil
}
