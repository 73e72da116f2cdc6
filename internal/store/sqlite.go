// internal/store/sqlite.go
//
// SQLite-backed attempt history.
// Responsibilities:
//   - Opening a SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations/*.sql (idempotent, recorded in _migrations).
//   - Implementing Store over the attempts table.

package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite is a Store over a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database at path and
// applies pending migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

func openDB(dsn string) (*sql.DB, error) {
	// Ensure directory exists for ./data/app.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies every *.sql file of fsys in lexical order, once each.
func migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record inserts e. Re-recording an id is ignored.
func (s *SQLite) Record(ctx context.Context, e Entry) error {
	if e.ID == "" || e.Mode == "" {
		return ErrInvalidEntry
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	steps, err := json.Marshal(e.Summary.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO attempts (id, mode, at, success, answer, guesses, steps_json)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Mode, e.At.UTC().Format(timeLayout), e.Summary.Success,
		e.Summary.Answer, e.Summary.Guesses(), string(steps),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, mode, at, success, answer, steps_json
        FROM attempts
        ORDER BY at DESC, rowid DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e         Entry
			at, steps string
		)
		if err := rows.Scan(&e.ID, &e.Mode, &at, &e.Summary.Success, &e.Summary.Answer, &steps); err != nil {
			return nil, err
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("attempt %s: bad time %q: %w", e.ID, at, err)
		}
		if err := json.Unmarshal([]byte(steps), &e.Summary.Steps); err != nil {
			return nil, fmt.Errorf("attempt %s: decode steps: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats aggregates in SQL.
func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	var attempts int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM attempts`).Scan(&attempts); err != nil {
		return Stats{}, err
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT guesses, COUNT(1)
        FROM attempts
        WHERE success = 1
        GROUP BY guesses`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	acc := statsAcc{attempts: attempts}
	for rows.Next() {
		var guesses, n int
		if err := rows.Scan(&guesses, &n); err != nil {
			return Stats{}, err
		}
		if acc.hist == nil {
			acc.hist = make(map[int]int)
		}
		acc.wins += n
		acc.guesses += guesses * n
		acc.hist[guesses] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}
	return acc.stats(), nil
}

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
