// Package history persists scan snapshots to a local sqlite database so
// import counts can be compared across runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pyimports/internal/scan"
)

const driverName = "sqlite"

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Run summarizes one persisted scan.
type Run struct {
	ID                  string
	StartedAt           time.Time
	Duration            time.Duration
	Files               int
	Imports             int
	TypecheckingImports int
	Failures            int
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun persists one scan's results and returns the generated run id.
func (s *Store) SaveRun(startedAt time.Time, duration time.Duration, results []scan.Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	var files, imports, typechecking, failures int
	for _, r := range results {
		files++
		if r.Err != nil {
			failures++
			continue
		}
		imports += len(r.Imports)
		for _, imp := range r.Imports {
			if imp.TypecheckingOnly {
				typechecking++
			}
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO runs (id, started_at, duration_ms, files, imports, typechecking_imports, failures)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, startedAt.UTC(), duration.Milliseconds(), files, imports, typechecking, failures,
	); err != nil {
		return "", fmt.Errorf("insert run row: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO file_imports (run_id, path, imported_object, line_number, typechecking_only)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare import insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		for _, imp := range r.Imports {
			flag := 0
			if imp.TypecheckingOnly {
				flag = 1
			}
			if _, err := stmt.Exec(runID, r.Path, imp.ImportedObject, imp.LineNumber, flag); err != nil {
				return "", fmt.Errorf("insert import row for %s: %w", r.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit history transaction: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, started_at, duration_ms, files, imports, typechecking_imports, failures
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.StartedAt, &durationMS, &r.Files, &r.Imports, &r.TypecheckingImports, &r.Failures); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Prune removes the oldest runs beyond keep, cascading their import rows.
func (s *Store) Prune(keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		 )`, keep)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}
