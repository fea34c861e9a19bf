// Package tooldb stores the machine's authoritative tool table in
// SQLite. The pipeline uses it to enrich numeric-only tool references
// with their symbolic names before routing; the CLI uses it to inspect
// and maintain the table.
package tooldb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Tool is one machine tool slot.
type Tool struct {
	Number   int
	Name     string
	Diameter float64
	Comment  string
}

// Store provides access to a machine tool table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the tool database at path. The connection is
// configured for SQLite's single-writer model; opening is idempotent and
// applies the schema when missing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open tool database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to tool database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply tool schema: %w", err)
	}
	if err := stampVersion(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func stampVersion(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
			return fmt.Errorf("stamp schema version: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the tool with the given number, or ok=false when the
// table has no such slot.
func (s *Store) Lookup(ctx context.Context, number int) (Tool, bool, error) {
	var t Tool
	err := s.db.QueryRowContext(ctx,
		"SELECT number, name, diameter, comment FROM tools WHERE number = ?", number).
		Scan(&t.Number, &t.Name, &t.Diameter, &t.Comment)
	if errors.Is(err, sql.ErrNoRows) {
		return Tool{}, false, nil
	}
	if err != nil {
		return Tool{}, false, fmt.Errorf("lookup tool %d: %w", number, err)
	}
	return t, true, nil
}

// Name returns the symbolic name of a tool number, or ok=false when the
// slot is missing or unnamed. This is the lookup routing enrichment uses.
func (s *Store) Name(ctx context.Context, number int) (string, bool, error) {
	t, ok, err := s.Lookup(ctx, number)
	if err != nil || !ok || t.Name == "" {
		return "", false, err
	}
	return t.Name, true, nil
}

// List returns all tools ordered by number.
func (s *Store) List(ctx context.Context) ([]Tool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT number, name, diameter, comment FROM tools ORDER BY number")
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	var tools []Tool
	for rows.Next() {
		var t Tool
		if err := rows.Scan(&t.Number, &t.Name, &t.Diameter, &t.Comment); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return tools, nil
}

// Put inserts or replaces a tool slot.
func (s *Store) Put(ctx context.Context, t Tool) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO tools (number, name, diameter, comment) VALUES (?, ?, ?, ?)",
		t.Number, t.Name, t.Diameter, t.Comment)
	if err != nil {
		return fmt.Errorf("store tool %d: %w", t.Number, err)
	}
	return nil
}
