// Package sqlite provides read-only browsing tools over a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	toolcfg "github.com/toolforge/toolforge/internal/config/tool"
	"github.com/toolforge/toolforge/internal/schema"
	"github.com/toolforge/toolforge/internal/tools"
)

// OperationalError reports a database-level problem such as a missing table.
type OperationalError struct {
	msg string
}

func (e *OperationalError) Error() string { return e.msg }

// Store wraps the SQLite connection used by the kit.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them (and :memory:) stable.
	db.SetMaxOpenConns(1)

	for _, p := range []string{"PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// DB returns the raw *sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Register opens the configured database and adds the kit's tools to r.
// The caller owns the returned Store.
func Register(r schema.ToolRegistrar, cfg toolcfg.SQLiteConfig) (*Store, error) {
	s, err := Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	s.Register(r)
	return s, nil
}

// Register adds the kit's tools backed by s to r.
func (s *Store) Register(r schema.ToolRegistrar) {
	r.Add(tools.NewFuncTool("list_tables", "List all table names in the SQLite database.", s.listTables))
	r.Add(tools.NewFuncTool("list_columns", "List column names and types for a table.", s.listColumns))
	r.Add(tools.NewFuncTool("preview_table", "Preview the first N rows of a table.", s.previewTable))
}

func (s *Store) listTables(ctx context.Context, _ struct{}) (any, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"tables": names}, nil
}

func (s *Store) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// requireTable returns the quoted identifier of an existing table.
func (s *Store) requireTable(ctx context.Context, name string) (string, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("check table: %w", err)
	}
	if n == 0 {
		return "", &OperationalError{msg: "no such table: " + name}
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}

type tableArgs struct {
	TableName string `json:"table_name"`
}

// Column describes one table column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Store) listColumns(ctx context.Context, in tableArgs) (any, error) {
	ident, err := s.requireTable(ctx, in.TableName)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+ident+")")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	cols := []Column{}
	for rows.Next() {
		var (
			cid       int
			c         Column
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &c.Name, &c.Type, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return map[string]any{"columns": cols}, nil
}

type previewArgs struct {
	TableName string `json:"table_name"`
	Limit     int    `json:"limit" default:"20"`
}

func (s *Store) previewTable(ctx context.Context, in previewArgs) (any, error) {
	ident, err := s.requireTable(ctx, in.TableName)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+ident+" LIMIT ?", in.Limit)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", in.TableName, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := [][]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return map[string]any{"columns": cols, "rows": out}, nil
}
