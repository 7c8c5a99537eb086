// Package database is the driver-neutral contract for the dashboard's
// read-only database access.
//
// The explorer talks only to the DB interface; it never imports the
// mysql or postgres packages directly.
package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/tablero-dev/tablero/internal/errs"
)

// DB is the contract every database driver implements. Every call
// acquires a pooled connection for its own duration and releases it
// before returning, on success and failure paths alike.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// ServerInfo runs the two connectivity probes (current schema and
	// server version) and returns their results.
	ServerInfo(ctx context.Context) (*ServerInfo, error)

	// ListTables returns the user-defined table names of the connected
	// schema in sorted order.
	ListTables(ctx context.Context) ([]string, error)

	// TableExists reports whether a table with the given name exists.
	TableExists(ctx context.Context, table string) (bool, error)

	// Preview returns up to limit rows of the named table. The table
	// name must pass ValidIdentifier and exist; the limit is always a
	// bound query parameter, never interpolated.
	Preview(ctx context.Context, table string, limit int) (*ResultSet, error)

	// Query executes a free-text statement verbatim and returns up to
	// maxRows rows. Statement-type restriction is left to database
	// grants; the dashboard account is expected to be read-only.
	Query(ctx context.Context, sql string, maxRows int) (*ResultSet, error)

	// Close releases the connection pool.
	Close()
}

// Rows abstracts a driver result set. Callers must Close it, even on error.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close()
	Err() error
}

// ServerInfo is the result of the connectivity probes.
type ServerInfo struct {
	Schema  string // current schema/database name, "n/a" if the server returns NULL
	Version string // server version string
}

// ResultSet is an in-memory tabular query result with ordered columns.
// It lives only for the duration of a render cycle (or a cache TTL).
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of rows in the result.
func (rs *ResultSet) RowCount() int {
	return len(rs.Rows)
}

// ScanAll drains rows into a ResultSet, stopping after maxRows when
// maxRows > 0. It always closes rows.
func ScanAll(rows Rows, maxRows int) (*ResultSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	rs := &ResultSet{Columns: columns, Rows: make([][]any, 0)}

	for rows.Next() {
		if maxRows > 0 && len(rs.Rows) >= maxRows {
			break
		}

		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}
		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}
		rs.Rows = append(rs.Rows, dest)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return rs, nil
}

// identPattern matches unquoted SQL identifiers. Table names coming
// from the UI are checked against it before being quoted into a
// statement; anything else is rejected as invalid input.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// ValidIdentifier reports whether name is safe to use as a quoted
// table identifier.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

// FormatValue renders a scanned cell for display. Drivers hand back
// []byte for most MySQL text types, so those become strings here.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
