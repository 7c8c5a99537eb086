// Package mysql provides the MySQL implementation of database.DB,
// backed by database/sql and go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/tablero-dev/tablero/internal/database"
	"github.com/tablero-dev/tablero/internal/errs"
)

// Driver is a MySQL implementation of database.DB.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db *sql.DB
}

// New opens a MySQL connection pool using the provided Config and
// returns a Driver. It pings before returning, so a Driver in hand is
// one that was reachable at least once.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := &Driver{db: db}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// NewFromDB wraps an already-open *sql.DB. Used by tests to inject a
// mocked connection.
func NewFromDB(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

// ServerInfo runs the two connectivity probes.
func (d *Driver) ServerInfo(ctx context.Context) (*database.ServerInfo, error) {
	var schema sql.NullString
	if err := d.db.QueryRowContext(ctx, `SELECT DATABASE()`).Scan(&schema); err != nil {
		return nil, mapError(err, "failed to read current schema")
	}

	var version string
	if err := d.db.QueryRowContext(ctx, `SELECT VERSION()`).Scan(&version); err != nil {
		return nil, mapError(err, "failed to read server version")
	}

	info := &database.ServerInfo{Schema: "n/a", Version: version}
	if schema.Valid && schema.String != "" {
		info.Schema = schema.String
	}
	return info, nil
}

func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "failed to scan table name")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating tables")
	}
	return tables, nil
}

func (d *Driver) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `
		SELECT 1
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = ?`

	var exists int
	err := d.db.QueryRowContext(ctx, q, table).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, mapError(err, "failed to check table existence")
	}
	return true, nil
}

// Preview fetches a bounded sample of the named table. The identifier
// is validated and checked for existence before it is quoted into the
// statement; only the limit travels as a query parameter.
func (d *Driver) Preview(ctx context.Context, table string, limit int) (*database.ResultSet, error) {
	if !database.ValidIdentifier(table) {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid table name %q", table))
	}
	exists, err := d.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %q does not exist", table))
	}

	q := fmt.Sprintf("SELECT * FROM `%s` LIMIT ?", table)
	rows, err := d.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, mapError(err, "failed to fetch table preview")
	}
	return database.ScanAll(&mysqlRows{rows: rows}, 0)
}

// Query executes a free-text statement verbatim.
func (d *Driver) Query(ctx context.Context, query string, maxRows int) (*database.ResultSet, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return database.ScanAll(&mysqlRows{rows: rows}, maxRows)
}

// --- sql.DB type wrappers ---

type mysqlRows struct {
	rows *sql.Rows
}

func (r *mysqlRows) Next() bool                 { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *mysqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *mysqlRows) Close()                     { _ = r.rows.Close() }
func (r *mysqlRows) Err() error                 { return r.rows.Err() }

// --- error mapping ---

// mapError translates go-sql-driver/mysql errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	// Driver-level failures (dial errors, bad handshake) arrive untyped.
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL server error numbers to ErrKind.
// https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case 1044, 1045, 1046, 1049: // access denied, unknown database
		return errs.ErrKindConnectionFailed
	case 1040, 1203: // too many connections
		return errs.ErrKindConnectionFailed
	case 1142, 1227: // command denied, privilege required
		return errs.ErrKindPermissionDenied
	default: // 1054 unknown column, 1064 syntax, 1146 unknown table, ...
		return errs.ErrKindQueryFailed
	}
}
