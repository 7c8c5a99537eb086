// Package postgres provides the PostgreSQL implementation of
// database.DB, backed by pgxpool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablero-dev/tablero/internal/database"
	"github.com/tablero-dev/tablero/internal/errs"
)

// Driver is a PostgreSQL implementation of database.DB.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using the provided Config and returns a
// Driver. It pings before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create connection pool", err)
	}

	d := &Driver{pool: pool}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	d.pool.Close()
}

// ServerInfo runs the two connectivity probes.
func (d *Driver) ServerInfo(ctx context.Context) (*database.ServerInfo, error) {
	var schema string
	if err := d.pool.QueryRow(ctx, `SELECT current_database()`).Scan(&schema); err != nil {
		return nil, mapError(err, "failed to read current database")
	}

	var version string
	if err := d.pool.QueryRow(ctx, `SELECT version()`).Scan(&version); err != nil {
		return nil, mapError(err, "failed to read server version")
	}

	info := &database.ServerInfo{Schema: schema, Version: version}
	if info.Schema == "" {
		info.Schema = "n/a"
	}
	return info, nil
}

func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := d.pool.Query(ctx, q)
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
		WHERE table_schema = 'public'
		  AND table_type   = 'BASE TABLE'
		  AND table_name   = $1`

	var exists int
	err := d.pool.QueryRow(ctx, q, table).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, mapError(err, "failed to check table existence")
	}
	return true, nil
}

// Preview fetches a bounded sample of the named table. Identifier
// validation mirrors the MySQL driver: pattern check plus existence
// check before quoting; the limit is a bound parameter.
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

	q := fmt.Sprintf(`SELECT * FROM "%s" LIMIT $1`, table)
	rows, err := d.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, mapError(err, "failed to fetch table preview")
	}
	return database.ScanAll(newPgxRows(rows), 0)
}

// Query executes a free-text statement verbatim.
func (d *Driver) Query(ctx context.Context, query string, maxRows int) (*database.ResultSet, error) {
	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return database.ScanAll(newPgxRows(rows), maxRows)
}

// --- pgx type wrappers ---

type pgxRows struct {
	rows    pgx.Rows
	columns []string
}

func newPgxRows(rows pgx.Rows) *pgxRows {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	return &pgxRows{rows: rows, columns: columns}
}

func (r *pgxRows) Next() bool                 { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *pgxRows) Columns() ([]string, error) { return r.columns, nil }
func (r *pgxRows) Close()                     { r.rows.Close() }
func (r *pgxRows) Err() error                 { return r.rows.Err() }

// --- error mapping ---

// PostgreSQL SQLSTATE codes relevant to a read-only dashboard.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgErrInvalidPassword   = "28P01"
	pgErrInvalidAuthSpec   = "28000"
	pgErrUnknownDatabase   = "3D000"
	pgErrConnectionFailure = "08006"
	pgErrTooManyConns      = "53300"
	pgErrQueryCanceled     = "57014"
	pgErrInsufficientPriv  = "42501"
)

// mapError translates pgx errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := errs.ErrKindQueryFailed
		switch pgErr.Code {
		case pgErrInvalidPassword, pgErrInvalidAuthSpec, pgErrUnknownDatabase,
			pgErrConnectionFailure, pgErrTooManyConns:
			kind = errs.ErrKindConnectionFailed
		case pgErrQueryCanceled:
			kind = errs.ErrKindTimeout
		case pgErrInsufficientPriv:
			kind = errs.ErrKindPermissionDenied
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
