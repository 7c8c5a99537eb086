package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablero-dev/tablero/internal/errs"
)

func TestPreviewRejectsBadIdentifier(t *testing.T) {
	// Validation fires before any pool access, so a zero Driver is enough.
	d := &Driver{}

	for _, table := range []string{
		"ventas; DROP TABLE ventas",
		`ventas"--`,
		"with space",
		"",
	} {
		_, err := d.Preview(context.Background(), table, 10)
		require.Error(t, err, table)
		assert.True(t, errs.IsInvalidInput(err), table)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"nil stays nil", nil, errs.ErrKindUnknown},
		{"no rows", pgx.ErrNoRows, errs.ErrKindNotFound},
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"bad password", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, errs.ErrKindConnectionFailed},
		{"unknown database", &pgconn.PgError{Code: "3D000", Message: "database does not exist"}, errs.ErrKindConnectionFailed},
		{"syntax error", &pgconn.PgError{Code: "42601", Message: "syntax error at or near"}, errs.ErrKindQueryFailed},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}, errs.ErrKindQueryFailed},
		{"canceled statement", &pgconn.PgError{Code: "57014", Message: "canceling statement"}, errs.ErrKindTimeout},
		{"privilege", &pgconn.PgError{Code: "42501", Message: "permission denied"}, errs.ErrKindPermissionDenied},
		{"dial failure", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err, "probe failed")
			if tt.err == nil {
				assert.Nil(t, mapped)
				return
			}
			assert.Equal(t, tt.want, mapped.Kind)
		})
	}
}
