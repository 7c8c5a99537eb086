package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablero-dev/tablero/internal/errs"
)

func newMock(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewFromDB(db), mock
}

func TestServerInfo(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"DATABASE()"}).AddRow("curso"))
	mock.ExpectQuery(`SELECT VERSION\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))

	info, err := d.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "curso", info.Schema)
	assert.Equal(t, "8.0.36", info.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServerInfoNullSchema(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"DATABASE()"}).AddRow(nil))
	mock.ExpectQuery(`SELECT VERSION\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"VERSION()"}).AddRow("8.0.36"))

	info, err := d.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "n/a", info.Schema)
}

func TestServerInfoConnectionFailure(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnError(&gomysql.MySQLError{Number: 1045, Message: "Access denied for user"})

	_, err := d.ServerInfo(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestListTables(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT table_name`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("clientes").
			AddRow("ventas"))

	tables, err := d.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"clientes", "ventas"}, tables)
}

func TestTableExists(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1`).
		WithArgs("ventas").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := d.TableExists(context.Background(), "ventas")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(`SELECT 1`).
		WithArgs("nada").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = d.TableExists(context.Background(), "nada")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPreview(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1`).
		WithArgs("ventas").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `ventas` LIMIT \\?").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total"}).
			AddRow(int64(1), 10.5).
			AddRow(int64(2), 20.0))

	rs, err := d.Preview(context.Background(), "ventas", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "total"}, rs.Columns)
	assert.Equal(t, 2, rs.RowCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewRejectsBadIdentifier(t *testing.T) {
	d, mock := newMock(t)

	_, err := d.Preview(context.Background(), "ventas; DROP TABLE ventas", 10)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.NoError(t, mock.ExpectationsWereMet(), "no query must reach the database")
}

func TestPreviewUnknownTable(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECT 1`).
		WithArgs("fantasma").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	_, err := d.Preview(context.Background(), "fantasma", 10)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestQueryCapsRows(t *testing.T) {
	d, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"n"})
	for i := 0; i < 250; i++ {
		rows.AddRow(int64(i))
	}
	mock.ExpectQuery(`SELECT n FROM secuencia`).WillReturnRows(rows)

	rs, err := d.Query(context.Background(), "SELECT n FROM secuencia", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, rs.RowCount())
}

func TestQuerySyntaxError(t *testing.T) {
	d, mock := newMock(t)

	mock.ExpectQuery(`SELECTT`).
		WillReturnError(&gomysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"})

	_, err := d.Query(context.Background(), "SELECTT 1", 200)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.Contains(t, errs.DetailOf(err), "SQL syntax")
}
