// Package dataset discovers and loads the flat-file datasets shown on
// the dashboard. Two formats are supported, dispatched by extension:
// CSV and Parquet. Files are read fully into memory on selection; the
// dashboard only ever shows a bounded head of the result.
package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/tablero-dev/tablero/internal/errs"
)

// Table is an in-memory tabular preview: ordered columns, string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Head returns a view of at most n rows. The backing arrays are shared.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// Supported reports whether the file name carries one of the two
// recognised dataset extensions. The check is case-insensitive.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".parquet":
		return true
	}
	return false
}

// ListDir walks dir recursively and returns the sorted paths of all
// supported dataset files. A missing directory yields an empty list,
// not an error: the section simply has nothing to show.
func ListDir(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to stat datasets directory", err)
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Supported(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to scan datasets directory", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load reads the file at path fully into a Table, dispatching on its
// extension.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to open dataset", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DecodeCSV(f)
	case ".parquet":
		info, err := f.Stat()
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to stat dataset", err)
		}
		return DecodeParquet(f, info.Size())
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, "unsupported dataset format "+filepath.Ext(path))
	}
}

// DecodeCSV reads an entire CSV stream. The first record is the
// header; ragged records are tolerated and padded to the header width.
func DecodeCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errs.New(errs.ErrKindLoadFailed, "CSV file is empty")
		}
		return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to read CSV header", err)
	}

	t := &Table{Columns: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to read CSV record", err)
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		}
		t.Rows = append(t.Rows, record[:len(header)])
	}
	return t, nil
}

// DecodeParquet reads an entire Parquet file. Only flat column
// schemas are expected; nested fields render through their value's
// string form on whatever leaf column they map to.
func DecodeParquet(r io.ReaderAt, size int64) (*Table, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindLoadFailed, "failed to open parquet file", err)
	}

	fields := pf.Schema().Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name()
	}
	t := &Table{Columns: columns}

	for _, rowGroup := range pf.RowGroups() {
		if err := readRowGroup(t, rowGroup); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func readRowGroup(t *Table, rowGroup parquet.RowGroup) error {
	rows := rowGroup.Rows()
	defer rows.Close()

	buf := make([]parquet.Row, 128)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			cells := make([]string, len(t.Columns))
			for _, v := range row {
				col := int(v.Column())
				if col < 0 || col >= len(cells) {
					continue
				}
				if v.IsNull() {
					cells[col] = "NULL"
				} else {
					cells[col] = v.String()
				}
			}
			t.Rows = append(t.Rows, cells)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errs.Wrap(errs.ErrKindLoadFailed, "failed to read parquet rows", err)
		}
		if n == 0 {
			return nil
		}
	}
}
