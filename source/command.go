package source

import (
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	"sheetexport/cursor"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// sqlCommand runs a query on a *sql.DB for a cursor.
type sqlCommand struct {
	db     *sql.DB
	query  string
	args   []any
	driver string
}

func (c *sqlCommand) Query() (cursor.Reader, error) {
	rows, err := c.db.Query(c.query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying table rows: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("error getting columns: %w", err)
	}
	return &sqlReader{rows: rows, fields: cols, driver: c.driver}, nil
}

func (c *sqlCommand) DriverName() string { return c.driver }

// sqlReader adapts *sql.Rows to cursor.Reader.
type sqlReader struct {
	rows   *sql.Rows
	fields []string
	driver string
}

// Read returns the next row. Errors reported by the driver are returned
// unwrapped so tolerators can inspect them.
func (r *sqlReader) Read() (cursor.Record, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return cursor.Record{}, err
		}
		return cursor.Record{}, io.EOF
	}
	vals, err := scanValues(r.rows, len(r.fields))
	if err != nil {
		return cursor.Record{}, err
	}
	return cursor.Record{Fields: r.fields, Values: vals}, nil
}

func (r *sqlReader) Close() error { return r.rows.Close() }

func (r *sqlReader) DriverName() string { return r.driver }

// scanValues scans the current row, converting driver values to plain scalars.
func scanValues(rows *sql.Rows, n int) ([]any, error) {
	vals := make([]any, n)
	ptrs := make([]any, n)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}
	for i, v := range vals {
		vals[i] = normalize(v)
	}
	return vals, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case time.Time:
		h, m, s := t.Clock()
		if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
			return t.Format(dateLayout)
		}
		return t.Format(dateTimeLayout)
	case []byte:
		s := string(t)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
	return v
}
