// Package source provides row sources backed by database/sql: a structured
// table source that builds its own SELECT and a raw source that streams a
// caller-supplied SQL statement. Both count their rows with a separate COUNT
// query and stream records through a batch cursor.
package source

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sheetexport/cursor"
)

var (
	ErrNoConnection      = errors.New("db connection has not been configured")
	ErrInvalidConnection = errors.New("invalid db connection: driver name is unknown")
	ErrNoQuery           = errors.New("row source has no query")
	ErrUnsupported       = errors.New("operation not supported by raw query source")
)

// Conn is a database handle together with the name of the driver serving it.
type Conn struct {
	DB         *sql.DB
	DriverName string
}

// Validate reports configuration errors before any I/O.
func (c Conn) Validate() error {
	if c.DB == nil {
		return ErrNoConnection
	}
	if c.driver() == "" {
		return ErrInvalidConnection
	}
	return nil
}

func (c Conn) driver() string {
	if c.DriverName != "" {
		return strings.ToLower(c.DriverName)
	}
	return DriverOf(c.DB)
}

func (c Conn) isSQLServer() bool {
	d := c.driver()
	return d == "sqlserver" || d == "mssql"
}

// Option configures a source.
type Option func(*options)

type options struct {
	where    string
	args     []any
	tolerate cursor.Tolerator
}

// WithWhere restricts a table source with a WHERE clause (without the keyword).
func WithWhere(clause string) Option {
	return func(o *options) { o.where = strings.TrimSpace(clause) }
}

// WithArgs sets query arguments bound to placeholders in the WHERE clause or raw SQL.
func WithArgs(args ...any) Option {
	return func(o *options) { o.args = args }
}

// WithTolerator replaces the default classifier of spurious end-of-rows errors.
func WithTolerator(fn cursor.Tolerator) Option {
	return func(o *options) { o.tolerate = fn }
}

func newOptions(opts []Option) options {
	o := options{tolerate: NoMoreRows}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func count(conn Conn, query string, args []any) (int64, error) {
	var n int64
	if err := conn.DB.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("could not get total row count: %w", err)
	}
	return n, nil
}

func each(conn Conn, query string, o options, batchSize int) cursor.Records {
	cmd := &sqlCommand{db: conn.DB, query: query, args: o.args, driver: conn.driver()}
	c := cursor.New(cmd,
		cursor.WithBatchSize(batchSize),
		cursor.WithTolerator(o.tolerate),
		cursor.WithDriverName(conn.driver()),
	)
	return c.Each()
}

// quoteIdent quotes a possibly schema-qualified identifier for the driver.
func quoteIdent(conn Conn, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if conn.isSQLServer() {
			parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
		} else {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
		}
	}
	return strings.Join(parts, ".")
}
