package source

import (
	"fmt"
	"regexp"
	"strings"

	"sheetexport/cursor"
)

// RawSource streams the result of a caller-supplied SQL statement.
type RawSource struct {
	conn Conn
	sql  string
	opts options
}

// NewRawSource validates conn and the statement.
func NewRawSource(conn Conn, sql string, opts ...Option) (*RawSource, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	sql = strings.TrimRight(strings.TrimSpace(sql), ";")
	if sql == "" {
		return nil, fmt.Errorf("%w: sql is empty", ErrNoQuery)
	}
	return &RawSource{conn: conn, sql: sql, opts: newOptions(opts)}, nil
}

// Query always fails: a raw statement has no structured query to introspect.
func (s *RawSource) Query() (string, error) {
	return "", ErrUnsupported
}

// SQL returns the statement as given.
func (s *RawSource) SQL() string { return s.sql }

// CountQuery wraps the statement in a COUNT(*) subquery. A trailing ORDER BY
// is dropped since SQL Server rejects it inside a derived table.
func (s *RawSource) CountQuery() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS raw_count", unordered(s.sql))
}

// Count returns the number of rows Each will yield.
func (s *RawSource) Count() (int64, error) {
	return count(s.conn, s.CountQuery(), s.opts.args)
}

// ColumnNames returns the statement's result columns without reading rows.
func (s *RawSource) ColumnNames() ([]string, error) {
	q := fmt.Sprintf("SELECT * FROM (%s) AS raw_columns WHERE 1=0", unordered(s.sql))
	return Columns(s.conn, q, s.opts.args...)
}

// Each streams the statement in batches of batchSize rows.
func (s *RawSource) Each(batchSize int) (cursor.Records, error) {
	return each(s.conn, s.sql, s.opts, batchSize), nil
}

var (
	orderByRe  = regexp.MustCompile(`(?i)\border\s+by\b`)
	limitingRe = regexp.MustCompile(`(?i)\b(offset|fetch|limit)\b`)
)

// unordered removes a top-level trailing ORDER BY clause from sql. Clauses
// that also limit the result (OFFSET, FETCH, LIMIT) are kept because dropping
// them would change the row count.
func unordered(sql string) string {
	top := topLevel(sql)
	cut := -1
	for _, m := range orderByRe.FindAllStringIndex(sql, -1) {
		if top[m[0]] {
			cut = m[0]
		}
	}
	if cut < 0 || limitingRe.MatchString(sql[cut:]) {
		return sql
	}
	return strings.TrimSpace(sql[:cut])
}

// topLevel marks the byte offsets of sql that are outside parentheses,
// quoted strings and bracketed identifiers.
func topLevel(sql string) []bool {
	top := make([]bool, len(sql))
	depth := 0
	var quote byte
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '[':
			quote = ']'
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		default:
			top[i] = depth == 0
		}
	}
	return top
}
