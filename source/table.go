package source

import (
	"fmt"
	"strings"

	"sheetexport/columns"
	"sheetexport/cursor"
)

// TableSource selects the mapped columns of one table.
type TableSource struct {
	conn  Conn
	table string
	keys  []string
	opts  options
}

// NewTableSource validates conn and table. With a nil or empty mapper every
// column of the table is selected.
func NewTableSource(conn Conn, table string, m *columns.Mapper, opts ...Option) (*TableSource, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("%w: table name is empty", ErrNoQuery)
	}
	s := &TableSource{conn: conn, table: table, opts: newOptions(opts)}
	if m != nil {
		s.keys = m.Keys()
	}
	return s, nil
}

// Query returns the SELECT statement streamed by Each.
func (s *TableSource) Query() (string, error) {
	return fmt.Sprintf("SELECT %s FROM %s%s", s.selectList(), quoteIdent(s.conn, s.table), s.whereClause()), nil
}

func (s *TableSource) selectList() string {
	if len(s.keys) == 0 {
		return "*"
	}
	quoted := make([]string, len(s.keys))
	for i, k := range s.keys {
		quoted[i] = quoteIdent(s.conn, k)
	}
	return strings.Join(quoted, ", ")
}

// ColumnNames returns the selected columns without reading any rows.
func (s *TableSource) ColumnNames() ([]string, error) {
	return Columns(s.conn, fmt.Sprintf("SELECT %s FROM %s WHERE 1=0", s.selectList(), quoteIdent(s.conn, s.table)))
}

// CountQuery returns the statement used by Count.
func (s *TableSource) CountQuery() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", quoteIdent(s.conn, s.table), s.whereClause())
}

func (s *TableSource) whereClause() string {
	if s.opts.where == "" {
		return ""
	}
	return " WHERE " + s.opts.where
}

// Count returns the number of rows Each will yield.
func (s *TableSource) Count() (int64, error) {
	return count(s.conn, s.CountQuery(), s.opts.args)
}

// Each streams the table in batches of batchSize rows.
func (s *TableSource) Each(batchSize int) (cursor.Records, error) {
	q, err := s.Query()
	if err != nil {
		return nil, err
	}
	return each(s.conn, q, s.opts, batchSize), nil
}
