package source

import (
	"fmt"
	"io"
	"strings"
)

// FieldInfo describes one column of a table.
type FieldInfo struct {
	Name     string
	DataType string
	Nullable string
}

// CellType suggests a column mapping type for the SQL data type.
func (f FieldInfo) CellType() string {
	t := strings.ToLower(f.DataType)
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	switch strings.TrimSpace(t) {
	case "bit", "bool", "boolean":
		return "bool"
	case "int", "integer", "bigint", "smallint", "tinyint", "hugeint",
		"decimal", "numeric", "real", "float", "double", "money", "smallmoney":
		return "number"
	}
	return ""
}

// Tables returns the base tables visible on conn.
func Tables(conn Conn) ([]string, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	query := `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
	if conn.driver() == "sqlite3" {
		query = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`
	}
	rows, err := conn.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return tables, nil
}

// Fields returns the columns of table in ordinal order.
func Fields(conn Conn, table string) ([]FieldInfo, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	var query string
	switch {
	case conn.isSQLServer():
		query = `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION`
	case conn.driver() == "sqlite3":
		query = `SELECT name, type, CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END FROM pragma_table_info(?) ORDER BY cid`
	default:
		query = `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	}
	rows, err := conn.DB.Query(query, table)
	if err != nil {
		return nil, fmt.Errorf("error querying fields: %w", err)
	}
	defer rows.Close()

	var fields []FieldInfo
	for rows.Next() {
		var f FieldInfo
		if err := rows.Scan(&f.Name, &f.DataType, &f.Nullable); err != nil {
			return nil, fmt.Errorf("error scanning field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("table does not exist: %s", table)
	}
	return fields, nil
}

// Columns executes query and returns its result column names without reading rows.
func Columns(conn Conn, query string, args ...any) ([]string, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	rows, err := conn.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying table rows: %w", err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error getting columns: %w", err)
	}
	return cols, nil
}

// WriteTables prints the table list the way the tables command shows it.
func WriteTables(w io.Writer, tables []string) {
	fmt.Fprintln(w, "Tables in the database:")
	for _, t := range tables {
		fmt.Fprintln(w, t)
	}
}

// WriteFields prints a tab-separated field listing.
func WriteFields(w io.Writer, table string, fields []FieldInfo) {
	fmt.Fprintf(w, "Fields in table '%s':\n", table)
	fmt.Fprintln(w, "Column Name\tType\tNullable")
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.DataType, f.Nullable)
	}
}
