package source

import (
	"database/sql"
	"errors"
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/mattn/go-sqlite3"
)

// mssqlNoMoreRows is the error number SQL Server drivers raise when the last
// batch of a result is shorter than the requested batch size.
const mssqlNoMoreRows = -13

// NoMoreRows reports whether err is the spurious "no more rows" error raised
// by SQL Server at a batch boundary. Errors from other drivers never match.
func NoMoreRows(err error, driverName string) bool {
	switch strings.ToLower(driverName) {
	case "sqlserver", "mssql":
	default:
		return false
	}
	var e mssql.Error
	if errors.As(err, &e) {
		return e.Number == mssqlNoMoreRows
	}
	var pe *mssql.Error
	if errors.As(err, &pe) {
		return pe.Number == mssqlNoMoreRows
	}
	return false
}

// DriverOf returns the name of a known driver backing db, or "".
func DriverOf(db *sql.DB) string {
	if db == nil {
		return ""
	}
	switch db.Driver().(type) {
	case *mssql.Driver:
		return "sqlserver"
	case *sqlite3.SQLiteDriver:
		return "sqlite3"
	}
	return ""
}
