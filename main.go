// sheetexport is a CLI tool for exporting database rows to an xlsx spreadsheet.
//
// Usage:
//
//	go run main.go tables
//	  List all tables in the database
//	go run main.go fields [--yaml] <table_name>
//	  List all fields in the specified table
//	go run main.go export [--columns <file>] [--where <clause>] [--output <path>] <table_name>
//	go run main.go export --query <sql> [--output <path>]
//	  Export rows to a single-sheet xlsx file with a styled header row
package main

import (
	"sheetexport/cmd"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cmd.Execute()
}
