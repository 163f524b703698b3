package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sheetexport/logging"
)

// Connection and logging flags shared by all commands. Empty values fall back
// to environment variables (optionally loaded from .env).
var (
	FlagDriver   string
	FlagDSN      string
	FlagServer   string
	FlagPort     string
	FlagUser     string
	FlagPassword string
	FlagDatabase string

	flagLogLevel  string
	flagLogFormat string
)

// exitFunc is replaced in tests.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "sheetexport",
	Short: "Export database rows to an xlsx spreadsheet",
	Long: `A CLI tool that streams rows from SQL Server, SQLite or DuckDB in batches
and writes them to a single-sheet xlsx file with a styled header row.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, format := flagLogLevel, flagLogFormat
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		if format == "" {
			format = os.Getenv("LOG_FORMAT")
		}
		logging.Setup(level, format)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagDriver, "driver", "", "Database driver: sqlserver, sqlite3, duckdb (env: EXPORT_DRIVER)")
	pf.StringVar(&FlagDSN, "dsn", "", "Full data source name; required for sqlite3 and duckdb (env: EXPORT_DSN)")
	pf.StringVar(&FlagServer, "server", "", "MSSQL server hostname or IP (env: MSSQL_SERVER)")
	pf.StringVar(&FlagPort, "port", "", "MSSQL server port (env: MSSQL_PORT)")
	pf.StringVar(&FlagUser, "user", "", "MSSQL username (env: MSSQL_USER)")
	pf.StringVar(&FlagPassword, "password", "", "MSSQL password (env: MSSQL_PASSWORD)")
	pf.StringVar(&FlagDatabase, "database", "", "MSSQL database name (env: MSSQL_DATABASE)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: text, json (env: LOG_FORMAT)")
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}
