// Package cmd contains the command-line interface of the sheetexport tool.
//
// This file provides helpers for establishing and managing database connections
// and context/signal handling for commands that read from a database.
//
// Environment variables used for connection:
//   - EXPORT_DRIVER:  sqlserver (default), sqlite3 or duckdb
//   - EXPORT_DSN:     full data source name; required for sqlite3 and duckdb
//   - MSSQL_SERVER:   SQL Server hostname or IP
//   - MSSQL_PORT:     SQL Server port
//   - MSSQL_USER:     SQL Server username
//   - MSSQL_PASSWORD: SQL Server password
//   - MSSQL_DATABASE: Database name (can be overridden per call)
//
// The MSSQL_* variables are only required for sqlserver when EXPORT_DSN is
// empty. Optionally, a .env file can be used for local development.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"sheetexport/source"
)

const defaultDriver = "sqlserver"

// sqlOpen and dbPing are package-level variables to allow test injection.
var sqlOpen = sql.Open
var dbPing = func(db *sql.DB) error { return db.Ping() }

type connParams struct {
	driver   string
	dsn      string
	server   string
	port     string
	user     string
	password string
	database string
}

// flagOrEnv prefers the CLI flag and falls back to the environment.
func flagOrEnv(flag, env string) string {
	if flag != "" {
		return flag
	}
	return strings.TrimSpace(os.Getenv(env))
}

// loadConnParams resolves connection parameters and reports every missing
// one in a single error.
func loadConnParams(database string) (connParams, error) {
	_ = godotenv.Load()
	p := connParams{
		driver:   strings.ToLower(flagOrEnv(FlagDriver, "EXPORT_DRIVER")),
		dsn:      flagOrEnv(FlagDSN, "EXPORT_DSN"),
		server:   flagOrEnv(FlagServer, "MSSQL_SERVER"),
		port:     flagOrEnv(FlagPort, "MSSQL_PORT"),
		user:     flagOrEnv(FlagUser, "MSSQL_USER"),
		password: flagOrEnv(FlagPassword, "MSSQL_PASSWORD"),
		database: database,
	}
	if p.driver == "" {
		p.driver = defaultDriver
	}
	if p.database == "" {
		p.database = flagOrEnv(FlagDatabase, "MSSQL_DATABASE")
	}

	missing := []string{}
	switch p.driver {
	case "sqlserver", "mssql":
		if p.dsn != "" {
			break
		}
		if p.server == "" {
			missing = append(missing, "MSSQL_SERVER")
		}
		if p.port == "" {
			missing = append(missing, "MSSQL_PORT")
		}
		if p.user == "" {
			missing = append(missing, "MSSQL_USER")
		}
		if p.password == "" {
			missing = append(missing, "MSSQL_PASSWORD")
		}
		if p.database == "" {
			missing = append(missing, "MSSQL_DATABASE")
		}
	case "sqlite3", "duckdb":
		if p.dsn == "" {
			missing = append(missing, "EXPORT_DSN")
		}
	default:
		return p, fmt.Errorf("unsupported driver %q: use sqlserver, sqlite3 or duckdb", p.driver)
	}
	if len(missing) > 0 {
		return p, fmt.Errorf("missing required connection parameters: %s", strings.Join(missing, ", "))
	}
	return p, nil
}

func (p connParams) dataSource() string {
	if p.dsn != "" {
		return p.dsn
	}
	return fmt.Sprintf("server=%s;user id=%s;password=%s;port=%s;database=%s;encrypt=disable", p.server, p.user, p.password, p.port, p.database)
}

// withDB opens a connection, sets up context and signal handling, and calls
// fn with a live connection. The pool is closed when fn returns.
//
//	err := withDB("", func(ctx context.Context, conn source.Conn) error {
//	    // use conn.DB here
//	    return nil
//	})
func withDB(database string, fn func(ctx context.Context, conn source.Conn) error) error {
	p, err := loadConnParams(database)
	if err != nil {
		return err
	}
	db, err := sqlOpen(p.driver, p.dataSource())
	if err != nil {
		return fmt.Errorf("error creating connection pool: %v", err)
	}
	defer db.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := dbPing(db); err != nil {
		return fmt.Errorf("cannot connect to database: %v", err)
	}
	slog.Info("connected to database", "driver", p.driver)
	return fn(ctx, source.Conn{DB: db, DriverName: p.driver})
}
