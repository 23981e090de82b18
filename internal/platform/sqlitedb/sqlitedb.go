// Package sqlitedb is the embedded store used by single-laptop field
// deployments and by integration tests.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/labstack/echo/v4"
	_ "github.com/mattn/go-sqlite3"

	"github.com/potlako/follow/internal/platform/db"
)

type contextKey string

const txKey contextKey = "sqlite_tx"

// Queryable is satisfied by both *sql.DB and *sql.Tx.
type Queryable interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Open opens (or creates) the SQLite database at path and applies SchemaSQL.
// Use ":memory:" for a throwaway database.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writers.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := conn.Exec(SchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return conn, nil
}

// TxFromContext returns the transaction started by RunInTx, if any.
func TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey).(*sql.Tx)
	return tx
}

// Conn returns the open transaction or conn.
func Conn(ctx context.Context, conn *sql.DB) Queryable {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}

// TxRunner runs fn inside a SQLite transaction.
type TxRunner struct {
	db *sql.DB
}

func NewTxRunner(conn *sql.DB) *TxRunner {
	return &TxRunner{db: conn}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// HealthHandler reports whether the embedded database answers a ping.
func HealthHandler(conn *sql.DB) echo.HandlerFunc {
	return db.HealthCheck{
		Driver: "sqlite",
		Ping:   conn.PingContext,
		Details: func() interface{} {
			s := conn.Stats()
			return map[string]int{"open_conns": s.OpenConnections, "in_use": s.InUse}
		},
	}.Handler()
}
