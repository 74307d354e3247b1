// Package dialect defines the boundary between the cache and the
// database engine that executes its compiled statements.
//
// The cache core only ever hands an engine a parameterized statement
// and an ordered argument list; everything engine-specific (locking,
// transactions, type coercion) lives behind the Driver interface. The
// sql subpackage implements it on database/sql.
package dialect

import "context"

// Engine names understood by the sql subpackage.
const (
	// SQLite is the embedded engine the cache targets; its driver is
	// provided by modernc.org/sqlite.
	SQLite = "sqlite"

	// MySQL and Postgres name client-server engines. The compiled
	// upsert grammar is not portable to MySQL; the constants exist so
	// drivers can report what they are connected to.
	MySQL    = "mysql"
	Postgres = "postgres"
)

// ExecQuerier is the minimal execution contract: run a statement with
// bound arguments, either for its side effects (Exec) or for its rows
// (Query). The v argument receives the result: *sql.Result or nil for
// Exec, *sql.Rows for Query.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement and returns its rows in v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the engine connection used by the cache. Cancellation and
// timeouts are pass-throughs of the given context; the cache adds no
// policy of its own.
type Driver interface {
	ExecQuerier

	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the engine name the driver is connected to.
	Dialect() string
}

// Tx is a transaction-scoped ExecQuerier.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
