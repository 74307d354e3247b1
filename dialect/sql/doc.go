// Package sql implements the dialect.Driver boundary on database/sql.
//
// Driver wraps a *sql.DB (or an open transaction) and adapts its
// ExecContext/QueryContext methods to the narrow Exec/Query contract
// the cache core executes its compiled statements through:
//
//	drv, err := sql.Open(dialect.SQLite, "file:cache.db?mode=rwc")
//	if err != nil {
//	    ...
//	}
//	defer drv.Close()
//
// Rows wraps *sql.Rows as a lazy, non-restartable column scanner; the
// Null* aliases and NullScanner help decode nullable columns.
//
// StatsDriver and DebugDriver are optional wrappers adding statement
// statistics (with slow-statement detection) and per-statement debug
// logging on log/slog.
package sql
