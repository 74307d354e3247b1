package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cachedict/dialect"
)

func statsDriver(t *testing.T, opts ...StatsOption) (*StatsDriver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStatsDriver(OpenDB(dialect.SQLite, db), opts...), mock
}

// TestStatsCounters tests that execs, queries and errors are counted.
func TestStatsCounters(t *testing.T) {
	t.Parallel()
	drv, mock := statsDriver(t)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM `pets`").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM `pets`", []any{}, nil))

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT COUNT(*) FROM `pets`", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE FROM `pets`").WillReturnError(errors.New("boom"))
	require.Error(t, drv.Exec(ctx, "DELETE FROM `pets`", []any{}, nil))

	stats := drv.QueryStats().Stats()
	assert.Equal(t, int64(2), stats.TotalExecs)
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Greater(t, stats.TotalDuration, time.Duration(0))
	assert.Greater(t, stats.AvgQueryDuration(), time.Duration(0))
	assert.Contains(t, stats.String(), "errors=1")

	drv.QueryStats().Reset()
	assert.Equal(t, int64(0), drv.QueryStats().Stats().TotalExecs)
}

// TestSlowQueryHook tests that a zero threshold flags every statement
// as slow and invokes the hook with the statement text.
func TestSlowQueryHook(t *testing.T) {
	t.Parallel()
	var slow []string
	drv, mock := statsDriver(t,
		WithSlowThreshold(0),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM `pets`").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM `pets`", []any{}, nil))

	assert.Equal(t, int64(1), drv.QueryStats().Stats().SlowQueries)
	require.Len(t, slow, 1)
	assert.Equal(t, "DELETE FROM `pets`", slow[0])
}

// TestSlowThreshold tests threshold updates and that fast statements
// stay below a generous threshold.
func TestSlowThreshold(t *testing.T) {
	t.Parallel()
	drv, mock := statsDriver(t, WithSlowThreshold(time.Minute))
	assert.Equal(t, time.Minute, drv.SlowThreshold())
	drv.SetSlowThreshold(time.Hour)
	assert.Equal(t, time.Hour, drv.SlowThreshold())

	mock.ExpectExec("DELETE FROM `pets`").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM `pets`", []any{}, nil))
	assert.Equal(t, int64(0), drv.QueryStats().Stats().SlowQueries)
}

// TestStatsTx tests that statements inside a transaction feed the same
// counters.
func TestStatsTx(t *testing.T) {
	t.Parallel()
	drv, mock := statsDriver(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `pets`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO `pets`", []any{}, nil))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(1), drv.QueryStats().Stats().TotalExecs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDebugDriver tests that every statement is reported to the log
// function before reaching the connection.
func TestDebugDriver(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var logged []string
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLog(func(_ context.Context, v ...any) {
		for _, item := range v {
			logged = append(logged, item.(string))
		}
	}))
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM `pets`").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(ctx, "DELETE FROM `pets`", []any{}, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `pets`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO `pets`", []any{}, nil))
	require.NoError(t, tx.Rollback())

	require.NotEmpty(t, logged)
	assert.Contains(t, logged[0], "exec: DELETE FROM `pets`")
	assert.Contains(t, logged, "begin transaction")
	assert.Contains(t, logged, "rollback transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}
