package cachedict

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/cachedict/compiler"
	"github.com/syssam/cachedict/dialect"
	dsql "github.com/syssam/cachedict/dialect/sql"
	"github.com/syssam/cachedict/schema"
)

// A Tuple is an ordered sequence of column values. Key tuples must
// match the mapping's key fields in arity and order; value tuples
// likewise for value fields.
type Tuple []any

// An Entry is one row of the cache: its key tuple and value tuple.
type Entry struct {
	Key   Tuple
	Value Tuple
}

// CacheDict is a dict-style cache persisted as one table of an SQL
// engine. Its statements are compiled once from the mapping at
// construction and are immutable afterwards, so a single instance may
// be shared across goroutines; write serialization is the engine's
// business, one statement per operation.
type CacheDict struct {
	drv      dialect.Driver
	mapping  *schema.Mapping
	stmts    *compiler.Statements
	log      *slog.Logger
	id       uuid.UUID
	now      func() time.Time
	readOnly bool
}

// Option configures a CacheDict.
type Option func(*CacheDict)

// WithLogger sets the logger operations report to. Defaults to
// slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *CacheDict) { c.log = l }
}

// ReadOnly marks the cache read-only: construction skips table
// creation and every mutating operation fails with ErrReadOnly.
func ReadOnly() Option {
	return func(c *CacheDict) { c.readOnly = true }
}

// WithClock overrides the write-time source used for the timestamp
// column. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *CacheDict) { c.now = now }
}

// New compiles the mapping's statements against the given driver and,
// unless the cache is read-only, creates the table (idempotent: IF NOT
// EXISTS). The driver is owned by the returned cache and closed by
// Close.
func New(ctx context.Context, drv dialect.Driver, m *schema.Mapping, opts ...Option) (*CacheDict, error) {
	stmts, err := compiler.Compile(m)
	if err != nil {
		return nil, err
	}
	c := &CacheDict{
		drv:     drv,
		mapping: m,
		stmts:   stmts,
		log:     slog.Default(),
		id:      uuid.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.readOnly {
		if err := c.drv.Exec(ctx, c.stmts.Create, []any{}, nil); err != nil {
			return nil, fmt.Errorf("cachedict: create table %q: %w", c.stmts.Table, err)
		}
	}
	c.log.Info("cachedict: opened",
		"id", c.id, "table", c.stmts.Table, "dialect", drv.Dialect(), "read_only", c.readOnly)
	return c, nil
}

// Table returns the compiled table identifier.
func (c *CacheDict) Table() string { return c.stmts.Table }

// Mapping returns the mapping the cache was compiled from.
func (c *CacheDict) Mapping() *schema.Mapping { return c.mapping }

// Statements returns a copy of the compiled statements.
func (c *CacheDict) Statements() compiler.Statements { return *c.stmts }

// Set inserts the key→value association, replacing the value (and
// refreshing the timestamp, when tracked) of an existing row with the
// same key. Exactly one logical row per key ever exists.
func (c *CacheDict) Set(ctx context.Context, key, value Tuple) error {
	if c.readOnly {
		return &ReadOnlyError{Op: "set", Table: c.stmts.Table}
	}
	if err := c.checkArity("key", key, c.stmts.KeyArity); err != nil {
		return err
	}
	if err := c.checkArity("value", value, c.stmts.ValueArity); err != nil {
		return err
	}
	args := make([]any, 0, 1+len(key)+len(value))
	if c.stmts.Timestamped {
		args = append(args, c.now().UTC())
	}
	args = append(args, key...)
	args = append(args, value...)
	if err := c.drv.Exec(ctx, c.stmts.Upsert, args, nil); err != nil {
		return fmt.Errorf("cachedict: set: %w", err)
	}
	c.log.Debug("cachedict: set", "id", c.id, "table", c.stmts.Table, "key", key)
	return nil
}

// Get returns the value tuple stored under the key. An absent key
// yields a NotFoundError; for mappings without value columns the
// returned tuple is empty and Get degenerates to an existence check.
// More than one row for the key is a consistency violation and yields
// a NotSingularError.
func (c *CacheDict) Get(ctx context.Context, key Tuple) (Tuple, error) {
	if err := c.checkArity("key", key, c.stmts.KeyArity); err != nil {
		return nil, err
	}
	rows := &dsql.Rows{}
	if err := c.drv.Query(ctx, c.stmts.Select, []any(key), rows); err != nil {
		return nil, fmt.Errorf("cachedict: get: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("cachedict: get: %w", err)
		}
		return nil, &NotFoundError{table: c.stmts.Table, key: key}
	}
	value, err := scanTuple(rows, c.stmts.ValueArity)
	if err != nil {
		return nil, fmt.Errorf("cachedict: get: %w", err)
	}
	count := 1
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cachedict: get: %w", err)
	}
	if count > 1 {
		return nil, &NotSingularError{table: c.stmts.Table, key: key, count: count}
	}
	return value, nil
}

// Contains reports whether the key is present.
func (c *CacheDict) Contains(ctx context.Context, key Tuple) (bool, error) {
	switch _, err := c.Get(ctx, key); {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Delete removes the row stored under the key. Deleting an absent key
// yields a NotFoundError, matching map semantics of the original cache;
// callers wanting idempotent deletes can test with IsNotFound.
func (c *CacheDict) Delete(ctx context.Context, key Tuple) error {
	if c.readOnly {
		return &ReadOnlyError{Op: "delete", Table: c.stmts.Table}
	}
	if err := c.checkArity("key", key, c.stmts.KeyArity); err != nil {
		return err
	}
	var res dsql.Result
	if err := c.drv.Exec(ctx, c.stmts.Remove, []any(key), &res); err != nil {
		return fmt.Errorf("cachedict: delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cachedict: delete: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{table: c.stmts.Table, key: key}
	}
	c.log.Debug("cachedict: delete", "id", c.id, "table", c.stmts.Table, "key", key)
	return nil
}

// Len returns the number of rows in the table.
func (c *CacheDict) Len(ctx context.Context) (int, error) {
	rows := &dsql.Rows{}
	if err := c.drv.Query(ctx, c.stmts.Length, []any{}, rows); err != nil {
		return 0, fmt.Errorf("cachedict: len: %w", err)
	}
	defer rows.Close()
	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, fmt.Errorf("cachedict: len: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("cachedict: len: %w", err)
	}
	return int(n), nil
}

// Clear removes every row, keeping the table.
func (c *CacheDict) Clear(ctx context.Context) error {
	if c.readOnly {
		return &ReadOnlyError{Op: "clear", Table: c.stmts.Table}
	}
	if err := c.drv.Exec(ctx, c.stmts.Clear, []any{}, nil); err != nil {
		return fmt.Errorf("cachedict: clear: %w", err)
	}
	c.log.Debug("cachedict: clear", "id", c.id, "table", c.stmts.Table)
	return nil
}

// Drop drops the table entirely. The cache must not be used after a
// successful Drop except to Close it.
func (c *CacheDict) Drop(ctx context.Context) error {
	if c.readOnly {
		return &ReadOnlyError{Op: "drop", Table: c.stmts.Table}
	}
	if err := c.drv.Exec(ctx, c.stmts.Drop, []any{}, nil); err != nil {
		return fmt.Errorf("cachedict: drop: %w", err)
	}
	c.log.Info("cachedict: dropped", "id", c.id, "table", c.stmts.Table)
	return nil
}

// Keys returns every key tuple, most recently written first when the
// mapping tracks timestamps.
func (c *CacheDict) Keys(ctx context.Context) ([]Tuple, error) {
	return c.scanAll(ctx, c.stmts.Keys, c.stmts.KeyArity, "keys")
}

// Values returns every value tuple, most recently written first when
// the mapping tracks timestamps. For mappings without value columns
// each tuple is empty.
func (c *CacheDict) Values(ctx context.Context) ([]Tuple, error) {
	return c.scanAll(ctx, c.stmts.Values, c.stmts.ValueArity, "values")
}

// Items returns every row as an Entry, most recently written first
// when the mapping tracks timestamps.
func (c *CacheDict) Items(ctx context.Context) ([]Entry, error) {
	rows := &dsql.Rows{}
	if err := c.drv.Query(ctx, c.stmts.Items, []any{}, rows); err != nil {
		return nil, fmt.Errorf("cachedict: items: %w", err)
	}
	defer rows.Close()
	var items []Entry
	for rows.Next() {
		row, err := scanTuple(rows, c.stmts.KeyArity+c.stmts.ValueArity)
		if err != nil {
			return nil, fmt.Errorf("cachedict: items: %w", err)
		}
		items = append(items, Entry{
			Key:   row[:c.stmts.KeyArity],
			Value: row[c.stmts.KeyArity:],
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cachedict: items: %w", err)
	}
	return items, nil
}

// Close closes the underlying driver.
func (c *CacheDict) Close() error {
	c.log.Info("cachedict: closed", "id", c.id, "table", c.stmts.Table)
	return c.drv.Close()
}

func (c *CacheDict) scanAll(ctx context.Context, query string, arity int, op string) ([]Tuple, error) {
	rows := &dsql.Rows{}
	if err := c.drv.Query(ctx, query, []any{}, rows); err != nil {
		return nil, fmt.Errorf("cachedict: %s: %w", op, err)
	}
	defer rows.Close()
	var ts []Tuple
	for rows.Next() {
		t, err := scanTuple(rows, arity)
		if err != nil {
			return nil, fmt.Errorf("cachedict: %s: %w", op, err)
		}
		ts = append(ts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cachedict: %s: %w", op, err)
	}
	return ts, nil
}

func (c *CacheDict) checkArity(group string, t Tuple, want int) error {
	if len(t) != want {
		return &ArityError{Group: group, Want: want, Got: len(t)}
	}
	return nil
}

// scanTuple scans the current row into a fresh tuple of the given
// arity. A zero arity still scans the single NULL the projection emits
// for value-less mappings, and returns an empty tuple.
func scanTuple(rows *dsql.Rows, arity int) (Tuple, error) {
	if arity == 0 {
		var null any
		if err := rows.Scan(&null); err != nil {
			return nil, err
		}
		return Tuple{}, nil
	}
	t := make(Tuple, arity)
	ptrs := make([]any, arity)
	for i := range t {
		ptrs[i] = &t[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return t, nil
}
