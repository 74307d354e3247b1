package cachedict

import (
	"context"

	// Registers the embedded SQLite engine under the "sqlite" name.
	_ "modernc.org/sqlite"

	"github.com/syssam/cachedict/dialect"
	dsql "github.com/syssam/cachedict/dialect/sql"
	"github.com/syssam/cachedict/schema"
)

// Anonymous database paths understood by SQLite.
const (
	anonMemoryPath = ":memory:"
	anonDiskPath   = ""
)

// OpenMemory opens a cache on an anonymous in-memory database. The
// database lives exactly as long as the connection, so the pool is
// pinned to a single connection; everything is lost on Close.
func OpenMemory(ctx context.Context, m *schema.Mapping, opts ...Option) (*CacheDict, error) {
	drv, err := dsql.Open(dialect.SQLite, anonMemoryPath)
	if err != nil {
		return nil, err
	}
	drv.DB().SetMaxOpenConns(1)
	return newClosing(ctx, drv, m, opts...)
}

// OpenTemp opens a cache on an anonymous temporary on-disk database,
// deleted by SQLite when the connection closes.
func OpenTemp(ctx context.Context, m *schema.Mapping, opts ...Option) (*CacheDict, error) {
	drv, err := dsql.Open(dialect.SQLite, anonDiskPath)
	if err != nil {
		return nil, err
	}
	drv.DB().SetMaxOpenConns(1)
	return newClosing(ctx, drv, m, opts...)
}

// Open opens a cache on the database file at path, read-write. With
// create set, a missing database file is created (SQLite mode=rwc);
// without it, opening a missing file fails (mode=rw).
func Open(ctx context.Context, path string, m *schema.Mapping, create bool, opts ...Option) (*CacheDict, error) {
	mode := "rw"
	if create {
		mode = "rwc"
	}
	drv, err := dsql.Open(dialect.SQLite, "file:"+path+"?mode="+mode)
	if err != nil {
		return nil, err
	}
	return newClosing(ctx, drv, m, opts...)
}

// OpenReadOnly opens a cache on an existing database file in read-only
// mode (SQLite mode=ro). The table is assumed to exist; mutating
// operations fail with ErrReadOnly.
func OpenReadOnly(ctx context.Context, path string, m *schema.Mapping, opts ...Option) (*CacheDict, error) {
	drv, err := dsql.Open(dialect.SQLite, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	return newClosing(ctx, drv, m, append(opts, ReadOnly())...)
}

// newClosing builds the cache and closes the freshly opened driver on
// construction failure, so open helpers never leak connections.
func newClosing(ctx context.Context, drv *dsql.Driver, m *schema.Mapping, opts ...Option) (*CacheDict, error) {
	c, err := New(ctx, drv, m, opts...)
	if err != nil {
		drv.Close()
		return nil, err
	}
	return c, nil
}
