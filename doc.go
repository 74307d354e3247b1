// Package cachedict provides a dict-style cache persisted in an
// embedded SQLite database.
//
// Callers declare a mapping of ordered, typed key fields and value
// fields, with optional per-row write-time tracking, and get a
// map-like handle whose operations execute pre-compiled, parameterized
// SQL against one dedicated table:
//
//	m, err := schema.New(
//	    []field.Field{field.Text("url")},
//	    []field.Field{field.Blob("body"), field.Int("status")},
//	    schema.WithTimestamp(),
//	)
//	if err != nil {
//	    ...
//	}
//	cache, err := cachedict.Open(ctx, "pages.db", m, true)
//	if err != nil {
//	    ...
//	}
//	defer cache.Close()
//
//	err = cache.Set(ctx, cachedict.Tuple{"https://example.com"},
//	    cachedict.Tuple{body, 200})
//	value, err := cache.Get(ctx, cachedict.Tuple{"https://example.com"})
//
// The table name is a pure function of the mapping (see the compiler
// package), so the same declaration always resolves to the same
// physical table with no registry in between. The key columns form the
// table's primary key; Set upserts, Get looks up by the full key, and
// at most one row per key can exist.
//
// All failures are distinguishable error values: schema validation
// errors surface at construction, tuple arity errors abort before the
// engine is reached, absent keys are NotFoundError, and engine errors
// propagate unchanged for the caller's own retry policy.
package cachedict
