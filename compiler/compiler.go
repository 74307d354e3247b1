// Package compiler turns a schema.Mapping into its physical table name
// and the parameterized SQL statements the cache executes against it.
//
// Compilation is pure: the same mapping always compiles to the same
// table name and statement text, so no registry tying schemas to
// physical tables is needed across process runs. Statements quote
// every identifier and bind values exclusively through positional
// placeholders; caller data never reaches the SQL text.
package compiler

import (
	"strings"

	"github.com/syssam/cachedict/schema"
	"github.com/syssam/cachedict/schema/field"
)

// TableName derives the deterministic table identifier for a mapping.
//
// Each field contributes a segment: its name followed by the lowercased
// spelling of its type tag, or the bare name when the tag is empty (the
// shorter segment for untyped fields is part of the naming contract and
// decides which mappings share a table; it is not normalized away).
// Key segments joined by "_" form the key group, value segments the
// value group, and the table name is "<key group>__<value group>"; the
// double underscore appears even when there are no value fields.
func TableName(m *schema.Mapping) string {
	var b strings.Builder
	for i, f := range m.Keys() {
		if i > 0 {
			b.WriteByte('_')
		}
		writeSegment(&b, f)
	}
	b.WriteString("__")
	for i, f := range m.Values() {
		if i > 0 {
			b.WriteByte('_')
		}
		writeSegment(&b, f)
	}
	return b.String()
}

func writeSegment(b *strings.Builder, f field.Field) {
	b.WriteString(f.Name)
	b.WriteString(strings.ToLower(f.Type))
}

// Statements holds the SQL compiled for one mapping, along with the
// bind arities the facade checks before execution. A Statements value
// is immutable after Compile returns and may be shared freely across
// goroutines.
type Statements struct {
	// Table is the compiled table identifier, unquoted.
	Table string

	// Create makes the table if it does not exist yet. No parameters.
	Create string
	// Upsert inserts a row or refreshes the timestamp/value columns of
	// the existing row with the same key. Parameters: write time (only
	// if tracking), key tuple, value tuple, in that order.
	Upsert string
	// Select looks a row up by its full key. Parameters: key tuple.
	Select string
	// Remove deletes a row by its full key. Parameters: key tuple.
	Remove string
	// Clear deletes every row. No parameters.
	Clear string
	// Drop drops the table. No parameters.
	Drop string
	// Length counts the rows. No parameters.
	Length string
	// Keys scans all key tuples. No parameters.
	Keys string
	// Items scans all key and value tuples. No parameters.
	Items string
	// Values scans all value tuples. No parameters.
	Values string

	// KeyArity and ValueArity are the tuple lengths the parameterized
	// statements expect; Upsert additionally binds the write time first
	// when Timestamped is set.
	KeyArity    int
	ValueArity  int
	Timestamped bool
}

// Compile validates the mapping and renders every statement once.
// It fails fast on a mapping that declares no key fields; all other
// invariants are enforced by schema.New before a Mapping can exist.
func Compile(m *schema.Mapping) (*Statements, error) {
	if m.KeyArity() == 0 {
		return nil, &schema.ValidationError{Err: schema.ErrNoKeys}
	}
	var (
		keys   = m.Keys()
		values = m.Values()
		ts     = m.TracksTimestamp()
	)
	s := &Statements{
		Table:       TableName(m),
		KeyArity:    len(keys),
		ValueArity:  len(values),
		Timestamped: ts,
	}
	s.Create = createStatement(s.Table, keys, values, ts)
	s.Upsert = upsertStatement(s.Table, keys, values, ts)
	s.Select = selectStatement(s.Table, keys, values, ts)
	s.Remove = "DELETE FROM " + quote(s.Table) + keyPredicate(keys)
	s.Clear = "DELETE FROM " + quote(s.Table)
	s.Drop = "DROP TABLE " + quote(s.Table)
	s.Length = "SELECT COUNT(*) FROM " + quote(s.Table)
	s.Keys = "SELECT " + columnList(names(keys)) + " FROM " + quote(s.Table) + recency(ts)
	s.Items = "SELECT " + columnList(append(names(keys), names(values)...)) + " FROM " + quote(s.Table) + recency(ts)
	s.Values = "SELECT " + projection(values) + " FROM " + quote(s.Table) + recency(ts)
	return s, nil
}

// createStatement renders the CREATE TABLE IF NOT EXISTS statement.
// Column order is fixed: timestamp first when tracking, then keys in
// declared order, then values in declared order. The primary key spans
// exactly the key columns and aborts on conflicting plain inserts, so
// only the upsert path may touch an existing key.
func createStatement(table string, keys, values []field.Field, ts bool) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quote(table))
	b.WriteString(" (")
	if ts {
		b.WriteString(quote(schema.TimestampColumn))
		b.WriteByte(' ')
		b.WriteString(schema.TimestampType)
		b.WriteString(", ")
	}
	for _, f := range keys {
		writeColumnDef(&b, f)
		b.WriteString(", ")
	}
	for _, f := range values {
		writeColumnDef(&b, f)
		b.WriteString(", ")
	}
	b.WriteString("PRIMARY KEY (")
	b.WriteString(columnList(names(keys)))
	b.WriteString(") ON CONFLICT ABORT)")
	return b.String()
}

// upsertStatement renders the insert-or-refresh statement. The update
// clause covers the timestamp column (when tracking) followed by the
// value columns, each sourced from the excluded pseudo-row rather than
// re-bound parameters. With nothing to refresh the conflict action
// degenerates to DO NOTHING, making a conflicting insert a no-op
// instead of an ABORT from the primary key.
func upsertStatement(table string, keys, values []field.Field, ts bool) string {
	insertCols := make([]string, 0, 1+len(keys)+len(values))
	if ts {
		insertCols = append(insertCols, schema.TimestampColumn)
	}
	insertCols = append(insertCols, names(keys)...)
	insertCols = append(insertCols, names(values)...)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quote(table))
	b.WriteString(" (")
	b.WriteString(columnList(insertCols))
	b.WriteString(") VALUES (")
	b.WriteString(placeholders(len(insertCols)))
	b.WriteString(") ON CONFLICT (")
	b.WriteString(columnList(names(keys)))
	b.WriteString(")")

	updated := make([]string, 0, 1+len(values))
	if ts {
		updated = append(updated, schema.TimestampColumn)
	}
	updated = append(updated, names(values)...)
	if len(updated) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET (")
	b.WriteString(columnList(updated))
	b.WriteString(") = (")
	for i, c := range updated {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("excluded.")
		b.WriteString(quote(c))
	}
	b.WriteString(")")
	return b.String()
}

// selectStatement renders the exact-key lookup. The key tuple is bound
// as a single row-value comparison. The recency ordering is emitted
// whenever tracking is enabled even though the primary key permits at
// most one row per key; the ordering predates that invariant and is
// kept for any future multi-version rows.
func selectStatement(table string, keys, values []field.Field, ts bool) string {
	return "SELECT " + projection(values) + " FROM " + quote(table) + keyPredicate(keys) + recency(ts)
}

// projection lists the value columns, or the literal NULL marker for
// mappings without value columns (SQL forbids an empty select list;
// NULL keeps existence checks expressible).
func projection(values []field.Field) string {
	if len(values) == 0 {
		return "NULL"
	}
	return columnList(names(values))
}

func keyPredicate(keys []field.Field) string {
	return " WHERE (" + columnList(names(keys)) + ") = (" + placeholders(len(keys)) + ")"
}

func recency(ts bool) string {
	if !ts {
		return ""
	}
	return " ORDER BY " + quote(schema.TimestampColumn) + " DESC"
}

func writeColumnDef(b *strings.Builder, f field.Field) {
	b.WriteString(quote(f.Name))
	if f.Type != "" {
		b.WriteByte(' ')
		b.WriteString(f.Type)
	}
}

func names(fs []field.Field) []string {
	ns := make([]string, len(fs))
	for i, f := range fs {
		ns[i] = f.Name
	}
	return ns
}

func columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// quote wraps an identifier in double quotes. Identifiers reaching the
// compiler have already passed the schema identifier rule, which
// excludes quote characters.
func quote(ident string) string {
	return `"` + ident + `"`
}
