package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/cachedict/compiler"
	"github.com/syssam/cachedict/schema"
	"github.com/syssam/cachedict/schema/field"
)

func mustMapping(t *testing.T, keys, values []field.Field, opts ...schema.Option) *schema.Mapping {
	t.Helper()
	m, err := schema.New(keys, values, opts...)
	require.NoError(t, err)
	return m
}

// TestTableName tests the deterministic table identifier derivation:
// per-field segments of name plus lowercased type tag (bare name when
// the tag is empty), key and value groups joined by "_", and the two
// groups joined unconditionally by "__".
func TestTableName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		keys   []field.Field
		values []field.Field
		want   string
	}{
		{
			name:   "typed key and value",
			keys:   []field.Field{field.Typed("a", "AInt")},
			values: []field.Field{field.Typed("b", "Text")},
			want:   "aaint__btext",
		},
		{
			name: "untyped keys, no values",
			keys: []field.Field{field.Any("a"), field.Any("b")},
			want: "a_b__",
		},
		{
			name:   "single untyped key is shorter than a typed sibling",
			keys:   []field.Field{field.Any("a")},
			values: nil,
			want:   "a__",
		},
		{
			name:   "affinity constructors",
			keys:   []field.Field{field.Int("id"), field.Text("zone")},
			values: []field.Field{field.Real("score"), field.Blob("raw")},
			want:   "idint_zonetext__scorereal_rawblob",
		},
		{
			name:   "mixed typed and untyped values",
			keys:   []field.Field{field.Text("k")},
			values: []field.Field{field.Any("v"), field.Numeric("n")},
			want:   "ktext__v_nnumeric",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := mustMapping(t, tt.keys, tt.values)
			assert.Equal(t, tt.want, compiler.TableName(m))
		})
	}
}

// TestTableNameDeterminism tests that compiling the same mapping twice
// yields the identical name, and that order or group membership changes
// the name.
func TestTableNameDeterminism(t *testing.T) {
	t.Parallel()

	m := mustMapping(t,
		[]field.Field{field.Int("a"), field.Text("b")},
		[]field.Field{field.Text("c")},
	)
	assert.Equal(t, compiler.TableName(m), compiler.TableName(m))

	reordered := mustMapping(t,
		[]field.Field{field.Text("b"), field.Int("a")},
		[]field.Field{field.Text("c")},
	)
	assert.NotEqual(t, compiler.TableName(m), compiler.TableName(reordered))

	moved := mustMapping(t,
		[]field.Field{field.Int("a")},
		[]field.Field{field.Text("b"), field.Text("c")},
	)
	assert.NotEqual(t, compiler.TableName(m), compiler.TableName(moved))
}

// TestCreateStatement tests column ordering (timestamp first when
// tracked, then keys, then values, all in declared order) and the
// primary key clause over exactly the key columns with ABORT policy.
func TestCreateStatement(t *testing.T) {
	t.Parallel()

	t.Run("timestamped", func(t *testing.T) {
		t.Parallel()
		m := mustMapping(t,
			[]field.Field{field.Typed("a", "AInt")},
			[]field.Field{field.Typed("b", "Text")},
			schema.WithTimestamp(),
		)
		s, err := compiler.Compile(m)
		require.NoError(t, err)
		assert.Equal(t, "aaint__btext", s.Table)
		assert.Equal(t,
			`CREATE TABLE IF NOT EXISTS "aaint__btext" `+
				`("__timestamp" TIMESTAMP, "a" AINT, "b" TEXT, `+
				`PRIMARY KEY ("a") ON CONFLICT ABORT)`,
			s.Create)
	})

	t.Run("untracked composite key", func(t *testing.T) {
		t.Parallel()
		m := mustMapping(t,
			[]field.Field{field.Any("a"), field.Any("b")},
			nil,
		)
		s, err := compiler.Compile(m)
		require.NoError(t, err)
		assert.Equal(t,
			`CREATE TABLE IF NOT EXISTS "a_b__" `+
				`("a", "b", PRIMARY KEY ("a", "b") ON CONFLICT ABORT)`,
			s.Create)
	})
}

// TestUpsertStatement tests the four structural shapes of the upsert:
// {values?} x {timestamp?}. Updated columns are always sourced from the
// excluded pseudo-row, and with nothing to refresh the conflict action
// is DO NOTHING.
func TestUpsertStatement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		keys   []field.Field
		values []field.Field
		opts   []schema.Option
		want   string
	}{
		{
			name:   "values and timestamp",
			keys:   []field.Field{field.Int("a")},
			values: []field.Field{field.Text("c"), field.Text("d")},
			opts:   []schema.Option{schema.WithTimestamp()},
			want: `INSERT INTO "aint__ctext_dtext" ("__timestamp", "a", "c", "d") ` +
				`VALUES (?, ?, ?, ?) ON CONFLICT ("a") ` +
				`DO UPDATE SET ("__timestamp", "c", "d") = ` +
				`(excluded."__timestamp", excluded."c", excluded."d")`,
		},
		{
			name:   "values without timestamp",
			keys:   []field.Field{field.Int("a")},
			values: []field.Field{field.Text("c")},
			want: `INSERT INTO "aint__ctext" ("a", "c") ` +
				`VALUES (?, ?) ON CONFLICT ("a") ` +
				`DO UPDATE SET ("c") = (excluded."c")`,
		},
		{
			name: "timestamp only touches the write time",
			keys: []field.Field{field.Int("a")},
			opts: []schema.Option{schema.WithTimestamp()},
			want: `INSERT INTO "aint__" ("__timestamp", "a") ` +
				`VALUES (?, ?) ON CONFLICT ("a") ` +
				`DO UPDATE SET ("__timestamp") = (excluded."__timestamp")`,
		},
		{
			name: "no values, no timestamp: conflicting insert is a no-op",
			keys: []field.Field{field.Any("a"), field.Any("b")},
			want: `INSERT INTO "a_b__" ("a", "b") ` +
				`VALUES (?, ?) ON CONFLICT ("a", "b") DO NOTHING`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := mustMapping(t, tt.keys, tt.values, tt.opts...)
			s, err := compiler.Compile(m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Upsert)
			if len(tt.values) == 0 && len(tt.opts) == 0 {
				assert.NotContains(t, s.Upsert, "DO UPDATE SET")
			}
		})
	}
}

// TestSelectStatement tests the exact-key lookup: row-value key
// comparison, NULL projection for value-less mappings, and the recency
// ordering emitted exactly when timestamps are tracked.
func TestSelectStatement(t *testing.T) {
	t.Parallel()

	t.Run("values and timestamp", func(t *testing.T) {
		t.Parallel()
		m := mustMapping(t,
			[]field.Field{field.Int("a")},
			[]field.Field{field.Text("c"), field.Text("d")},
			schema.WithTimestamp(),
		)
		s, err := compiler.Compile(m)
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT "c", "d" FROM "aint__ctext_dtext" `+
				`WHERE ("a") = (?) ORDER BY "__timestamp" DESC`,
			s.Select)
	})

	t.Run("no values projects NULL", func(t *testing.T) {
		t.Parallel()
		m := mustMapping(t, []field.Field{field.Any("a"), field.Any("b")}, nil)
		s, err := compiler.Compile(m)
		require.NoError(t, err)
		assert.Equal(t, `SELECT NULL FROM "a_b__" WHERE ("a", "b") = (?, ?)`, s.Select)
	})

	t.Run("no ordering without timestamp", func(t *testing.T) {
		t.Parallel()
		m := mustMapping(t,
			[]field.Field{field.Int("a")},
			[]field.Field{field.Text("c")},
		)
		s, err := compiler.Compile(m)
		require.NoError(t, err)
		assert.NotContains(t, s.Select, "ORDER BY")
	})
}

// TestSupportingStatements tests the remaining table-scope statements:
// remove, clear, drop, length and the keys/items/values scans.
func TestSupportingStatements(t *testing.T) {
	t.Parallel()

	m := mustMapping(t,
		[]field.Field{field.Int("a"), field.Text("b")},
		[]field.Field{field.Text("c")},
		schema.WithTimestamp(),
	)
	s, err := compiler.Compile(m)
	require.NoError(t, err)

	table := `"aint_btext__ctext"`
	assert.Equal(t, "DELETE FROM "+table+` WHERE ("a", "b") = (?, ?)`, s.Remove)
	assert.Equal(t, "DELETE FROM "+table, s.Clear)
	assert.Equal(t, "DROP TABLE "+table, s.Drop)
	assert.Equal(t, "SELECT COUNT(*) FROM "+table, s.Length)
	assert.Equal(t, `SELECT "a", "b" FROM `+table+` ORDER BY "__timestamp" DESC`, s.Keys)
	assert.Equal(t, `SELECT "a", "b", "c" FROM `+table+` ORDER BY "__timestamp" DESC`, s.Items)
	assert.Equal(t, `SELECT "c" FROM `+table+` ORDER BY "__timestamp" DESC`, s.Values)
}

// TestCompileArities tests the bind arities recorded for the facade.
func TestCompileArities(t *testing.T) {
	t.Parallel()

	m := mustMapping(t,
		[]field.Field{field.Int("a"), field.Text("b")},
		[]field.Field{field.Text("c")},
		schema.WithTimestamp(),
	)
	s, err := compiler.Compile(m)
	require.NoError(t, err)
	assert.Equal(t, 2, s.KeyArity)
	assert.Equal(t, 1, s.ValueArity)
	assert.True(t, s.Timestamped)
}

// TestCompileRejectsZeroKeys tests that a zero-value mapping fails fast
// at compilation rather than rendering broken SQL.
func TestCompileRejectsZeroKeys(t *testing.T) {
	t.Parallel()

	_, err := compiler.Compile(new(schema.Mapping))
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrNoKeys)
	assert.True(t, schema.IsValidationError(err))
}

// TestCompileDeterminism tests that repeated compilation of the same
// mapping produces identical statement text.
func TestCompileDeterminism(t *testing.T) {
	t.Parallel()

	m := mustMapping(t,
		[]field.Field{field.Int("a")},
		[]field.Field{field.Text("b")},
		schema.WithTimestamp(),
	)
	s1, err := compiler.Compile(m)
	require.NoError(t, err)
	s2, err := compiler.Compile(m)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)
}
