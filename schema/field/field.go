package field

// A Field describes one typed column of a cache mapping: an
// identifier-safe name and a declared SQL type tag. The tag is kept as
// the caller spelled it; normalization (lowercasing the name,
// uppercasing the tag for SQL) happens when the field is attached to a
// mapping.
type Field struct {
	// Name is the column identifier.
	Name string
	// Type is the declared SQL type tag. An empty tag means the column
	// is declared without a type and SQLite decides the affinity.
	Type string
}

// Typed returns a field with an explicit SQL type tag.
func Typed(name, sqltype string) Field {
	return Field{Name: name, Type: sqltype}
}

// Any returns a field declared without a type tag.
func Any(name string) Field {
	return Field{Name: name}
}

// Int returns a field with INT affinity.
func Int(name string) Field {
	return Field{Name: name, Type: "INT"}
}

// Text returns a field with TEXT affinity.
func Text(name string) Field {
	return Field{Name: name, Type: "TEXT"}
}

// Real returns a field with REAL affinity.
func Real(name string) Field {
	return Field{Name: name, Type: "REAL"}
}

// Blob returns a field with BLOB affinity.
func Blob(name string) Field {
	return Field{Name: name, Type: "BLOB"}
}

// Numeric returns a field with NUMERIC affinity.
func Numeric(name string) Field {
	return Field{Name: name, Type: "NUMERIC"}
}
