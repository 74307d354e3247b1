// Package field provides builders for declaring cache mapping columns.
//
// A field is a (name, SQL type tag) pair. Constructors exist for the
// five SQLite type affinities, plus Any for untyped columns and Typed
// for caller-controlled tags:
//
//	field.Int("hits")
//	field.Text("etag")
//	field.Any("token")           // no declared type
//	field.Typed("score", "AInt") // custom tag, INT affinity in SQLite
//
// Names and tags are validated when a schema.Mapping is constructed,
// not here.
package field
