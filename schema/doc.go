// Package schema describes the shape of a single cache table.
//
// A Mapping is an ordered set of typed key fields, an ordered set of
// typed value fields, and a flag controlling per-row write-time
// tracking. Mappings are built once from field descriptors and are
// immutable:
//
//	m, err := schema.New(
//	    []field.Field{field.Text("url")},
//	    []field.Field{field.Blob("body"), field.Int("status")},
//	    schema.WithTimestamp(),
//	)
//
// Validation happens here, eagerly, so the statement compiler never
// fails at call time: names must match the identifier rule inherited
// from the original cache format, must not collide with the reserved
// __timestamp column, and must be unique across the whole mapping.
//
// Mappings can also be declared in YAML; see the load subpackage.
package schema
