package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/syssam/cachedict/schema/field"
)

// TimestampColumn is the reserved column that records a row's last
// write time when timestamp tracking is enabled. Field names must not
// collide with it, case-insensitively.
const TimestampColumn = "__timestamp"

// TimestampType is the declared SQL type of the reserved column.
const TimestampType = "TIMESTAMP"

// identifierRe is the rule inherited from the original cache format:
// an ASCII letter followed by up to 62 letters, digits or underscores.
// Matching is case-insensitive; names are stored lowercased and type
// tags uppercased.
var identifierRe = regexp.MustCompile(`^(?i)[a-z][a-z0-9_]{0,62}$`)

// Validation sentinels. Construction-time failures wrap one of these,
// so callers can branch with errors.Is while still seeing the
// offending field in the message.
var (
	// ErrNoKeys is returned when a mapping declares no key fields.
	ErrNoKeys = errors.New("schema: mapping must declare at least one key field")

	// ErrInvalidIdentifier is returned for a field name that does not
	// satisfy the identifier rule.
	ErrInvalidIdentifier = errors.New("schema: invalid identifier")

	// ErrInvalidType is returned for a non-empty type tag that does not
	// satisfy the identifier rule.
	ErrInvalidType = errors.New("schema: invalid type tag")

	// ErrReservedName is returned when a field reuses the reserved
	// timestamp column name.
	ErrReservedName = errors.New("schema: reserved column name")

	// ErrDuplicateField is returned when two fields in the same group
	// normalize to the same name.
	ErrDuplicateField = errors.New("schema: duplicate field name")

	// ErrFieldOverlap is returned when a value field reuses a key name.
	ErrFieldOverlap = errors.New("schema: key and value field names must be disjoint")
)

// A ValidationError reports which field failed mapping validation.
type ValidationError struct {
	Name string // offending field name as supplied by the caller
	Err  error  // one of the sentinel causes above
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: field %q", e.Err, e.Name)
}

// Unwrap returns the sentinel cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationError reports whether err is a mapping validation error.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// A Mapping is the immutable description of one cache table: ordered
// key fields, ordered value fields and the timestamp-tracking flag.
// It is validated eagerly by New and never mutated afterwards, so a
// single Mapping may back any number of concurrent callers.
type Mapping struct {
	keys       []field.Field
	values     []field.Field
	timestamps bool
}

// Option configures a Mapping under construction.
type Option func(*Mapping)

// WithTimestamp enables per-row write-time tracking. The compiled
// table carries the reserved __timestamp column and every upsert
// refreshes it.
func WithTimestamp() Option {
	return func(m *Mapping) { m.timestamps = true }
}

// New validates and normalizes the given key and value fields and
// returns the immutable Mapping. Field names are stripped of
// surrounding whitespace and lowercased; type tags are stripped and
// uppercased. New fails, rather than a later statement execution, on
// any rule violation: zero keys, malformed identifiers or tags, reuse
// of the reserved timestamp column, duplicate names within a group, or
// a value field shadowing a key field.
func New(keys, values []field.Field, opts ...Option) (*Mapping, error) {
	if len(keys) == 0 {
		return nil, &ValidationError{Err: ErrNoKeys}
	}
	m := &Mapping{
		keys:   make([]field.Field, 0, len(keys)),
		values: make([]field.Field, 0, len(values)),
	}
	for _, opt := range opts {
		opt(m)
	}
	seen := make(map[string]struct{}, len(keys)+len(values))
	for _, f := range keys {
		nf, err := normalize(f)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[nf.Name]; ok {
			return nil, &ValidationError{Name: f.Name, Err: ErrDuplicateField}
		}
		seen[nf.Name] = struct{}{}
		m.keys = append(m.keys, nf)
	}
	inKeys := seen
	seenValues := make(map[string]struct{}, len(values))
	for _, f := range values {
		nf, err := normalize(f)
		if err != nil {
			return nil, err
		}
		if _, ok := seenValues[nf.Name]; ok {
			return nil, &ValidationError{Name: f.Name, Err: ErrDuplicateField}
		}
		if _, ok := inKeys[nf.Name]; ok {
			return nil, &ValidationError{Name: f.Name, Err: ErrFieldOverlap}
		}
		seenValues[nf.Name] = struct{}{}
		m.values = append(m.values, nf)
	}
	return m, nil
}

// normalize strips, validates and case-folds a single field.
func normalize(f field.Field) (field.Field, error) {
	name := strings.TrimSpace(f.Name)
	if strings.EqualFold(name, TimestampColumn) {
		return field.Field{}, &ValidationError{Name: f.Name, Err: ErrReservedName}
	}
	if !identifierRe.MatchString(name) {
		return field.Field{}, &ValidationError{Name: f.Name, Err: ErrInvalidIdentifier}
	}
	sqltype := strings.TrimSpace(f.Type)
	if sqltype != "" && !identifierRe.MatchString(sqltype) {
		return field.Field{}, &ValidationError{Name: f.Name, Err: ErrInvalidType}
	}
	return field.Field{
		Name: strings.ToLower(name),
		Type: strings.ToUpper(sqltype),
	}, nil
}

// Keys returns the normalized key fields in declared order.
func (m *Mapping) Keys() []field.Field {
	ks := make([]field.Field, len(m.keys))
	copy(ks, m.keys)
	return ks
}

// Values returns the normalized value fields in declared order.
func (m *Mapping) Values() []field.Field {
	vs := make([]field.Field, len(m.values))
	copy(vs, m.values)
	return vs
}

// TracksTimestamp reports whether the mapping records write times.
func (m *Mapping) TracksTimestamp() bool { return m.timestamps }

// KeyArity returns the number of key columns.
func (m *Mapping) KeyArity() int { return len(m.keys) }

// ValueArity returns the number of value columns.
func (m *Mapping) ValueArity() int { return len(m.values) }
