package cachedict

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested key does not exist.
	ErrNotFound = errors.New("cachedict: key not found")

	// ErrNotSingular is returned when a unique-key lookup returns more
	// than one row. The primary key makes this impossible in a healthy
	// table, so it signals a violated invariant or engine misbehavior
	// and is never collapsed to "first row wins".
	ErrNotSingular = errors.New("cachedict: key not singular")

	// ErrReadOnly is returned when a mutating operation is attempted on
	// a read-only cache.
	ErrReadOnly = errors.New("cachedict: cache is read-only")
)

// NotFoundError reports a lookup or delete for an absent key.
type NotFoundError struct {
	table string
	key   Tuple
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cachedict: key %v not present in table %q", e.key, e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(err, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table the key was looked up in.
func (e *NotFoundError) Table() string { return e.table }

// Key returns the key tuple that was looked up.
func (e *NotFoundError) Key() Tuple { return e.key }

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError reports a unique-key lookup that produced more than
// one row: a consistency violation.
type NotSingularError struct {
	table string
	key   Tuple
	count int // Number of rows observed (-1 if unknown)
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("cachedict: key %v not singular in table %q (got %d rows, expected 1)", e.key, e.table, e.count)
	}
	return fmt.Sprintf("cachedict: key %v not singular in table %q", e.key, e.table)
}

// Is reports whether the target error matches NotSingularError.
// This allows errors.Is(err, ErrNotSingular) to return true.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// Table returns the table the key was looked up in.
func (e *NotSingularError) Table() string { return e.table }

// Count returns the number of rows observed, or -1 if unknown.
func (e *NotSingularError) Count() int { return e.count }

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// ArityError reports a key or value tuple whose length does not match
// the compiled statement's placeholder count for that column group.
// The operation is aborted before anything reaches the engine.
type ArityError struct {
	Group string // "key" or "value"
	Want  int
	Got   int
}

// Error returns the error string.
func (e *ArityError) Error() string {
	return fmt.Sprintf("cachedict: %s tuple has %d elements, mapping declares %d", e.Group, e.Got, e.Want)
}

// IsArityError returns true if the error is an ArityError.
func IsArityError(err error) bool {
	if err == nil {
		return false
	}
	var e *ArityError
	return errors.As(err, &e)
}

// ReadOnlyError reports a mutating operation on a read-only cache.
type ReadOnlyError struct {
	Op    string // operation that was refused
	Table string
}

// Error returns the error string.
func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("cachedict: cannot %s read-only table %q", e.Op, e.Table)
}

// Is reports whether the target error matches ReadOnlyError.
// This allows errors.Is(err, ErrReadOnly) to return true.
func (e *ReadOnlyError) Is(err error) bool {
	return err == ErrReadOnly
}

// IsReadOnly returns true if the error is a ReadOnlyError.
func IsReadOnly(err error) bool {
	if err == nil {
		return false
	}
	var e *ReadOnlyError
	return errors.As(err, &e) || errors.Is(err, ErrReadOnly)
}
