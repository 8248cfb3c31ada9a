package mapping

import (
	"errors"
	"fmt"
)

// NotFoundError reports that no leaf exists at the requested event path.
// Path is always the full original path, not the failing segment.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event path not found: %q", e.Path)
}

// InvalidLeafError reports that the requested path terminated on a value
// that is not an integer code (a group node or a non-numeric leaf).
type InvalidLeafError struct {
	Path  string
	Value any
}

// Error implements the error interface.
func (e *InvalidLeafError) Error() string {
	return fmt.Sprintf("event path %q does not resolve to an integer code (got %T)", e.Path, e.Value)
}

// LoadError reports a failure to load or validate a mapping document from
// disk. Callers recover by falling back to Default; keeping the error typed
// lets them record which path was taken.
type LoadError struct {
	File string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load mapping document %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an event-path-not-found failure.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInvalidLeaf reports whether err is a non-numeric-leaf failure.
func IsInvalidLeaf(err error) bool {
	var il *InvalidLeafError
	return errors.As(err, &il)
}

// IsLoadError reports whether err is a document load or validation failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
