package tree

import (
	"errors"
	"fmt"
)

// Tree errors.
var (
	// ErrUnknownClass is returned when a class name is not part of the taxonomy.
	ErrUnknownClass = errors.New("tree: unknown class")

	// ErrInvalidPath is returned when a path does not address a node.
	ErrInvalidPath = errors.New("tree: invalid path")

	// ErrNotText is returned when a text operation addresses an element.
	ErrNotText = errors.New("tree: node is not text")

	// ErrNotElement is returned when an element operation addresses text.
	ErrNotElement = errors.New("tree: node is not an element")

	// ErrOffsetOutOfRange is returned when a text offset is outside the text.
	ErrOffsetOutOfRange = errors.New("tree: offset out of range")

	// ErrMergeMismatch is returned when merging nodes of different kinds.
	ErrMergeMismatch = errors.New("tree: cannot merge nodes of different kinds")

	// ErrUnknownOperation is returned for an operation kind Apply cannot handle.
	ErrUnknownOperation = errors.New("tree: unknown operation")

	// ErrNoSelection is returned by transforms that require a selection.
	ErrNoSelection = errors.New("tree: no selection")
)

// PathError records the operation and path that failed.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(op string, p Path, err error) error {
	return &PathError{Op: op, Path: p.Clone(), Err: err}
}
