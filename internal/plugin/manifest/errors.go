package manifest

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrEmpty          = errors.New("manifest: empty document")
	ErrMissingName    = errors.New("manifest: name is required")
	ErrInvalidClass   = errors.New("manifest: invalid class")
	ErrInvalidShape   = errors.New("manifest: shape must be composite or repeated")
	ErrInvalidChild   = errors.New("manifest: child type must be a non-empty name without '/'")
	ErrDuplicateChild = errors.New("manifest: duplicate child type")
	ErrMissingTitle   = errors.New("manifest: action title is required")
	ErrInvalidAction  = errors.New("manifest: action needs exactly one of handler or insert")
	ErrNoScript       = errors.New("manifest: action references a function but no script is set")
	ErrBothScripts    = errors.New("manifest: script and script_file are exclusive")
	ErrInvalidScript  = errors.New("manifest: script_file must be a .lua file")
)

// ParseError reports a manifest that could not be read, decoded or
// validated.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("manifest: %v", e.Err)
	}
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
