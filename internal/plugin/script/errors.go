package script

import "errors"

// Script errors.
var (
	// ErrClosed is returned when a closed State is used.
	ErrClosed = errors.New("script: state closed")

	// ErrNoFunction is returned when a named global is not a function.
	ErrNoFunction = errors.New("script: function not found")

	// ErrNoEditor is raised by the ed table outside a handler call.
	ErrNoEditor = errors.New("script: no editor bound")

	// ErrNoSelection is raised by ed functions that need a current block.
	ErrNoSelection = errors.New("script: no selection")
)
