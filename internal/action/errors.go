package action

import "errors"

// Action errors.
var (
	// ErrNoHandler indicates the action has no handler.
	ErrNoHandler = errors.New("action: no handler")

	// ErrUnknownAction indicates no registered action has the name.
	ErrUnknownAction = errors.New("action: unknown action")

	// ErrEmptyHotkey indicates an empty hotkey specification.
	ErrEmptyHotkey = errors.New("action: empty hotkey")

	// ErrInvalidHotkey indicates a malformed hotkey specification.
	ErrInvalidHotkey = errors.New("action: invalid hotkey")
)
