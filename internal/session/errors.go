package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrSpellcheckDisabled is returned by Check when no checker is wired.
	ErrSpellcheckDisabled = errors.New("session: spellcheck disabled")

	// ErrNoBinding is returned by HandleKey for an unbound chord.
	ErrNoBinding = errors.New("session: no action bound")
)

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
