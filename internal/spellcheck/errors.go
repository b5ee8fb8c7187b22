package spellcheck

import "errors"

// Spellcheck errors.
var (
	// ErrBatchMismatch is returned when the checker returns a different
	// number of results than texts sent.
	ErrBatchMismatch = errors.New("spellcheck: result count does not match batch")

	// ErrNoChecker is returned when a pass runs without a checker.
	ErrNoChecker = errors.New("spellcheck: no checker configured")
)
