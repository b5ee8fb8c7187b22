package normalize

import "errors"

// ErrNotConverged is returned when normalization still changes the tree
// after the pass cap.
var ErrNotConverged = errors.New("normalize: did not converge")
