// Package normalize keeps structural plugins in a valid shape after every
// edit.
//
// The Engine walks the element subtrees of dirty root-level nodes and calls
// the NormalizeNode constraint of each element's component, plus every
// plugin's OnNormalizeNode hook. A function reports whether it changed the
// tree; the engine repeats passes until one makes no change or MaxPasses is
// reached, in which case it returns ErrNotConverged.
//
// Composite and Repeated build NormalizeFuncs from a component's child shape.
package normalize
