// Package tree provides the document tree primitive the editing core is built
// on: element and text nodes, path addressing, points and ranges, atomic
// operations and the transforms that produce them.
//
// The tree is deliberately small. It knows nothing about plugins; higher
// layers attach meaning to an element through its Type and Class.
//
// Addressing:
//
//   - Path: index of each ancestor from the root, e.g. [2 0 1]
//   - Point: a Path to a text leaf plus a byte offset into its text
//   - Range: an anchor and a focus Point; collapsed when both are equal
//
// Mutation:
//
// Every change to a Document is expressed as an Operation and applied with
// Apply. Transforms (InsertNodes, RemoveNodes, SetNodes, ...) never touch the
// document directly; they build operations and hand them to an Editor, which
// lets the editing session observe, normalize and broadcast every edit.
//
// Thread Safety:
//
// A Document is not safe for concurrent use. The editing session serializes
// all access.
package tree
