// Package spellcheck coordinates a debounced, incremental spellcheck of the
// root-level nodes of a document.
//
// The Coordinator observes editor changes. Every batch that does more than
// move the selection re-arms a debounce timer; when it fires, the
// coordinator compares each root node's plain text with the text recorded
// for its id in the Table. Unchanged nodes keep their cached findings, nodes
// whose text became empty get an empty result, and every other node is sent
// to the external Checker in a single batch.
//
// Results are merged inside an editor transaction against the current
// document: a result is applied only if its node still has the text that was
// checked, and a batch whose length differs from the request is discarded
// whole. After a merge the coordinator re-selects the current selection so
// that observers re-render the derived decorations.
//
// Only one checker call is in flight at a time. A timer that fires during a
// call marks the coordinator dirty and the pass is repeated once the call
// returns.
package spellcheck
