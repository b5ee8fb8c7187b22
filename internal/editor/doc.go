// Package editor implements the editing session core: it owns the document,
// routes every operation through normalization, and composes behaviour
// interceptors around the default editing commands.
//
// Interceptors replace the practice of overwriting an editor's methods. Each
// one has a name and a priority and implements any of the capability
// interfaces (BackwardDeleter, ForwardDeleter, Breaker, SoftBreaker,
// TextInserter, ChangeObserver). For a command, interceptors run from highest
// to lowest priority; each may handle the command itself or call next to
// defer to the rest of the chain, which ends in the tree package's default.
//
// All mutation happens inside Transact, which serializes access, normalizes
// the root-level nodes touched by the batch and then notifies observers:
//
//	err := ed.Transact(func() error {
//	    return tree.InsertNodes(ed, tree.Path{0}, para)
//	})
//
// Interceptors and observers run inside the transaction and must not call
// Transact or any command method.
package editor
