// Package behavior provides the document-level editing policies layered on
// the tree's default commands, as editor interceptors.
//
// Deletion replaces merge-on-delete with whole-node deletion next to
// structural blocks, where a generic merge would corrupt their shape.
// Breaks enforces the AllowBreak and AllowSoftBreak constraints of the
// component at the caret. PluginEvents forwards text insertion to the
// OnInsertText hooks of registered plugins.
package behavior
