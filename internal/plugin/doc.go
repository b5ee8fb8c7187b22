// Package plugin defines the plugin authoring surface and the registry that
// holds plugin definitions for an editing session.
//
// A plugin is a Definition: a unique namespaced name, a taxonomy class, an
// optional resource consumer, event hooks, an ordered list of actions, and a
// component tree describing which node types the plugin owns and which
// constraints apply to them.
//
// # Registration
//
// Register is a pure function over a plugin list. A plugin whose name is
// already present replaces the existing entry at its original position;
// otherwise it is appended. Overrides are logged, never rejected:
//
//	plugins = plugin.Register(plugins, blockquote.Plugin(), logger)
//
// The Registry type holds the list for one session and keeps the derived
// views current:
//
//   - Actions: every plugin action, named "<plugin>/<index>"
//   - Components: node type -> ComponentEntry, where the root entry is keyed
//     by the plugin name and each child entry by "<parent key>/<child type>"
//
// # Constraints
//
// A ComponentEntry carries Constraints. AllowBreak and AllowSoftBreak default
// to true; NormalizeNode, when set, is called by the normalization engine for
// every element of that type and reports whether it changed the tree.
package plugin
