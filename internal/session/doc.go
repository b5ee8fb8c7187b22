// Package session assembles a complete editing session from configuration.
//
// A Session owns the plugin registry, the editor with its standard
// interceptors, the spellcheck coordinator and, when a plugin directory is
// configured, the manifest watcher. Components are initialized in dependency
// order; a failure tears down what was already started.
//
// # Built-in plugins
//
// Every session registers, in order: core/paragraph, core/heading,
// core/blockquote, core/codeblock, core/list and core/image. Plugins passed
// with WithPlugins and manifests from the plugin directory follow, and
// override a built-in of the same name in place.
package session
