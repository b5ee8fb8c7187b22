// Package manifest loads plugin definitions from YAML files.
//
// A manifest declares a node type, the shape of its children and its
// actions:
//
//	name: acme/callout
//	shape: composite
//	component:
//	  children:
//	    - type: title
//	      class: text
//	      allow_break: false
//	    - type: body
//	      class: text
//	actions:
//	  - title: Callout
//	    hotkey: mod+shift+k
//	    insert: true
//
// # Shapes
//
// A composite component keeps exactly one child per declared entry, in
// order. A repeated component holds any number of children of its single
// declared entry. Without a shape the children are not normalized.
//
// # Actions
//
// An insert action adds an empty node of the manifest's type. Any other
// action names a function in the manifest's Lua script; see package script.
//
// # Capabilities
//
// A scripted manifest may list the capabilities its script needs:
//
//	capabilities: [document.read, log]
//
// Calls outside the list fail. An empty list grants every capability.
package manifest
