// Package script runs plugin action handlers and visibility functions
// written in Lua.
//
// A script is a Lua chunk that defines global functions. Handlers receive a
// context table and may edit the document through the global ed table:
//
//	function wrap(ctx)
//	  ed.insert_text(ctx.options.prefix or "> ")
//	  return true
//	end
//
//	function wrap_state(el, root)
//	  return {visible = true, enabled = root ~= nil, active = false}
//	end
//
// # Editor API
//
// The ed table is only usable while a handler runs:
//
//   - ed.insert_text(s) inserts s at the caret
//   - ed.set_property(key, value) sets a property on the current block; nil
//     removes it
//   - ed.text() returns the plain text of the current block
//   - ed.type() returns the node type of the current block, or nil
//
// Each function needs a capability: insert_text and set_property need
// document.write, text and type need document.read, and print needs log. A
// call without its capability raises a Lua error. See WithCapabilities.
//
// # Sandbox
//
// Only the base, table, string and math libraries are opened. File loading
// and require are removed, and every call runs under a timeout.
package script
