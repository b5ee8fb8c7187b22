// Package action resolves and dispatches plugin actions.
//
// # Visibility
//
// ResolveVisibility evaluates an action's visibility function against the
// lowest element at the current selection and its root-level ancestor.
// Actions without a visibility function are hidden, disabled and inactive;
// they can still be dispatched.
//
// # Dispatch
//
// Dispatch runs an action's handler inside an editor transaction with the
// owning plugin's options and any call-site arguments. The handler's boolean
// result is ignored. Handler errors are returned and panics are not
// recovered.
//
// # Hotkeys
//
// Hotkeys are written as modifier chords such as "mod+shift+2". The "mod"
// modifier is the platform's primary modifier: Meta on macOS, Ctrl
// elsewhere. A Keymap binds parsed chords to resolved actions.
package action
