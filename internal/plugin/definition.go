package plugin

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/inkwell/internal/tree"
)

// NormalizeFunc corrects the element at entry. It reports whether it changed
// the tree; the engine re-runs normalization until no function does.
type NormalizeFunc func(ed tree.Editor, entry tree.Entry) (bool, error)

// Constraints restrict editing inside a component.
type Constraints struct {
	// AllowBreak, when false, rejects line-split edits. Nil means true.
	AllowBreak *bool

	// AllowSoftBreak, when false, rejects soft breaks. Nil means true.
	AllowSoftBreak *bool

	// NormalizeNode restores the component's shape after an edit.
	NormalizeNode NormalizeFunc
}

// BreakAllowed reports whether line-split edits are accepted.
func (c Constraints) BreakAllowed() bool {
	return c.AllowBreak == nil || *c.AllowBreak
}

// SoftBreakAllowed reports whether soft breaks are accepted.
func (c Constraints) SoftBreakAllowed() bool {
	return c.AllowSoftBreak == nil || *c.AllowSoftBreak
}

// Bool returns a pointer to b, for filling optional constraint fields.
func Bool(b bool) *bool {
	return &b
}

// ComponentEntry describes how one node type renders and which constraints
// apply to it. Children describe the expected child shape by position.
type ComponentEntry struct {
	Type        string
	Class       tree.Class
	Placeholder string
	Constraints Constraints
	Children    []ComponentEntry
}

// Resource is an external input a plugin may turn into content, such as a
// pasted file or a dropped URL.
type Resource struct {
	Name string
	MIME string
	Data []byte
	URL  string
}

// Consumer turns external resources into insertable nodes.
type Consumer interface {
	// Consumes reports whether the consumer accepts res.
	Consumes(res Resource) bool

	// Consume converts res into nodes to insert.
	Consume(ctx context.Context, res Resource) ([]tree.Node, error)
}

// Events are optional hooks a plugin attaches to editing.
type Events struct {
	// OnInsertText intercepts text insertion. Call next to continue.
	OnInsertText func(ed tree.Editor, text string, next func() error) error

	// OnNormalizeNode runs for every element during normalization.
	OnNormalizeNode NormalizeFunc
}

// Definition is the contract a plugin implements.
type Definition struct {
	// Name is the unique key, "<prefix>/<name>".
	Name string

	// Class is inherited by the root component when it has none.
	Class tree.Class

	Consumer  Consumer
	Events    Events
	Actions   []Action
	Component ComponentEntry

	// Options are passed to every action handler of this plugin.
	Options map[string]any
}

// ValidateName checks that name is "<prefix>/<name>".
func ValidateName(name string) error {
	prefix, rest, ok := strings.Cut(name, "/")
	if !ok || prefix == "" || rest == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ChildType returns the node type of the child entry typ under parent.
func ChildType(parent, typ string) string {
	return parent + "/" + typ
}
