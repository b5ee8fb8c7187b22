package tree

import "fmt"

// Class is the semantic taxonomy tag of a node. It governs traversal, editing
// and rendering rules. The set is closed.
type Class uint8

const (
	// ClassGeneric is an element with no special editing rules.
	ClassGeneric Class = iota
	// ClassText is a plain text run.
	ClassText
	// ClassTextblock is an element whose children are text and inline nodes.
	ClassTextblock
	// ClassBlock is a structural element containing other elements.
	ClassBlock
	// ClassVoid is an element with no editable content.
	ClassVoid
	// ClassInline is an element that flows within text.
	ClassInline
	// ClassLeaf is a terminal element with no children of its own.
	ClassLeaf
)

var classNames = [...]string{
	ClassGeneric:   "generic",
	ClassText:      "text",
	ClassTextblock: "textblock",
	ClassBlock:     "block",
	ClassVoid:      "void",
	ClassInline:    "inline",
	ClassLeaf:      "leaf",
}

// String returns the taxonomy name of the class.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// ParseClass parses a taxonomy name. An empty string is ClassGeneric.
func ParseClass(s string) (Class, error) {
	if s == "" {
		return ClassGeneric, nil
	}
	for i, name := range classNames {
		if name == s {
			return Class(i), nil
		}
	}
	return ClassGeneric, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// IsHeavy reports whether nodes of this class are structural units that must
// not be nested inside another composite's text positions.
func (c Class) IsHeavy() bool {
	return c == ClassBlock || c == ClassTextblock
}

// IsStructural reports whether whole-node deletion replaces merging for
// nodes of this class.
func (c Class) IsStructural() bool {
	return c == ClassBlock || c == ClassVoid
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	if int(c) >= len(classNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClass, uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	parsed, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
