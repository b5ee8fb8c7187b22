package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/inkwell/internal/action"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/security"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/tree"
)

// Shapes a manifest component can enforce on its children.
const (
	ShapeNone      = ""
	ShapeComposite = "composite"
	ShapeRepeated  = "repeated"
)

// Extensions recognised by LoadDir.
var Extensions = []string{".yaml", ".yml"}

// Manifest is the YAML form of a plugin definition.
type Manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Class of the root node. Defaults to block with children, textblock
	// without.
	Class string `yaml:"class"`

	// Shape selects the normalizer enforced on the children.
	Shape string `yaml:"shape"`

	// Demote is the type and class excess composite children become.
	// Defaults to a paragraph.
	Demote *Demote `yaml:"demote"`

	Component Component `yaml:"component"`

	// Properties are set on nodes created by insert actions.
	Properties map[string]any `yaml:"properties"`

	// Options are passed to every action handler.
	Options map[string]any `yaml:"options"`

	// Script is inline Lua source. ScriptFile is a path relative to the
	// manifest. At most one may be set.
	Script     string `yaml:"script"`
	ScriptFile string `yaml:"script_file"`

	// Capabilities limit what the script may do. Empty grants all.
	Capabilities []string `yaml:"capabilities"`

	Actions []Action `yaml:"actions"`

	// dir is the directory holding the manifest file.
	dir string
}

// Demote names the replacement type and class for demoted children.
type Demote struct {
	Type  string `yaml:"type"`
	Class string `yaml:"class"`
}

// Component is the YAML form of a component entry.
type Component struct {
	Type           string      `yaml:"type"`
	Class          string      `yaml:"class"`
	Placeholder    string      `yaml:"placeholder"`
	AllowBreak     *bool       `yaml:"allow_break"`
	AllowSoftBreak *bool       `yaml:"allow_soft_break"`
	Children       []Component `yaml:"children"`
}

// Action is the YAML form of a plugin action. Handler names a script
// function; Insert creates a new node of the plugin's type instead.
type Action struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Hotkey      string `yaml:"hotkey"`
	Icon        string `yaml:"icon"`
	Label       string `yaml:"label"`
	Handler     string `yaml:"handler"`
	Visibility  string `yaml:"visibility"`
	Insert      bool   `yaml:"insert"`
}

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: ErrEmpty}
		}
		return nil, &ParseError{Err: err}
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &m, nil
}

// LoadFile reads and parses the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	m, err := Parse(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// IsManifest reports whether path has a manifest extension.
func IsManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Files returns the manifest files directly inside dir, sorted by name.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsManifest(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (m *Manifest) applyDefaults() {
	if m.Class == "" {
		if len(m.Component.Children) > 0 {
			m.Class = tree.ClassBlock.String()
		} else {
			m.Class = tree.ClassTextblock.String()
		}
	}
	if m.Shape == ShapeComposite && m.Demote == nil {
		m.Demote = &Demote{Type: paragraph.Name, Class: tree.ClassTextblock.String()}
	}
}

// Validate checks the manifest for structural errors.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if err := plugin.ValidateName(m.Name); err != nil {
		return err
	}
	if _, err := tree.ParseClass(m.Class); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidClass, m.Class)
	}

	switch m.Shape {
	case ShapeNone:
	case ShapeComposite:
		if len(m.Component.Children) == 0 {
			return fmt.Errorf("%w: composite needs children", ErrInvalidShape)
		}
		if m.Demote.Type == "" {
			return fmt.Errorf("%w: demote type is required", ErrInvalidShape)
		}
		if _, err := tree.ParseClass(m.Demote.Class); err != nil {
			return fmt.Errorf("%w: demote %q", ErrInvalidClass, m.Demote.Class)
		}
	case ShapeRepeated:
		if len(m.Component.Children) != 1 {
			return fmt.Errorf("%w: repeated needs exactly one child", ErrInvalidShape)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidShape, m.Shape)
	}

	if err := validateChildren(m.Component.Children); err != nil {
		return err
	}

	if m.Script != "" && m.ScriptFile != "" {
		return ErrBothScripts
	}
	if m.ScriptFile != "" && filepath.Ext(m.ScriptFile) != ".lua" {
		return fmt.Errorf("%w: %s", ErrInvalidScript, m.ScriptFile)
	}
	hasScript := m.Script != "" || m.ScriptFile != ""
	if _, err := security.ParseSet(m.Capabilities); err != nil {
		return err
	}

	for i, a := range m.Actions {
		if a.Title == "" {
			return fmt.Errorf("action %d: %w", i, ErrMissingTitle)
		}
		if (a.Handler == "") == !a.Insert {
			return fmt.Errorf("action %q: %w", a.Title, ErrInvalidAction)
		}
		if (a.Handler != "" || a.Visibility != "") && !hasScript {
			return fmt.Errorf("action %q: %w", a.Title, ErrNoScript)
		}
		if a.Hotkey != "" {
			if _, err := action.ParseHotkey(a.Hotkey); err != nil {
				return fmt.Errorf("action %q: %w", a.Title, err)
			}
		}
	}
	return nil
}

func validateChildren(children []Component) error {
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if c.Type == "" || strings.Contains(c.Type, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidChild, c.Type)
		}
		if seen[c.Type] {
			return fmt.Errorf("%w: %q", ErrDuplicateChild, c.Type)
		}
		seen[c.Type] = true
		if _, err := tree.ParseClass(c.Class); err != nil {
			return fmt.Errorf("%w: child %q class %q", ErrInvalidClass, c.Type, c.Class)
		}
		if err := validateChildren(c.Children); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns the directory the manifest was loaded from, or "".
func (m *Manifest) Dir() string {
	return m.dir
}
