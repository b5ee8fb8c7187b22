package manifest

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/normalize"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/script"
	"github.com/dshills/inkwell/internal/plugin/security"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/tree"
)

// Plugin is a built manifest: the definition to register and the script
// state backing its handlers.
type Plugin struct {
	Manifest   *Manifest
	Definition plugin.Definition

	// Script is nil when the manifest has no script.
	Script *script.State
}

// Close releases the script state.
func (p *Plugin) Close() error {
	if p.Script == nil {
		return nil
	}
	return p.Script.Close()
}

// Option configures Build.
type Option func(*builder)

type builder struct {
	logger  *zap.Logger
	timeout time.Duration
}

// WithLogger sets the logger handed to scripts.
func WithLogger(l *zap.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithScriptTimeout bounds each script call.
func WithScriptTimeout(d time.Duration) Option {
	return func(b *builder) {
		b.timeout = d
	}
}

// Load reads, validates and builds the manifest at path.
func Load(path string, opts ...Option) (*Plugin, error) {
	m, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := m.Build(opts...)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return p, nil
}

// Build turns a validated manifest into a plugin definition.
func (m *Manifest) Build(opts ...Option) (*Plugin, error) {
	b := builder{logger: zap.NewNop(), timeout: script.DefaultTimeout}
	for _, opt := range opts {
		opt(&b)
	}

	class, _ := tree.ParseClass(m.Class)
	component := m.Component.entry()
	switch m.Shape {
	case ShapeComposite:
		demoteClass, _ := tree.ParseClass(m.Demote.Class)
		component.Constraints.NormalizeNode = normalize.Composite(component.Children, normalize.Demotion{
			Type:  m.Demote.Type,
			Class: demoteClass,
		})
	case ShapeRepeated:
		component.Constraints.NormalizeNode = normalize.Repeated(component.Children[0])
	}

	st, err := m.loadScript(b)
	if err != nil {
		return nil, err
	}
	out := &Plugin{Manifest: m, Script: st}

	def := plugin.Definition{
		Name:      m.Name,
		Class:     class,
		Component: component,
		Options:   maps.Clone(m.Options),
	}
	for _, a := range m.Actions {
		act := plugin.Action{
			Title:       a.Title,
			Description: a.Description,
			Hotkey:      a.Hotkey,
			Tool:        plugin.Tool{Icon: a.Icon, Label: a.Label},
		}
		if a.Insert {
			act.Handler = m.insert
			act.Visibility = m.insertVisibility
		}
		if a.Handler != "" {
			if !st.HasFunction(a.Handler) {
				_ = out.Close()
				return nil, fmt.Errorf("action %q: %w: %s", a.Title, script.ErrNoFunction, a.Handler)
			}
			act.Handler = st.Handler(a.Handler)
		}
		if a.Visibility != "" {
			if !st.HasFunction(a.Visibility) {
				_ = out.Close()
				return nil, fmt.Errorf("action %q: %w: %s", a.Title, script.ErrNoFunction, a.Visibility)
			}
			act.Visibility = st.Visibility(a.Visibility)
		}
		def.Actions = append(def.Actions, act)
	}
	out.Definition = def
	return out, nil
}

func (m *Manifest) loadScript(b builder) (*script.State, error) {
	src := m.Script
	if m.ScriptFile != "" {
		data, err := os.ReadFile(filepath.Join(m.dir, m.ScriptFile))
		if err != nil {
			return nil, fmt.Errorf("reading script: %w", err)
		}
		src = string(data)
	}
	if src == "" {
		return nil, nil
	}
	caps := security.FullSet()
	if len(m.Capabilities) > 0 {
		var err error
		if caps, err = security.ParseSet(m.Capabilities); err != nil {
			return nil, err
		}
	}
	return script.New(src,
		script.WithName(m.Name),
		script.WithLogger(b.logger),
		script.WithTimeout(b.timeout),
		script.WithCapabilities(caps),
	)
}

func (c Component) entry() plugin.ComponentEntry {
	class, _ := tree.ParseClass(c.Class)
	e := plugin.ComponentEntry{
		Type:        c.Type,
		Class:       class,
		Placeholder: c.Placeholder,
		Constraints: plugin.Constraints{
			AllowBreak:     c.AllowBreak,
			AllowSoftBreak: c.AllowSoftBreak,
		},
	}
	for _, child := range c.Children {
		e.Children = append(e.Children, child.entry())
	}
	return e
}

// Template returns an empty node of the manifest's type with one empty
// child per declared child component.
func (m *Manifest) Template() *tree.Element {
	class, _ := tree.ParseClass(m.Class)
	el := tree.NewElement(m.Name, class)
	if len(m.Properties) > 0 {
		el.Properties = maps.Clone(m.Properties)
	}
	el.Children = templateChildren(m.Name, m.Component.Children, m.Component.Placeholder)
	return el
}

func templateChildren(parent string, children []Component, placeholder string) []tree.Node {
	if len(children) == 0 {
		return []tree.Node{&tree.Text{Placeholder: placeholder}}
	}
	out := make([]tree.Node, 0, len(children))
	for _, c := range children {
		class, _ := tree.ParseClass(c.Class)
		typ := plugin.ChildType(parent, c.Type)
		out = append(out, &tree.Element{
			Type:     typ,
			Class:    class,
			Children: templateChildren(typ, c.Children, c.Placeholder),
		})
	}
	return out
}

func (m *Manifest) insert(ctx *plugin.Context) (bool, error) {
	return true, blocks.Insert(ctx.Editor, m.Template())
}

func (m *Manifest) insertVisibility(_, root *tree.Element) plugin.Visibility {
	return plugin.Visibility{
		Visible: true,
		Enabled: root == nil || root.Type != m.Name,
		Active:  root != nil && root.Type == m.Name,
	}
}
