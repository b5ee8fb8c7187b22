package normalize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/tree"
)

// DefaultMaxPasses bounds the number of normalization passes per flush.
const DefaultMaxPasses = 32

// Components resolves a node type to its component entry and lists plugins.
type Components interface {
	Component(typ string) (plugin.ComponentEntry, bool)
	Plugins() []plugin.Definition
}

// Engine runs normalization passes.
type Engine struct {
	components Components
	maxPasses  int
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPasses sets the pass cap. Values below 1 keep the default.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine resolving components through c.
func NewEngine(c Components, opts ...Option) *Engine {
	e := &Engine{
		components: c,
		maxPasses:  DefaultMaxPasses,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("normalize")
	return e
}

// MaxPasses returns the pass cap.
func (e *Engine) MaxPasses() int {
	return e.maxPasses
}

// Run normalizes the root-level nodes named by dirty until a pass makes no
// change. dirty is consulted at the start of every pass so that roots
// created by a correction are picked up. A nil dirty normalizes the whole
// document. It returns the number of passes that changed the tree.
func (e *Engine) Run(ed tree.Editor, dirty func() []string) (int, error) {
	for pass := 0; pass < e.maxPasses; pass++ {
		changed, err := e.pass(ed, e.scope(ed, dirty))
		if err != nil {
			return pass, err
		}
		if !changed {
			return pass, nil
		}
	}
	e.logger.Error("normalization did not converge", zap.Int("passes", e.maxPasses))
	return e.maxPasses, ErrNotConverged
}

func (e *Engine) scope(ed tree.Editor, dirty func() []string) []string {
	if dirty != nil {
		return dirty()
	}
	var ids []string
	for _, r := range ed.Document().Roots() {
		ids = append(ids, r.Element().ID)
	}
	return ids
}

// pass visits every element under the given roots once, deepest first.
// Elements are addressed by id so that a correction does not invalidate the
// rest of the pass.
func (e *Engine) pass(ed tree.Editor, roots []string) (bool, error) {
	doc := ed.Document()
	var order []string
	for _, id := range roots {
		root, ok := doc.Find(id)
		if !ok {
			continue
		}
		order = appendPostOrder(order, root.Element())
	}

	plugins := e.components.Plugins()
	changed := false
	for _, id := range order {
		entry, ok := doc.Find(id)
		if !ok {
			continue
		}
		did, err := e.normalizeEntry(ed, entry, plugins)
		if err != nil {
			return changed, fmt.Errorf("normalizing %s: %w", id, err)
		}
		changed = changed || did
	}
	return changed, nil
}

func appendPostOrder(out []string, el *tree.Element) []string {
	for _, c := range el.Children {
		if child, ok := c.(*tree.Element); ok {
			out = appendPostOrder(out, child)
		}
	}
	return append(out, el.ID)
}

// normalizeEntry applies at most one correction to the element at entry.
func (e *Engine) normalizeEntry(ed tree.Editor, entry tree.Entry, plugins []plugin.Definition) (bool, error) {
	el := entry.Element()

	if did, err := ensureText(ed, entry); did || err != nil {
		return did, err
	}

	if c, ok := e.components.Component(el.Type); ok && c.Constraints.NormalizeNode != nil {
		did, err := c.Constraints.NormalizeNode(ed, entry)
		if did || err != nil {
			if did {
				e.logger.Debug("normalized", zap.String("type", el.Type), zap.String("id", el.ID))
			}
			return did, err
		}
	}

	for _, p := range plugins {
		if p.Events.OnNormalizeNode == nil {
			continue
		}
		did, err := p.Events.OnNormalizeNode(ed, entry)
		if did || err != nil {
			return did, err
		}
	}
	return false, nil
}

// ensureText gives a childless text-bearing element an empty text leaf so
// that it can hold a caret.
func ensureText(ed tree.Editor, entry tree.Entry) (bool, error) {
	el := entry.Element()
	if len(el.Children) > 0 || el.Class == tree.ClassBlock || el.Class == tree.ClassGeneric || el.Class == tree.ClassLeaf {
		return false, nil
	}
	return true, tree.InsertNodes(ed, entry.Path.Child(0), tree.NewText(""))
}
