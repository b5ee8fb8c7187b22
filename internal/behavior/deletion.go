package behavior

import (
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/tree"
)

// Deletion overrides backward and forward deletion at root-level node
// boundaries. Any case it does not recognise is deferred to the chain.
type Deletion struct {
	logger *zap.Logger
}

// NewDeletion creates the deletion interceptor.
func NewDeletion(logger *zap.Logger) *Deletion {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deletion{logger: logger.Named("deletion")}
}

// Name implements editor.Interceptor.
func (d *Deletion) Name() string { return "deletion" }

// Priority implements editor.Interceptor.
func (d *Deletion) Priority() int { return editor.PriorityBehavior }

// boundary describes a collapsed caret at an edge of its root-level node.
type boundary struct {
	caret tree.Point
	index int
	root  *tree.Element
}

// atRootEdge returns the boundary when the selection is a caret at the start
// (or end, when atEnd) of its root-level node.
func atRootEdge(doc *tree.Document, atEnd bool) (boundary, bool) {
	sel := doc.Selection
	if sel == nil || !sel.IsCollapsed() || len(sel.Anchor.Path) == 0 {
		return boundary{}, false
	}
	caret := sel.Anchor
	rootPath := caret.Path.Root()
	root, err := doc.Element(rootPath)
	if err != nil {
		return boundary{}, false
	}
	edge, ok := doc.Start(rootPath)
	if atEnd {
		edge, ok = doc.End(rootPath)
	}
	if !ok || !edge.Equal(caret) {
		return boundary{}, false
	}
	return boundary{caret: caret, index: rootPath[0], root: root}, true
}

func isBlank(el *tree.Element) bool {
	return tree.String(el) == ""
}

func rootClass(doc *tree.Document, idx int) (tree.Class, bool) {
	if idx < 0 || idx >= doc.Len() {
		return 0, false
	}
	el, ok := doc.Children[idx].(*tree.Element)
	if !ok {
		return 0, false
	}
	return el.Class, true
}

// DeleteBackward implements editor.BackwardDeleter.
func (d *Deletion) DeleteBackward(ed *editor.Editor, unit tree.Unit, next func() error) error {
	doc := ed.Document()
	b, ok := atRootEdge(doc, false)
	if !ok {
		return next()
	}

	// The very start of a block never merges out of it.
	if block, ok := doc.Above(b.caret.Path, func(el *tree.Element, _ tree.Path) bool {
		return el.Class == tree.ClassBlock
	}); ok {
		if first, ok := doc.Start(block.Path); ok && first.Equal(b.caret) {
			d.logger.Debug("backward delete suppressed at block start", zap.String("id", block.Element().ID))
			return nil
		}
	}

	n := doc.Len()
	if isBlank(b.root) && b.index == 0 && n > 1 {
		return tree.RemoveNodes(ed, tree.Path{b.index})
	}
	if isBlank(b.root) && b.index == n-1 && b.index > 0 {
		return tree.RemoveNodes(ed, tree.Path{b.index})
	}
	if class, ok := rootClass(doc, b.index-1); ok && class == tree.ClassBlock {
		return tree.RemoveNodes(ed, tree.Path{b.index - 1})
	}
	return next()
}

// DeleteForward implements editor.ForwardDeleter.
func (d *Deletion) DeleteForward(ed *editor.Editor, unit tree.Unit, next func() error) error {
	doc := ed.Document()
	b, ok := atRootEdge(doc, true)
	if !ok {
		return next()
	}

	if isBlank(b.root) && b.index == 0 && doc.Len() > 1 {
		return tree.RemoveNodes(ed, tree.Path{b.index})
	}
	if class, ok := rootClass(doc, b.index+1); ok && class == tree.ClassBlock {
		return tree.RemoveNodes(ed, tree.Path{b.index + 1})
	}
	return next()
}
