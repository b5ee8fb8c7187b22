package behavior

import (
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/tree"
)

// Breaks enforces the break constraints of the components around the caret.
// A hard break where only soft breaks are allowed becomes a soft break; a
// break no ancestor allows leaves the document unchanged.
type Breaks struct {
	logger *zap.Logger
}

// NewBreaks creates the break constraint interceptor.
func NewBreaks(logger *zap.Logger) *Breaks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaks{logger: logger.Named("breaks")}
}

// Name implements editor.Interceptor.
func (b *Breaks) Name() string { return "breaks" }

// Priority implements editor.Interceptor.
func (b *Breaks) Priority() int { return editor.PriorityConstraint }

// constraintsAt folds the constraints of every ancestor of the selection.
func constraintsAt(ed *editor.Editor) (allowBreak, allowSoft bool, owner string) {
	allowBreak, allowSoft = true, true
	doc := ed.Document()
	sel := doc.Selection
	if sel == nil {
		return
	}
	reg := ed.Registry()
	for _, p := range []tree.Path{sel.Anchor.Path, sel.Focus.Path} {
		doc.Above(p, func(el *tree.Element, _ tree.Path) bool {
			c, ok := reg.Component(el.Type)
			if !ok {
				return false
			}
			if !c.Constraints.BreakAllowed() {
				allowBreak = false
				owner = el.Type
			}
			if !c.Constraints.SoftBreakAllowed() {
				allowSoft = false
				owner = el.Type
			}
			return false
		})
	}
	return
}

// InsertBreak implements editor.Breaker.
func (b *Breaks) InsertBreak(ed *editor.Editor, next func() error) error {
	allowBreak, allowSoft, owner := constraintsAt(ed)
	if allowBreak {
		return next()
	}
	if allowSoft {
		return tree.InsertSoftBreak(ed)
	}
	b.logger.Debug("break rejected", zap.String("type", owner))
	return nil
}

// InsertSoftBreak implements editor.SoftBreaker.
func (b *Breaks) InsertSoftBreak(ed *editor.Editor, next func() error) error {
	if _, allowSoft, owner := constraintsAt(ed); !allowSoft {
		b.logger.Debug("soft break rejected", zap.String("type", owner))
		return nil
	}
	return next()
}
