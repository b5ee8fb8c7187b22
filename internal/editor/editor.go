package editor

import (
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/normalize"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/tree"
)

// Editor is one editing session over a document.
type Editor struct {
	mu sync.Mutex

	doc      *tree.Document
	registry *plugin.Registry
	engine   *normalize.Engine
	chain    *Chain
	logger   *zap.Logger
	newID    func() string

	// Operations applied since the last flush and the root-level ids they
	// touched.
	ops   []tree.Operation
	dirty []string
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEngine sets the normalization engine.
func WithEngine(engine *normalize.Engine) Option {
	return func(e *Editor) {
		e.engine = engine
	}
}

// WithIDGenerator overrides element id generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Editor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithInterceptors registers interceptors at construction.
func WithInterceptors(in ...Interceptor) Option {
	return func(e *Editor) {
		for _, i := range in {
			e.chain.Register(i)
		}
	}
}

// New creates an editor over an empty document.
func New(registry *plugin.Registry, opts ...Option) *Editor {
	e := &Editor{
		doc:      tree.NewDocument(),
		registry: registry,
		chain:    NewChain(),
		logger:   zap.NewNop(),
		newID:    tree.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		e.engine = normalize.NewEngine(registry, normalize.WithLogger(e.logger))
	}
	e.logger = e.logger.Named("editor")
	return e
}

// Document implements tree.Editor. Callers outside a transaction must not
// hold on to the result.
func (e *Editor) Document() *tree.Document {
	return e.doc
}

// Registry returns the session's plugin registry.
func (e *Editor) Registry() *plugin.Registry {
	return e.registry
}

// Chain returns the interceptor chain.
func (e *Editor) Chain() *Chain {
	return e.chain
}

// NewID implements tree.Editor.
func (e *Editor) NewID() string {
	return e.newID()
}

// Apply implements tree.Editor. It must be called inside a transaction.
func (e *Editor) Apply(op tree.Operation) error {
	if err := tree.Apply(e.doc, op); err != nil {
		return err
	}
	e.ops = append(e.ops, op)
	e.markDirty(op)
	return nil
}

// markDirty records the root-level nodes touched by an applied operation.
func (e *Editor) markDirty(op tree.Operation) {
	if op.Kind == tree.OpSetSelection || len(op.Path) == 0 {
		return
	}
	idx := op.Path[0]
	switch {
	case op.Kind == tree.OpRemoveNode && len(op.Path) == 1:
		return
	case op.Kind == tree.OpMergeNode && len(op.Path) == 1:
		idx--
	case op.Kind == tree.OpSplitNode && len(op.Path) == 1:
		e.markRoot(idx + 1)
	}
	e.markRoot(idx)
}

func (e *Editor) markRoot(idx int) {
	if idx < 0 || idx >= len(e.doc.Children) {
		return
	}
	el, ok := e.doc.Children[idx].(*tree.Element)
	if !ok || slices.Contains(e.dirty, el.ID) {
		return
	}
	e.dirty = append(e.dirty, el.ID)
}

// takeDirty returns and clears the dirty root ids.
func (e *Editor) takeDirty() []string {
	d := e.dirty
	e.dirty = nil
	return d
}

// Transact runs fn with exclusive access to the document, then normalizes
// and notifies observers. The flush runs even when fn fails, since operations
// it applied are already part of the document.
func (e *Editor) Transact(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := fn()
	return errors.Join(err, e.flush())
}

func (e *Editor) flush() error {
	if len(e.ops) == 0 {
		return nil
	}
	var err error
	if len(e.dirty) > 0 {
		_, err = e.engine.Run(e, e.takeDirty)
	}
	e.dirty = nil
	ops := e.ops
	e.ops = nil
	e.logger.Debug("flush", zap.Int("operations", len(ops)))
	e.chain.notify(e, ops)
	return err
}

// Normalize runs normalization over the whole document.
func (e *Editor) Normalize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.engine.Run(e, nil)
	return errors.Join(err, e.flush())
}

// Load replaces the document content. Element ids present in nodes are kept;
// missing or duplicate ids are assigned.
func (e *Editor) Load(nodes []tree.Node) error {
	return e.Transact(func() error {
		for len(e.doc.Children) > 0 {
			if err := tree.RemoveNodes(e, tree.Path{len(e.doc.Children) - 1}); err != nil {
				return err
			}
		}
		if err := tree.InsertNodes(e, tree.Path{0}, nodes...); err != nil {
			return err
		}
		if start, ok := e.doc.Start(tree.Path{0}); ok {
			return tree.Select(e, tree.Collapsed(start))
		}
		return nil
	})
}

// Snapshot returns a deep copy of the root-level nodes.
func (e *Editor) Snapshot() []tree.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Nodes()
}

// Selection returns a copy of the selection, or nil.
func (e *Editor) Selection() *tree.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc.Selection == nil {
		return nil
	}
	r := e.doc.Selection.Clone()
	return &r
}

// Read calls fn with the document under the session lock. fn must not
// mutate the document.
func (e *Editor) Read(fn func(doc *tree.Document)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.doc)
}

// Select sets the selection.
func (e *Editor) Select(r tree.Range) error {
	return e.Transact(func() error {
		return tree.Select(e, r)
	})
}

// DeleteBackward deletes one unit before the caret through the chain.
func (e *Editor) DeleteBackward(unit tree.Unit) error {
	return e.Transact(func() error {
		return run(e.chain, func(d BackwardDeleter, next func() error) error {
			return d.DeleteBackward(e, unit, next)
		}, func() error {
			return tree.DeleteBackward(e, unit)
		})
	})
}

// DeleteForward deletes one unit after the caret through the chain.
func (e *Editor) DeleteForward(unit tree.Unit) error {
	return e.Transact(func() error {
		return run(e.chain, func(d ForwardDeleter, next func() error) error {
			return d.DeleteForward(e, unit, next)
		}, func() error {
			return tree.DeleteForward(e, unit)
		})
	})
}

// InsertBreak splits the block at the caret through the chain.
func (e *Editor) InsertBreak() error {
	return e.Transact(func() error {
		return run(e.chain, func(b Breaker, next func() error) error {
			return b.InsertBreak(e, next)
		}, func() error {
			return tree.SplitBlock(e)
		})
	})
}

// InsertSoftBreak inserts a newline at the caret through the chain.
func (e *Editor) InsertSoftBreak() error {
	return e.Transact(func() error {
		return run(e.chain, func(b SoftBreaker, next func() error) error {
			return b.InsertSoftBreak(e, next)
		}, func() error {
			return tree.InsertSoftBreak(e)
		})
	})
}

// InsertText inserts text at the caret through the chain.
func (e *Editor) InsertText(text string) error {
	return e.Transact(func() error {
		return run(e.chain, func(t TextInserter, next func() error) error {
			return t.InsertText(e, text, next)
		}, func() error {
			return tree.InsertText(e, text)
		})
	})
}
