package spellcheck

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/tree"
)

// DefaultDebounce is the quiet period before a pass runs.
const DefaultDebounce = 500 * time.Millisecond

// Checker checks a batch of plain texts and returns one finding list per
// text, in order.
type Checker func(ctx context.Context, texts []string) ([][]Finding, error)

// Coordinator runs debounced spellcheck passes for one editor.
type Coordinator struct {
	ed      *editor.Editor
	checker Checker
	table   *Table
	delay   time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	idle     *sync.Cond
	timer    *time.Timer
	seq      uint64
	inFlight bool
	rerun    bool
	closed   bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTable shares an existing result table.
func WithTable(t *Table) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.table = t
		}
	}
}

// New creates a coordinator for ed. A nil checker disables checking; the
// coordinator still observes changes but never schedules a pass.
func New(ed *editor.Editor, checker Checker, opts ...Option) *Coordinator {
	c := &Coordinator{
		ed:      ed,
		checker: checker,
		table:   NewTable(),
		delay:   DefaultDebounce,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("spellcheck")
	c.idle = sync.NewCond(&c.mu)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Name implements editor.Interceptor.
func (c *Coordinator) Name() string { return "spellcheck" }

// Priority implements editor.Interceptor.
func (c *Coordinator) Priority() int { return editor.PriorityObserver }

// Table returns the result table.
func (c *Coordinator) Table() *Table { return c.table }

// OnChange implements editor.ChangeObserver. Selection-only batches are
// ignored so that the refresh issued after a merge does not re-arm the timer.
func (c *Coordinator) OnChange(_ *editor.Editor, ops []tree.Operation) {
	if c.checker == nil {
		return
	}
	for _, op := range ops {
		if !op.IsSelectionOnly() {
			c.Schedule()
			return
		}
	}
}

// Schedule arms the debounce timer, superseding any pending firing.
func (c *Coordinator) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.checker == nil {
		return
	}
	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.fire(seq)
	})
}

// fire runs a pass unless it was superseded. A firing during an in-flight
// call is folded into a single rerun.
func (c *Coordinator) fire(seq uint64) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		c.rerun = true
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()
	c.drain()
}

// drain runs passes until no rerun is pending. The caller holds the
// in-flight flag.
func (c *Coordinator) drain() {
	for {
		if err := c.Run(c.ctx); err != nil {
			c.logger.Debug("pass discarded", zap.Error(err))
		}
		if !c.release() {
			return
		}
	}
}

// release clears the in-flight flag, or keeps it and reports true when a
// rerun is pending.
func (c *Coordinator) release() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rerun && !c.closed {
		c.rerun = false
		return true
	}
	c.rerun = false
	c.inFlight = false
	c.idle.Broadcast()
	return false
}

// Flush cancels any pending timer and runs a pass now. It waits for an
// in-flight pass to land first, so at most one checker call runs at a time.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	for c.inFlight {
		c.idle.Wait()
	}
	c.inFlight = true
	c.mu.Unlock()

	err := c.Run(ctx)
	if c.release() {
		go c.drain()
	}
	return err
}

// Close stops the timer and cancels an in-flight checker call.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cancel()
}

type pending struct {
	id   string
	text string
}

// Run performs one pass: collect changed root nodes, check them in one batch
// and merge the results against the current document. Callers outside the
// coordinator should use Flush.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.checker == nil {
		return ErrNoChecker
	}

	var queue []pending
	cleared := false
	c.ed.Read(func(doc *tree.Document) {
		for _, root := range doc.Roots() {
			el := root.Element()
			if el == nil || el.ID == "" {
				continue
			}
			text := tree.String(el)
			if prev, ok := c.table.Get(el.ID); ok && prev.Text == text && prev.Spelling != nil {
				continue
			}
			if text == "" {
				c.table.Set(el.ID, Entry{Text: "", Spelling: []Finding{}})
				cleared = true
				continue
			}
			queue = append(queue, pending{id: el.ID, text: text})
		}
	})
	if len(queue) == 0 {
		return c.ed.Transact(func() error {
			doc := c.ed.Document()
			if pruned := c.table.Retain(liveIDs(doc)); pruned == 0 && !cleared {
				return nil
			}
			return c.refresh(doc)
		})
	}

	texts := make([]string, len(queue))
	for i, p := range queue {
		texts[i] = p.text
	}
	results, err := c.checker(ctx, texts)
	if err != nil {
		return err
	}
	if len(results) != len(queue) {
		return ErrBatchMismatch
	}

	return c.ed.Transact(func() error {
		doc := c.ed.Document()
		current := make(map[string]string, doc.Len())
		for _, root := range doc.Roots() {
			if el := root.Element(); el != nil && el.ID != "" {
				current[el.ID] = tree.String(el)
			}
		}

		merged := 0
		for i, p := range queue {
			text, ok := current[p.id]
			if !ok || text != p.text {
				continue
			}
			findings := results[i]
			if findings == nil {
				findings = []Finding{}
			}
			c.table.Set(p.id, Entry{Text: p.text, Spelling: findings})
			merged++
		}
		c.table.Retain(liveIDs(doc))
		c.logger.Debug("merged",
			zap.Int("checked", len(queue)),
			zap.Int("merged", merged),
		)

		return c.refresh(doc)
	})
}

// liveIDs returns the ids of the document's root elements.
func liveIDs(doc *tree.Document) map[string]struct{} {
	live := make(map[string]struct{}, doc.Len())
	for _, root := range doc.Roots() {
		if el := root.Element(); el != nil && el.ID != "" {
			live[el.ID] = struct{}{}
		}
	}
	return live
}

// refresh re-selects the current selection, or the document start, so that
// observers re-render decorations.
func (c *Coordinator) refresh(doc *tree.Document) error {
	if doc.Selection != nil {
		return tree.Select(c.ed, *doc.Selection)
	}
	if start, ok := doc.Start(tree.Path{0}); ok {
		return tree.Select(c.ed, tree.Collapsed(start))
	}
	return nil
}
