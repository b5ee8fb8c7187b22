package editor

import (
	"sort"
	"sync"

	"github.com/dshills/inkwell/internal/tree"
)

// Standard interceptor priorities.
const (
	PriorityConstraint = 900 // Reject edits a component forbids
	PriorityBehavior   = 500 // Document-level editing policies
	PriorityPlugin     = 100 // Plugin event hooks
	PriorityObserver   = 0   // Change observers
)

// Interceptor is the base interface for editing interceptors.
type Interceptor interface {
	// Name returns a unique identifier; registering the same name replaces.
	Name() string

	// Priority orders the chain; higher runs first.
	Priority() int
}

// BackwardDeleter intercepts backward deletion.
type BackwardDeleter interface {
	Interceptor
	DeleteBackward(ed *Editor, unit tree.Unit, next func() error) error
}

// ForwardDeleter intercepts forward deletion.
type ForwardDeleter interface {
	Interceptor
	DeleteForward(ed *Editor, unit tree.Unit, next func() error) error
}

// Breaker intercepts line breaks.
type Breaker interface {
	Interceptor
	InsertBreak(ed *Editor, next func() error) error
}

// SoftBreaker intercepts soft line breaks.
type SoftBreaker interface {
	Interceptor
	InsertSoftBreak(ed *Editor, next func() error) error
}

// TextInserter intercepts text insertion.
type TextInserter interface {
	Interceptor
	InsertText(ed *Editor, text string, next func() error) error
}

// ChangeObserver is notified after every flushed batch of operations.
type ChangeObserver interface {
	Interceptor
	OnChange(ed *Editor, ops []tree.Operation)
}

// Chain holds interceptors ordered by priority.
type Chain struct {
	mu           sync.RWMutex
	interceptors []Interceptor
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Register adds an interceptor, replacing one with the same name.
func (c *Chain) Register(i Interceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for idx, existing := range c.interceptors {
		if existing.Name() == i.Name() {
			c.interceptors[idx] = i
			c.sort()
			return
		}
	}
	c.interceptors = append(c.interceptors, i)
	c.sort()
}

func (c *Chain) sort() {
	sort.SliceStable(c.interceptors, func(a, b int) bool {
		return c.interceptors[a].Priority() > c.interceptors[b].Priority()
	})
}

// Unregister removes an interceptor by name.
func (c *Chain) Unregister(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.interceptors {
		if existing.Name() == name {
			c.interceptors = append(c.interceptors[:i], c.interceptors[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the interceptor names in chain order.
func (c *Chain) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.interceptors))
	for i, in := range c.interceptors {
		names[i] = in.Name()
	}
	return names
}

func (c *Chain) snapshot() []Interceptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Interceptor, len(c.interceptors))
	copy(out, c.interceptors)
	return out
}

// run calls every interceptor of capability T in order, ending in last.
func run[T Interceptor](c *Chain, invoke func(T, func() error) error, last func() error) error {
	var list []T
	for _, in := range c.snapshot() {
		if t, ok := in.(T); ok {
			list = append(list, t)
		}
	}
	var call func(i int) error
	call = func(i int) error {
		if i == len(list) {
			return last()
		}
		return invoke(list[i], func() error { return call(i + 1) })
	}
	return call(0)
}

func (c *Chain) notify(ed *Editor, ops []tree.Operation) {
	for _, in := range c.snapshot() {
		if o, ok := in.(ChangeObserver); ok {
			o.OnChange(ed, ops)
		}
	}
}
