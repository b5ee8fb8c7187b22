package session

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/dshills/inkwell/internal/action"
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/watch"
	"github.com/dshills/inkwell/internal/plugins/blocks"
	"github.com/dshills/inkwell/internal/spellcheck"
	"github.com/dshills/inkwell/internal/tree"
)

// Session is one configured editing session.
type Session struct {
	cfg     *config.Config
	logger  *zap.Logger
	primary action.Modifier
	locale  string
	lang    language.Tag

	registry *plugin.Registry
	editor   *editor.Editor
	spell    *spellcheck.Coordinator
	watcher  *watch.Watcher

	mu     sync.Mutex
	closed bool
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	checker spellcheck.Checker
	plugins []plugin.Definition
	locale  string
	primary action.Modifier
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithChecker sets the spellchecker, replacing a configured dictionary.
func WithChecker(c spellcheck.Checker) Option {
	return func(o *options) {
		o.checker = c
	}
}

// WithPlugins registers extra plugins after the built-ins.
func WithPlugins(defs ...plugin.Definition) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, defs...)
	}
}

// WithLocale sets the environment locale used when the configuration names
// no language. It defaults to $LC_ALL, then $LANG.
func WithLocale(locale string) Option {
	return func(o *options) {
		o.locale = locale
	}
}

// WithPrimaryModifier sets the modifier "mod" resolves to in hotkeys.
func WithPrimaryModifier(m action.Modifier) Option {
	return func(o *options) {
		o.primary = m
	}
}

// New creates a session from cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{
		logger:  zap.NewNop(),
		locale:  envLocale(),
		primary: action.PrimaryModifier(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		cfg:     cfg,
		logger:  o.logger,
		primary: o.primary,
		locale:  o.locale,
	}
	b := &bootstrapper{s: s, opts: o}
	if err := b.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

func envLocale() string {
	if v := os.Getenv("LC_ALL"); v != "" {
		return v
	}
	return os.Getenv("LANG")
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Editor returns the session editor.
func (s *Session) Editor() *editor.Editor { return s.editor }

// Registry returns the plugin registry.
func (s *Session) Registry() *plugin.Registry { return s.registry }

// Spellcheck returns the coordinator, or nil when spellcheck is off.
func (s *Session) Spellcheck() *spellcheck.Coordinator { return s.spell }

// Language returns the resolved session language.
func (s *Session) Language() language.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Open decodes a persisted node list and loads it. The session language is
// resolved again with the document's element language.
func (s *Session) Open(data []byte) error {
	nodes, err := tree.UnmarshalNodes(data)
	if err != nil {
		return err
	}
	if err := s.editor.Load(nodes); err != nil {
		return err
	}

	var element string
	s.editor.Read(func(doc *tree.Document) {
		element = spellcheck.ElementLanguage(doc)
	})
	s.mu.Lock()
	s.lang = spellcheck.ResolveLanguage(s.cfg.Spellcheck.Language, element, s.locale)
	s.mu.Unlock()
	return nil
}

// Marshal encodes the current document.
func (s *Session) Marshal() ([]byte, error) {
	return tree.MarshalNodes(s.editor.Snapshot())
}

// Actions resolves every action against the current selection.
func (s *Session) Actions() []action.Item {
	return action.Available(s.editor)
}

// Keymap builds a keymap from the currently registered actions.
func (s *Session) Keymap() *action.Keymap {
	return action.NewKeymap(s.registry.Actions(), s.primary, s.logger)
}

// Dispatch runs the named action.
func (s *Session) Dispatch(name string, args ...any) error {
	return action.DispatchName(s.editor, name, args...)
}

// HandleKey dispatches the action bound to chord.
func (s *Session) HandleKey(chord string, args ...any) error {
	h, err := action.ParseHotkey(chord)
	if err != nil {
		return err
	}
	a, ok := s.Keymap().Lookup(h)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoBinding, chord)
	}
	return action.Dispatch(s.editor, a, args...)
}

// InsertResource converts res with the first plugin that consumes it and
// inserts the result after the current block.
func (s *Session) InsertResource(ctx context.Context, res plugin.Resource) error {
	nodes, err := s.registry.Consume(ctx, res)
	if err != nil {
		return err
	}
	return s.editor.Transact(func() error {
		for _, n := range nodes {
			switch v := n.(type) {
			case *tree.Element:
				if err := blocks.Insert(s.editor, v); err != nil {
					return err
				}
			case *tree.Text:
				if err := tree.InsertText(s.editor, v.Text); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Check runs a spellcheck pass now.
func (s *Session) Check(ctx context.Context) error {
	if s.spell == nil {
		return ErrSpellcheckDisabled
	}
	return s.spell.Flush(ctx)
}

// Findings returns the spelling findings of every root-level node that has
// any, keyed by node id.
func (s *Session) Findings() map[string][]spellcheck.Finding {
	out := make(map[string][]spellcheck.Finding)
	if s.spell == nil {
		return out
	}
	table := s.spell.Table()
	for _, id := range table.IDs() {
		if e, ok := table.Get(id); ok && len(e.Spelling) > 0 {
			out[id] = e.Spelling
		}
	}
	return out
}

// Close stops background work.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.spell != nil {
		s.spell.Close()
	}
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
