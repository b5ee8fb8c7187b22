package session

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/behavior"
	"github.com/dshills/inkwell/internal/editor"
	"github.com/dshills/inkwell/internal/normalize"
	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/manifest"
	"github.com/dshills/inkwell/internal/plugin/watch"
	"github.com/dshills/inkwell/internal/plugins/blockquote"
	"github.com/dshills/inkwell/internal/plugins/codeblock"
	"github.com/dshills/inkwell/internal/plugins/heading"
	"github.com/dshills/inkwell/internal/plugins/image"
	"github.com/dshills/inkwell/internal/plugins/list"
	"github.com/dshills/inkwell/internal/plugins/paragraph"
	"github.com/dshills/inkwell/internal/spellcheck"
)

// bootstrapper initializes components in dependency order and unwinds them
// on failure.
type bootstrapper struct {
	s         *Session
	opts      options
	initOrder []string
}

func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"registry", b.initRegistry},
		{"plugins", b.initPlugins},
		{"editor", b.initEditor},
		{"spellcheck", b.initSpellcheck},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "plugins":
			if b.s.watcher != nil {
				_ = b.s.watcher.Close()
				b.s.watcher = nil
			}
		case "spellcheck":
			if b.s.spell != nil {
				b.s.spell.Close()
				b.s.spell = nil
			}
		}
	}
}

// Builtins returns the built-in plugin definitions configured by cfg.
func Builtins(codeLanguage string, imageMaxBytes int) []plugin.Definition {
	return []plugin.Definition{
		paragraph.Plugin(),
		heading.Plugin(),
		blockquote.Plugin(),
		codeblock.Plugin(codeLanguage),
		list.Plugin(),
		image.Plugin(imageMaxBytes),
	}
}

func (b *bootstrapper) initRegistry() error {
	cfg := b.s.cfg
	defs := Builtins(cfg.Plugins.CodeLanguage, cfg.Plugins.ImageMaxBytes)
	defs = append(defs, b.opts.plugins...)
	b.s.registry = plugin.NewRegistry(b.s.logger, defs...)
	return nil
}

// initPlugins loads manifests from the plugin directory. A manifest that
// fails to load is logged and skipped.
func (b *bootstrapper) initPlugins() error {
	cfg := b.s.cfg.Plugins
	if cfg.Dir == "" {
		return nil
	}
	w, err := watch.New(cfg.Dir, b.s.registry,
		watch.WithLogger(b.s.logger),
		watch.WithBuildOptions(manifest.WithLogger(b.s.logger)),
	)
	if err != nil {
		return err
	}
	if err := w.LoadAll(); err != nil {
		b.s.logger.Warn("some plugins failed to load", zap.String("dir", cfg.Dir), zap.Error(err))
	}
	if cfg.Watch {
		if err := w.Start(); err != nil {
			_ = w.Close()
			return err
		}
	}
	b.s.watcher = w
	return nil
}

func (b *bootstrapper) initEditor() error {
	logger := b.s.logger
	engine := normalize.NewEngine(b.s.registry,
		normalize.WithMaxPasses(b.s.cfg.Normalize.MaxPasses),
		normalize.WithLogger(logger),
	)
	b.s.editor = editor.New(b.s.registry,
		editor.WithLogger(logger),
		editor.WithEngine(engine),
		editor.WithInterceptors(
			behavior.NewBreaks(logger),
			behavior.NewDeletion(logger),
			behavior.PluginEvents{},
		),
	)
	return nil
}

// initSpellcheck wires the coordinator when spellcheck is enabled and a
// checker is available: the one passed with WithChecker, or a dictionary
// loaded from the configured word list.
func (b *bootstrapper) initSpellcheck() error {
	cfg := b.s.cfg.Spellcheck
	// No document is open yet, so the element tier is empty until Open.
	b.s.lang = spellcheck.ResolveLanguage(cfg.Language, "", b.s.locale)
	if !cfg.Enabled {
		return nil
	}

	checker := b.opts.checker
	if checker == nil && cfg.Dictionary != "" {
		f, err := os.Open(cfg.Dictionary)
		if err != nil {
			return fmt.Errorf("opening dictionary: %w", err)
		}
		defer f.Close()
		dict, err := spellcheck.LoadDictionary(b.s.lang, f)
		if err != nil {
			return err
		}
		checker = dict.Check
	}
	if checker == nil {
		b.s.logger.Debug("spellcheck has no checker")
		return nil
	}

	b.s.spell = spellcheck.New(b.s.editor, checker,
		spellcheck.WithDebounce(cfg.Debounce.Duration),
		spellcheck.WithLogger(b.s.logger),
	)
	b.s.editor.Chain().Register(b.s.spell)
	return nil
}
