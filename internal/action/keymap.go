package action

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/plugin"
)

// Keymap binds resolved hotkeys to actions. The first action bound to a
// chord keeps it; later conflicts are logged and skipped.
type Keymap struct {
	mu       sync.RWMutex
	primary  Modifier
	bindings map[Hotkey]plugin.ResolvedAction
	logger   *zap.Logger
}

// NewKeymap builds a keymap from actions in order. Actions without a hotkey
// are skipped; unparseable hotkeys are logged and skipped.
func NewKeymap(actions []plugin.ResolvedAction, primary Modifier, logger *zap.Logger) *Keymap {
	if logger == nil {
		logger = zap.NewNop()
	}
	k := &Keymap{
		primary:  primary,
		bindings: make(map[Hotkey]plugin.ResolvedAction),
		logger:   logger.Named("keymap"),
	}
	for _, a := range actions {
		k.Bind(a)
	}
	return k
}

// Bind adds the action's hotkey. It reports whether a binding was added.
func (k *Keymap) Bind(a plugin.ResolvedAction) bool {
	if a.Hotkey == "" {
		return false
	}
	h, err := ParseHotkey(a.Hotkey)
	if err != nil {
		k.logger.Warn("invalid hotkey",
			zap.String("action", a.Name),
			zap.String("hotkey", a.Hotkey),
			zap.Error(err),
		)
		return false
	}
	h = h.Resolve(k.primary)

	k.mu.Lock()
	defer k.mu.Unlock()
	if prev, ok := k.bindings[h]; ok {
		k.logger.Warn("hotkey conflict",
			zap.String("hotkey", h.String()),
			zap.String("bound", prev.Name),
			zap.String("skipped", a.Name),
		)
		return false
	}
	k.bindings[h] = a
	return true
}

// Lookup returns the action bound to h. ModPrimary in h is resolved first.
func (k *Keymap) Lookup(h Hotkey) (plugin.ResolvedAction, bool) {
	h = h.Resolve(k.primary)
	k.mu.RLock()
	defer k.mu.RUnlock()
	a, ok := k.bindings[h]
	return a, ok
}

// LookupString parses chord and looks it up.
func (k *Keymap) LookupString(chord string) (plugin.ResolvedAction, bool) {
	h, err := ParseHotkey(chord)
	if err != nil {
		return plugin.ResolvedAction{}, false
	}
	return k.Lookup(h)
}

// Len returns the number of bindings.
func (k *Keymap) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.bindings)
}
