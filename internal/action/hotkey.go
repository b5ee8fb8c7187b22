package action

import (
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Modifier is a set of keyboard modifiers.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS).
	ModMeta

	// ModPrimary is the platform's primary modifier. It is replaced by
	// ModCtrl or ModMeta when a hotkey is resolved.
	ModPrimary
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// String returns a representation like "Ctrl+Alt".
func (m Modifier) String() string {
	var parts []string
	if m.Has(ModPrimary) {
		parts = append(parts, "Mod")
	}
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

var modifierNames = map[string]Modifier{
	"mod":     ModPrimary,
	"primary": ModPrimary,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
}

var keyAliases = map[string]string{
	"return":   "enter",
	"cr":       "enter",
	"esc":      "escape",
	"bs":       "backspace",
	"del":      "delete",
	"pgup":     "pageup",
	"pgdn":     "pagedown",
	"spacebar": "space",
	" ":        "space",
}

var namedKeys = map[string]bool{
	"enter": true, "escape": true, "tab": true, "backspace": true,
	"delete": true, "insert": true, "space": true, "up": true, "down": true,
	"left": true, "right": true, "home": true, "end": true, "pageup": true,
	"pagedown": true, "f1": true, "f2": true, "f3": true, "f4": true,
	"f5": true, "f6": true, "f7": true, "f8": true, "f9": true, "f10": true,
	"f11": true, "f12": true,
}

// Hotkey is a parsed key chord.
type Hotkey struct {
	Mods Modifier

	// Key is a lower-cased single character or a named key such as "enter".
	Key string
}

// ParseHotkey parses a chord such as "mod+shift+2", "Ctrl+Enter" or "a".
// Modifier and key names are case-insensitive.
func ParseHotkey(chord string) (Hotkey, error) {
	chord = strings.TrimSpace(chord)
	if chord == "" {
		return Hotkey{}, ErrEmptyHotkey
	}

	parts := strings.Split(chord, "+")
	// A trailing "+" names the plus key itself.
	if strings.HasSuffix(chord, "++") || chord == "+" {
		parts = append(parts[:len(parts)-2], "+")
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		p = strings.ToLower(strings.TrimSpace(p))
		mod, ok := modifierNames[p]
		if !ok {
			return Hotkey{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidHotkey, p)
		}
		mods = mods.With(mod)
	}

	key, err := parseKey(parts[len(parts)-1])
	if err != nil {
		return Hotkey{}, fmt.Errorf("%w: %q", err, chord)
	}
	return Hotkey{Mods: mods, Key: key}, nil
}

// MustParseHotkey is like ParseHotkey but panics on error.
func MustParseHotkey(chord string) Hotkey {
	h, err := ParseHotkey(chord)
	if err != nil {
		panic(err)
	}
	return h
}

func parseKey(s string) (string, error) {
	if s != " " {
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return "", ErrInvalidHotkey
	}
	lower := strings.ToLower(s)
	if alias, ok := keyAliases[lower]; ok {
		lower = alias
	}
	if namedKeys[lower] || utf8.RuneCountInString(lower) == 1 {
		return lower, nil
	}
	return "", ErrInvalidHotkey
}

// PrimaryModifier returns the primary modifier for the running platform.
func PrimaryModifier() Modifier {
	if runtime.GOOS == "darwin" {
		return ModMeta
	}
	return ModCtrl
}

// Resolve replaces ModPrimary with primary.
func (h Hotkey) Resolve(primary Modifier) Hotkey {
	if h.Mods.Has(ModPrimary) {
		h.Mods = h.Mods&^ModPrimary | primary
	}
	return h
}

// String returns the canonical form, such as "Ctrl+Shift+2".
func (h Hotkey) String() string {
	if h.Mods == ModNone {
		return h.Key
	}
	return h.Mods.String() + "+" + h.Key
}
