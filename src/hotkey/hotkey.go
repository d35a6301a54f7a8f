// Package hotkey watches a global key combination through gohook. On Windows
// keys are matched by virtual-key code, which gohook reports as the rawcode.
// Elsewhere the rawcode is an X11 keysym or a macOS key code, so keys are
// matched by gohook's portable keycode instead.
package hotkey

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

// Combo tracks which keys of a combination are currently held.
type Combo struct {
	def       string
	keys      []key
	byKeycode bool
	mu        sync.Mutex
}

type key struct {
	name    string
	codes   []uint16
	pressed bool
}

// Parse builds a Combo from a string like "Ctrl+Alt+Q" for the running OS.
func Parse(def string) (*Combo, error) {
	return ParseFor(def, runtime.GOOS)
}

// ParseFor builds a Combo whose keys are matched the way gohook reports
// them on goos.
func ParseFor(def, goos string) (*Combo, error) {
	c := &Combo{def: def, byKeycode: goos != "windows"}
	for _, name := range parseHotkey(def) {
		var codes []uint16
		if c.byKeycode {
			codes = keyNameToKeycodes(name)
		} else {
			codes = keyNameToRawcodes(name)
		}
		if len(codes) == 0 {
			return nil, fmt.Errorf("cannot map key %q in hotkey %q", name, def)
		}
		c.keys = append(c.keys, key{name: name, codes: codes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("no keys in hotkey %q", def)
	}
	return c, nil
}

func (c *Combo) String() string { return c.def }

// Feed updates the held keys with one hook event and reports whether the
// whole combination is now down. A match resets the state so holding the
// keys fires once.
func (c *Combo) Feed(kind uint8, rawcode, keycode uint16) bool {
	if kind != gohook.KeyDown && kind != gohook.KeyHold && kind != gohook.KeyUp {
		return false
	}
	code := rawcode
	if c.byKeycode {
		code = keycode
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	down := kind != gohook.KeyUp
	for i := range c.keys {
		if c.keys[i].matches(code) {
			c.keys[i].pressed = down
		}
	}
	if !down {
		return false
	}
	for _, k := range c.keys {
		if !k.pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (k key) matches(code uint16) bool {
	for _, c := range k.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Listen calls callback every time the combination is pressed until ctx
// ends. The callback runs on the hook goroutine and must not block.
func Listen(ctx context.Context, def string, callback func()) error {
	combo, err := Parse(def)
	if err != nil {
		return err
	}

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("gohook.Start returned no event channel")
	}
	zap.S().Infof("hotkey: listening for %s", combo)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorf("PANIC in hotkey goroutine: %v", r)
			}
		}()
		defer gohook.End()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					zap.S().Warnf("hotkey: event channel closed")
					return
				}
				if combo.Feed(ev.Kind, ev.Rawcode, ev.Keycode) {
					zap.S().Infof("hotkey: %s pressed", combo)
					if callback != nil {
						callback()
					}
				}
			}
		}
	}()
	return nil
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(def string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(def), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// Windows virtual-key codes. Modifiers map to both left and right keys.
var namedKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its virtual-key codes, or nil.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "win" || name == "super" {
		name = "cmd"
	}
	if codes, ok := namedKeys[name]; ok {
		return codes
	}

	if len(name) == 1 {
		switch c := name[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 'A'} // 0x41-0x5A
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)} // 0x30-0x39
		}
	}

	var n int
	if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 && name == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)} // VK_F1 is 112
	}

	zap.S().Warnf("hotkey: unknown key name %q", name)
	return nil
}

// gohook's keycode table uses its own names for a few keys.
var keycodeAliases = map[string]string{
	"return": "enter",
	"escape": "esc",
	"del":    "delete",
	"ins":    "insert",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
}

// keyNameToKeycodes maps a key name to gohook keycodes, including the right
// hand variant of modifiers, or nil.
func keyNameToKeycodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "win" || name == "super" {
		name = "cmd"
	}
	if alias, ok := keycodeAliases[name]; ok {
		name = alias
	}

	var codes []uint16
	if code, ok := gohook.Keycode[name]; ok {
		codes = append(codes, code)
	}
	switch name {
	case "ctrl", "alt", "shift", "cmd":
		if code, ok := gohook.Keycode["r"+name]; ok {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		zap.S().Warnf("hotkey: no keycode for key name %q", name)
	}
	return codes
}
