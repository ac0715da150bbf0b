package hotkey

import (
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding pairs a hotkey combo string like "Ctrl+Alt+S" with the action to
// run when it fires. Actions run on the hook goroutine; they should post
// into the event loop and return.
type Binding struct {
	Combo  string
	Action func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type combo struct {
	label  string
	keys   []keyState
	action func()
}

// Listen registers global hotkeys and starts a single gohook event loop
// serving all of them. gohook.Start may only be called once per process, so
// every binding must arrive in this one call.
func Listen(bindings ...Binding) {
	var combos []combo
	for _, b := range bindings {
		c, ok := buildCombo(b)
		if !ok {
			log.Printf("Hotkey %q has no mappable keys, skipping", b.Combo)
			continue
		}
		combos = append(combos, c)
		log.Printf("Hotkey registered: %s", b.Combo)
	}
	if len(combos) == 0 {
		log.Printf("No valid hotkeys configured")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}

		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				var fired []func()
				for i := range combos {
					if combos[i].keyDown(ev.Rawcode) {
						log.Printf("Hotkey activated: %s", combos[i].label)
						fired = append(fired, combos[i].action)
					}
				}
				mu.Unlock()
				for _, action := range fired {
					if action != nil {
						action()
					}
				}
			case gohook.KeyUp:
				mu.Lock()
				for i := range combos {
					combos[i].keyUp(ev.Rawcode)
				}
				mu.Unlock()
			}
		}
		log.Printf("Hotkey event channel closed")
	}()
}

func buildCombo(b Binding) (combo, bool) {
	c := combo{label: b.Combo, action: b.Action}
	for _, keyName := range parseHotkey(b.Combo) {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			log.Printf("Cannot map key %q to rawcodes", keyName)
			continue
		}
		c.keys = append(c.keys, keyState{name: keyName, rawcodes: rawcodes})
	}
	return c, len(c.keys) > 0
}

// keyDown records a press and reports whether it completed the combo. A
// completed combo resets its key states so holding the keys does not
// re-fire on auto-repeat of a different key.
func (c *combo) keyDown(rawcode uint16) bool {
	matched := false
	for i := range c.keys {
		for _, rc := range c.keys[i].rawcodes {
			if rawcode == rc {
				c.keys[i].pressed = true
				matched = true
				break
			}
		}
	}
	if !matched {
		return false
	}
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *combo) keyUp(rawcode uint16) {
	for i := range c.keys {
		for _, rc := range c.keys[i].rawcodes {
			if rawcode == rc {
				c.keys[i].pressed = false
				break
			}
		}
	}
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+s" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "ctrl":
			keys = append(keys, "ctrl")
		case "alt":
			keys = append(keys, "alt")
		case "shift":
			keys = append(keys, "shift")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		case "":
		default:
			keys = append(keys, part)
		}
	}

	return keys
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes.
// Returns a slice of rawcodes (e.g., both left and right variants for modifiers).
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	// Modifier keys - return both left and right variants
	case "ctrl":
		return []uint16{162, 163} // VK_LCONTROL, VK_RCONTROL
	case "alt":
		return []uint16{164, 165} // VK_LMENU, VK_RMENU (MENU = Alt)
	case "shift":
		return []uint16{160, 161} // VK_LSHIFT, VK_RSHIFT
	case "win", "cmd", "super":
		return []uint16{91, 92} // VK_LWIN, VK_RWIN
	}

	// Letters A-Z are VK 0x41-0x5A, digits 0-9 are VK 0x30-0x39.
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c - 'a' + 'A')}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c)}
		}
	}

	// Function keys F1-F24 are VK 0x70-0x87.
	if strings.HasPrefix(keyName, "f") {
		if n := parseFunctionKey(keyName[1:]); n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}

	switch keyName {
	case "space":
		return []uint16{32} // VK_SPACE
	case "enter", "return":
		return []uint16{13} // VK_RETURN
	case "esc", "escape":
		return []uint16{27} // VK_ESCAPE
	case "tab":
		return []uint16{9} // VK_TAB
	case "backspace":
		return []uint16{8} // VK_BACK
	case "delete", "del":
		return []uint16{46} // VK_DELETE
	case "insert", "ins":
		return []uint16{45} // VK_INSERT
	case "home":
		return []uint16{36} // VK_HOME
	case "end":
		return []uint16{35} // VK_END
	case "pageup", "pgup":
		return []uint16{33} // VK_PRIOR
	case "pagedown", "pgdn":
		return []uint16{34} // VK_NEXT
	case "left":
		return []uint16{37} // VK_LEFT
	case "up":
		return []uint16{38} // VK_UP
	case "right":
		return []uint16{39} // VK_RIGHT
	case "down":
		return []uint16{40} // VK_DOWN
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}

func parseFunctionKey(digits string) int {
	if len(digits) == 0 || len(digits) > 2 {
		return 0
	}
	n := 0
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0
		}
		n = n*10 + int(digits[i]-'0')
	}
	return n
}
