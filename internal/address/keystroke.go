package address

import "strings"

// Key is a single keyboard event as reported by the browser. Value uses
// KeyboardEvent.key names: printable characters are themselves, editing
// keys are names like "Backspace" or "ArrowLeft".
type Key struct {
	Value string `json:"value"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
}

// KeysFromText turns typed text into one Key per character.
func KeysFromText(text string) []Key {
	keys := make([]Key, 0, len(text))
	for _, r := range text {
		keys = append(keys, Key{Value: string(r)})
	}
	return keys
}

var editingKeys = map[string]bool{
	"Backspace":  true,
	"Delete":     true,
	"ArrowLeft":  true,
	"ArrowRight": true,
	"ArrowUp":    true,
	"ArrowDown":  true,
	"Tab":        true,
	"Home":       true,
	"End":        true,
}

// IsEditing reports whether k is a navigation or editing key, or a
// select-all/copy/cut/paste/undo shortcut. Those always pass the filter.
func (k Key) IsEditing() bool {
	if editingKeys[k.Value] {
		return true
	}
	if k.Ctrl || k.Meta {
		switch strings.ToLower(k.Value) {
		case "a", "c", "v", "x", "z":
			return true
		}
	}
	return false
}

// char returns the single ASCII character the key inserts.
func (k Key) char() (byte, bool) {
	if len(k.Value) != 1 || k.Ctrl || k.Meta {
		return 0, false
	}
	return k.Value[0], true
}

// AllowPostalKey reports whether k may be typed into the postal code field
// for country. The filter is advisory; Validate remains authoritative.
func (b *RuleBook) AllowPostalKey(country string, k Key) bool {
	if k.IsEditing() {
		return true
	}
	c, ok := k.char()
	if !ok {
		return false
	}
	return b.Resolve(country).PostalKeys.accepts(c)
}

func (kc KeyClass) accepts(c byte) bool {
	switch kc {
	case KeysDigitsHyphen:
		return isDigit(c) || c == '-'
	case KeysAlnumSpace:
		return isAlnum(c) || c == ' '
	case KeysDigits:
		return isDigit(c)
	case KeysAlnumSpaceHyphen:
		return isAlnum(c) || c == ' ' || c == '-'
	}
	return false
}

// AllowPhoneKey reports whether k may be typed into a phone field holding
// current with the caret at cursor. Digits are always accepted; a plus
// sign only at the start of a value that has none yet.
func AllowPhoneKey(current string, cursor int, k Key) bool {
	if k.IsEditing() {
		return true
	}
	c, ok := k.char()
	if !ok {
		return false
	}
	if isDigit(c) {
		return true
	}
	return c == '+' && cursor == 0 && !strings.Contains(current, "+")
}
