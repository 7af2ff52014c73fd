package common

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Key is a platform independent key code. Values match GLFW key codes, which use ASCII values for
// printable keys, so window callbacks can convert directly while the global hook translates OS
// virtual key codes into the same space.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

// KeyUnknown is reported for keys that have no mapping.
const KeyUnknown Key = 0

const (
	KeySpace      Key = 32  // Spacebar (ASCII)
	KeyApostrophe Key = 39  // ' (ASCII)
	KeyComma      Key = 44  // , (ASCII)
	KeyMinus      Key = 45  // - (ASCII)
	KeyPeriod     Key = 46  // . (ASCII)
	KeySlash      Key = 47  // / (ASCII)
	KeySemicolon  Key = 59  // ; (ASCII)
	KeyEqual      Key = 61  // = (ASCII)

	Key0 Key = 48
	Key1 Key = 49
	Key2 Key = 50
	Key3 Key = 51
	Key4 Key = 52
	Key5 Key = 53
	Key6 Key = 54
	Key7 Key = 55
	Key8 Key = 56
	Key9 Key = 57

	KeyA Key = 65
	KeyB Key = 66
	KeyC Key = 67
	KeyD Key = 68
	KeyE Key = 69
	KeyF Key = 70
	KeyG Key = 71
	KeyH Key = 72
	KeyI Key = 73
	KeyJ Key = 74
	KeyK Key = 75
	KeyL Key = 76
	KeyM Key = 77
	KeyN Key = 78
	KeyO Key = 79
	KeyP Key = 80
	KeyQ Key = 81
	KeyR Key = 82
	KeyS Key = 83
	KeyT Key = 84
	KeyU Key = 85
	KeyV Key = 86
	KeyW Key = 87
	KeyX Key = 88
	KeyY Key = 89
	KeyZ Key = 90

	KeyLeftBracket  Key = 91 // [ (ASCII)
	KeyBackslash    Key = 92 // \ (ASCII)
	KeyRightBracket Key = 93 // ] (ASCII)
	KeyGraveAccent  Key = 96 // ` (ASCII)
)

// Non-printable keys (GLFW)
const (
	KeyEscape    Key = 256
	KeyEnter     Key = 257
	KeyTab       Key = 258
	KeyBackspace Key = 259
	KeyInsert    Key = 260
	KeyDelete    Key = 261
	KeyRight     Key = 262
	KeyLeft      Key = 263
	KeyDown      Key = 264
	KeyUp        Key = 265
	KeyPageUp    Key = 266
	KeyPageDown  Key = 267
	KeyHome      Key = 268
	KeyEnd       Key = 269

	KeyF1  Key = 290
	KeyF2  Key = 291
	KeyF3  Key = 292
	KeyF4  Key = 293
	KeyF5  Key = 294
	KeyF6  Key = 295
	KeyF7  Key = 296
	KeyF8  Key = 297
	KeyF9  Key = 298
	KeyF10 Key = 299
	KeyF11 Key = 300
	KeyF12 Key = 301

	KeyLeftShift    Key = 340
	KeyLeftControl  Key = 341
	KeyLeftAlt      Key = 342
	KeyLeftSuper    Key = 343
	KeyRightShift   Key = 344
	KeyRightControl Key = 345
	KeyRightAlt     Key = 346
	KeyRightSuper   Key = 347
)

// keyNames holds the canonical configuration name of every named key.
var keyNames = map[Key]string{
	KeySpace: "Space", KeyApostrophe: "Apostrophe", KeyComma: "Comma", KeyMinus: "Minus",
	KeyPeriod: "Period", KeySlash: "Slash", KeySemicolon: "Semicolon", KeyEqual: "Equals",
	KeyLeftBracket: "LeftBracket", KeyBackslash: "Backslash", KeyRightBracket: "RightBracket",
	KeyGraveAccent: "Grave",
	KeyEscape: "Escape", KeyEnter: "Enter", KeyTab: "Tab", KeyBackspace: "Backspace",
	KeyInsert: "Insert", KeyDelete: "Delete", KeyRight: "Right", KeyLeft: "Left", KeyDown: "Down",
	KeyUp: "Up", KeyPageUp: "PageUp", KeyPageDown: "PageDown", KeyHome: "Home", KeyEnd: "End",
	KeyLeftShift: "LeftShift", KeyLeftControl: "LeftControl", KeyLeftAlt: "LeftAlt",
	KeyLeftSuper: "LeftSuper", KeyRightShift: "RightShift", KeyRightControl: "RightControl",
	KeyRightAlt: "RightAlt", KeyRightSuper: "RightSuper",
}

// keysByName is the case-folded reverse of keyNames, filled in init with letters, digits and F-keys.
var keysByName = map[string]Key{}

func init() {
	for k := KeyA; k <= KeyZ; k++ {
		keyNames[k] = string(rune(k))
	}
	for k := Key0; k <= Key9; k++ {
		keyNames[k] = "Key" + string(rune(k))
	}
	for k := KeyF1; k <= KeyF12; k++ {
		keyNames[k] = fmt.Sprintf("F%d", k-KeyF1+1)
	}
	for k, name := range keyNames {
		keysByName[strings.ToLower(name)] = k
	}
	// "Equal" is accepted as an alias of "Equals".
	keysByName["equal"] = KeyEqual
}

// ParseKey resolves a configuration key name such as "A", "Key1", "F5" or "Equals".
// Matching is case-insensitive.
//
// Parameters:
//   - name: the key name to resolve
//
// Returns:
//   - Key: the resolved key
//   - error: an error if the name does not identify a key
func ParseKey(name string) (Key, error) {
	if k, ok := keysByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return KeyUnknown, fmt.Errorf("unknown key name %q", name)
}

// String returns the configuration name of the key, or "Key(<n>)" when unnamed.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint32(k))
}

// MarshalYAML encodes the key as its configuration name.
func (k Key) MarshalYAML() (any, error) {
	if _, ok := keyNames[k]; !ok {
		return nil, fmt.Errorf("key %d has no configuration name", uint32(k))
	}
	return k.String(), nil
}

// UnmarshalYAML decodes a key from its configuration name.
func (k *Key) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseKey(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*k = parsed
	return nil
}
