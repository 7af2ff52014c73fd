package hook

import "github.com/Carmen-Shannon/oxy-widget/common"

// Windows virtual key codes that differ from their common.Key value.
var vkKeys = map[uint32]common.Key{
	0x08: common.KeyBackspace,
	0x09: common.KeyTab,
	0x0D: common.KeyEnter,
	0x1B: common.KeyEscape,
	0x20: common.KeySpace,
	0x21: common.KeyPageUp,
	0x22: common.KeyPageDown,
	0x23: common.KeyEnd,
	0x24: common.KeyHome,
	0x25: common.KeyLeft,
	0x26: common.KeyUp,
	0x27: common.KeyRight,
	0x28: common.KeyDown,
	0x2D: common.KeyInsert,
	0x2E: common.KeyDelete,
	0x6B: common.KeyEqual, // numpad +
	0x6D: common.KeyMinus, // numpad -
	0xBA: common.KeySemicolon,
	0xBB: common.KeyEqual,
	0xBC: common.KeyComma,
	0xBD: common.KeyMinus,
	0xBE: common.KeyPeriod,
	0xBF: common.KeySlash,
	0xC0: common.KeyGraveAccent,
	0xDB: common.KeyLeftBracket,
	0xDC: common.KeyBackslash,
	0xDD: common.KeyRightBracket,
	0xDE: common.KeyApostrophe,
	0xA0: common.KeyLeftShift,
	0xA1: common.KeyRightShift,
	0xA2: common.KeyLeftControl,
	0xA3: common.KeyRightControl,
	0xA4: common.KeyLeftAlt,
	0xA5: common.KeyRightAlt,
	0x5B: common.KeyLeftSuper,
	0x5C: common.KeyRightSuper,
}

// KeyFromVK maps a Windows virtual key code to a Key.
//
// Parameters:
//   - vk: the virtual key code
//
// Returns:
//   - common.Key: the key, or KeyUnknown when the code has no mapping
func KeyFromVK(vk uint32) common.Key {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return common.Key(vk)
	case vk >= 0x70 && vk <= 0x7B:
		return common.KeyF1 + common.Key(vk-0x70)
	}
	if k, ok := vkKeys[vk]; ok {
		return k
	}
	return common.KeyUnknown
}
