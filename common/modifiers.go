package common

// Modifiers is a bitset of the modifier keys held while another key is pressed.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
)

// Has reports whether every modifier in m is held.
//
// Parameters:
//   - m: the modifiers to test for
//
// Returns:
//   - bool: true if all of m is set
func (mods Modifiers) Has(m Modifiers) bool {
	return mods&m == m
}

// IsModifier reports whether the key is itself a modifier key.
func IsModifier(k Key) bool {
	return k >= KeyLeftShift && k <= KeyRightSuper
}
