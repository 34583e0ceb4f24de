//go:build darwin

package platform

import "pawlock/internal/core/keycombo"

// CGEventFlags modifier masks.
const (
	flagMaskShift     = 0x00020000
	flagMaskControl   = 0x00040000
	flagMaskAlternate = 0x00080000
	flagMaskCommand   = 0x00100000
)

func modifiersFromFlags(flags uint64) keycombo.Modifier {
	var mods keycombo.Modifier
	if flags&flagMaskCommand != 0 {
		mods |= keycombo.ModCommand
	}
	if flags&flagMaskAlternate != 0 {
		mods |= keycombo.ModOption
	}
	if flags&flagMaskControl != 0 {
		mods |= keycombo.ModControl
	}
	if flags&flagMaskShift != 0 {
		mods |= keycombo.ModShift
	}
	return mods
}

// keycodeNames maps macOS virtual keycodes to the primary-key vocabulary.
// Keys outside the vocabulary map to "" and can never match an unlock
// combination.
var keycodeNames = map[int64]string{
	0: "A", 1: "S", 2: "D", 3: "F", 4: "H", 5: "G", 6: "Z", 7: "X",
	8: "C", 9: "V", 11: "B", 12: "Q", 13: "W", 14: "E", 15: "R",
	16: "Y", 17: "T", 31: "O", 32: "U", 34: "I", 35: "P", 37: "L",
	38: "J", 40: "K", 45: "N", 46: "M",

	18: "1", 19: "2", 20: "3", 21: "4", 23: "5", 22: "6",
	26: "7", 28: "8", 25: "9", 29: "0",

	122: "F1", 120: "F2", 99: "F3", 118: "F4", 96: "F5", 97: "F6",
	98: "F7", 100: "F8", 101: "F9", 109: "F10", 103: "F11", 111: "F12",

	36: "Return", 48: "Tab", 49: "Space", 51: "Delete", 53: "Escape",
	123: "Left", 124: "Right", 125: "Down", 126: "Up",
}

func keyName(keycode int64) string {
	return keycodeNames[keycode]
}
