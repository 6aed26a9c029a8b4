package x11

// Linux evdev keycodes for the platform keycodes a soft keyboard can emit.
// Hardware keyboards bypass this table by reporting scan codes directly.
var platformToLinuxKeycode = map[int]int{
	4: 1, // back key doubles as escape

	7: 11, 8: 2, 9: 3, 10: 4, 11: 5, 12: 6, 13: 7, 14: 8, 15: 9, 16: 10,

	19: 103, 20: 108, 21: 105, 22: 106, 23: 28,
	24: 115, 25: 114,

	29: 30, 30: 48, 31: 46, 32: 32, 33: 18, 34: 33, 35: 34, 36: 35,
	37: 23, 38: 36, 39: 37, 40: 38, 41: 50, 42: 49, 43: 24, 44: 25,
	45: 16, 46: 19, 47: 31, 48: 20, 49: 22, 50: 47, 51: 17, 52: 45,
	53: 21, 54: 44,

	55: 51, 56: 52, 57: 56, 58: 100, 59: 42, 60: 54, 61: 15, 62: 57,
	66: 28, 67: 14, 68: 41, 69: 12, 70: 13, 71: 26, 72: 27, 73: 43,
	74: 39, 75: 40, 76: 53,

	92: 104, 93: 109,

	111: 1, 112: 111, 113: 29, 114: 97, 115: 58, 116: 70,
	117: 125, 118: 126, 120: 99, 121: 119, 122: 102, 123: 107, 124: 110,

	131: 59, 132: 60, 133: 61, 134: 62, 135: 63, 136: 64,
	137: 65, 138: 66, 139: 67, 140: 68, 141: 87, 142: 88,

	143: 69,
	144: 82, 145: 79, 146: 80, 147: 81, 148: 75, 149: 76, 150: 77,
	151: 71, 152: 72, 153: 73,
	154: 98, 155: 55, 156: 74, 157: 78, 158: 83, 160: 96,
}

// ResolveKeycode picks the linux keycode for a key event: a non-zero scan
// code wins, otherwise the platform keycode is translated. Returns false when
// neither yields a code.
func ResolveKeycode(scanCode, keyCode int) (int, bool) {
	if scanCode != 0 {
		return scanCode, true
	}
	code, ok := platformToLinuxKeycode[keyCode]
	return code, ok
}
