// Package vk defines Windows virtual-key codes and the fixed lookup table
// for named special keys. Character-to-keycode resolution for printable
// runes lives on the platform layer (VkKeyScanW); this package covers the
// closed set of special keys and human-readable names for logging.
//
// The table is not a filter: the mirror replays every native virtual-key
// code the capture hook reports, including keys with no name here. Only a
// code of zero (no mapping) is dropped.
package vk

import "strings"

// Virtual-key codes from winuser.h, limited to what the mirror handles.
const (
	Back     uint16 = 0x08
	Tab      uint16 = 0x09
	Return   uint16 = 0x0D
	Shift    uint16 = 0x10
	Control  uint16 = 0x11
	Menu     uint16 = 0x12 // Alt
	Escape   uint16 = 0x1B
	Space    uint16 = 0x20
	Left     uint16 = 0x25
	Up       uint16 = 0x26
	Right    uint16 = 0x27
	Down     uint16 = 0x28
	LShift   uint16 = 0xA0
	RShift   uint16 = 0xA1
	LControl uint16 = 0xA2
	RControl uint16 = 0xA3
	LMenu    uint16 = 0xA4
	RMenu    uint16 = 0xA5
	F12      uint16 = 0x7B
)

// specialKeys maps lower-case key names to virtual-key codes. Keys with no
// mapping are silently dropped by the caller, not an error.
var specialKeys = map[string]uint16{
	"enter":     Return,
	"space":     Space,
	"backspace": Back,
	"tab":       Tab,
	"esc":       Escape,
	"escape":    Escape,
	"left":      Left,
	"up":        Up,
	"right":     Right,
	"down":      Down,
	"shift":     Shift,
	"rshift":    RShift,
	"ctrl":      Control,
	"lctrl":     LControl,
	"alt":       Menu,
	"f12":       F12,
}

var keyNames = func() map[uint16]string {
	names := make(map[uint16]string, len(specialKeys))
	for name, code := range specialKeys {
		// Prefer the canonical name on collisions ("esc" over "escape").
		if existing, ok := names[code]; !ok || len(name) < len(existing) {
			names[code] = name
		}
	}
	return names
}()

// FromName resolves a named special key to its virtual-key code.
func FromName(name string) (uint16, bool) {
	code, ok := specialKeys[strings.ToLower(name)]
	return code, ok
}

// Name returns a readable name for a virtual-key code, for log lines.
// Printable codes outside the special table come back as their character.
func Name(code uint16) string {
	if name, ok := keyNames[code]; ok {
		return name
	}
	if code >= '0' && code <= '9' || code >= 'A' && code <= 'Z' {
		return string(rune(code))
	}
	return "vk" + hexByte(code)
}

func hexByte(code uint16) string {
	const digits = "0123456789abcdef"
	return "0x" + string(digits[(code>>4)&0xF]) + string(digits[code&0xF])
}
