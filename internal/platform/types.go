package platform

import (
	"errors"

	"github.com/winmirror/winmirror/internal/geom"
)

// EventKind identifies a captured or dispatched input event.
type EventKind int

const (
	MouseMove EventKind = iota
	LeftDown
	LeftUp
	RightDown
	RightUp
	KeyDown
	KeyUp
)

func (k EventKind) String() string {
	switch k {
	case MouseMove:
		return "move"
	case LeftDown:
		return "ldown"
	case LeftUp:
		return "lup"
	case RightDown:
		return "rdown"
	case RightUp:
		return "rup"
	case KeyDown:
		return "keydown"
	case KeyUp:
		return "keyup"
	default:
		return "unknown"
	}
}

// IsMouse reports whether the kind is a mouse event.
func (k EventKind) IsMouse() bool { return k <= RightUp }

// IsKey reports whether the kind is a keyboard event.
func (k EventKind) IsKey() bool { return k == KeyDown || k == KeyUp }

// Event is one raw input event from the global capture hook. Mouse events
// carry a screen-space point; key events carry a virtual-key code.
type Event struct {
	Kind  EventKind
	Point geom.Point
	VK    uint16
}

var (
	// ErrWindowGone implies the window handle is no longer valid.
	ErrWindowGone = errors.New("window is gone or invalid")

	// ErrPostFailed implies PostMessageW returned zero for a target.
	ErrPostFailed = errors.New("message post failed")

	// ErrUnsupportedKey implies the character cannot be mapped to a key.
	ErrUnsupportedKey = errors.New("unsupported key or character")
)
