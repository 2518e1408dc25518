package platform

import (
	"context"
	"image"

	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/model"
)

// Directory queries the OS window list. All methods are read-only; a
// window that cannot be queried is skipped, never fatal.
type Directory interface {
	// ListWindows returns all visible top-level windows whose title is
	// non-empty after trimming whitespace, in OS enumeration order.
	ListWindows() ([]model.Window, error)

	// Foreground returns the current foreground window, or false when
	// there is none or it cannot be queried.
	Foreground() (model.Window, bool)

	// WindowRect returns the window's full bounds in screen coordinates.
	WindowRect(h model.Handle) (geom.Rect, error)

	// ClientSize returns the window's client-area dimensions.
	ClientSize(h model.Handle) (geom.Size, error)
}

// Inputter dispatches synthetic input to target windows.
type Inputter interface {
	// PostMouse posts a non-blocking mouse message with client
	// coordinates to the target's message queue. Fire-and-forget.
	PostMouse(h model.Handle, kind EventKind, pt geom.Point) error

	// PostKey posts WM_KEYDOWN/WM_KEYUP carrying the virtual-key code.
	// Works only for windows that process posted key messages.
	PostKey(h model.Handle, kind EventKind, vkCode uint16) error

	// InjectKey synthesizes a global key event, attaching the source
	// window's thread input to the target's for the duration when the
	// threads differ. Required for windows that poll input state.
	InjectKey(source, target model.Handle, kind EventKind, vkCode uint16) error

	// ForceForeground switches the foreground to the given window.
	ForceForeground(h model.Handle) error

	// VKFromRune resolves a printable character to a virtual-key code
	// via the OS keyboard layout.
	VKFromRune(r rune) (uint16, bool)
}

// Capturer is the global mouse/keyboard listener. Events arrive on the
// returned channel from an OS-driven thread; the channel is bounded and
// the hook callback never blocks on it.
type Capturer interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Diagnoser inspects why a target window might not receive input.
type Diagnoser interface {
	Inspect(h model.Handle) (model.DiagReport, error)
}

// Screenshotter captures a window's client area.
type Screenshotter interface {
	CaptureWindow(h model.Handle) (image.Image, error)
}
