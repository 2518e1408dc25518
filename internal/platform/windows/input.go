//go:build windows

package windows

import (
	"fmt"

	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
)

// Window messages and keybd_event flags from winuser.h.
const (
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101

	mkLButton = 0x0001
	mkRButton = 0x0002

	keyeventfKeyUp = 0x0002
	mapvkVKToVSC   = 0
)

// WinInputter implements platform.Inputter with PostMessageW for mouse
// traffic and keybd_event plus thread-input attach for keyboard
// injection.
type WinInputter struct{}

func NewInputter() *WinInputter {
	return &WinInputter{}
}

func makeLParam(pt geom.Point) uintptr {
	ux := uint32(uint16(int32(pt.X)))
	uy := uint32(uint16(int32(pt.Y)))
	return uintptr(ux | (uy << 16))
}

func mouseMessage(kind platform.EventKind) (msg uint32, wparam uintptr, ok bool) {
	switch kind {
	case platform.MouseMove:
		return wmMouseMove, 0, true
	case platform.LeftDown:
		return wmLButtonDown, mkLButton, true
	case platform.LeftUp:
		return wmLButtonUp, 0, true
	case platform.RightDown:
		return wmRButtonDown, mkRButton, true
	case platform.RightUp:
		return wmRButtonUp, 0, true
	default:
		return 0, 0, false
	}
}

// PostMouse posts a mouse message with the client point packed into
// LPARAM. Fire-and-forget: it never waits for the target to process it.
func (in *WinInputter) PostMouse(h model.Handle, kind platform.EventKind, pt geom.Point) error {
	msg, wparam, ok := mouseMessage(kind)
	if !ok {
		return fmt.Errorf("not a mouse event: %s", kind)
	}
	ret, _, _ := procPostMessageW.Call(uintptr(h), uintptr(msg), wparam, makeLParam(pt))
	if ret == 0 {
		return fmt.Errorf("%w: hwnd=%#x msg=%s", platform.ErrPostFailed, uintptr(h), kind)
	}
	return nil
}

// PostKey posts a WM_KEYDOWN/WM_KEYUP message carrying the virtual-key
// code. Only works for windows that read posted key messages.
func (in *WinInputter) PostKey(h model.Handle, kind platform.EventKind, vkCode uint16) error {
	scan, _, _ := procMapVirtualKeyW.Call(uintptr(vkCode), mapvkVKToVSC)

	var msg uint32 = wmKeyDown
	lparam := uintptr(1) | (scan << 16)
	if kind == platform.KeyUp {
		msg = wmKeyUp
		lparam |= (1 << 30) | (1 << 31)
	}

	ret, _, _ := procPostMessageW.Call(uintptr(h), uintptr(msg), uintptr(vkCode), lparam)
	if ret == 0 {
		return fmt.Errorf("%w: hwnd=%#x msg=%s", platform.ErrPostFailed, uintptr(h), kind)
	}
	return nil
}

// attachGuard pairs AttachThreadInput attach/detach so the detach runs on
// every exit path, including a failed injection.
type attachGuard struct {
	src, dst uint32
	attached bool
}

// attachThreadInput attaches src's input state to dst's when the threads
// differ. Failure to attach is not fatal; the injection is still
// attempted.
func attachThreadInput(src, dst uint32) *attachGuard {
	g := &attachGuard{src: src, dst: dst}
	if src == dst {
		return g
	}
	ret, _, _ := procAttachThreadInput.Call(uintptr(src), uintptr(dst), 1)
	g.attached = ret != 0
	return g
}

func (g *attachGuard) Close() {
	if g.attached {
		procAttachThreadInput.Call(uintptr(g.src), uintptr(g.dst), 0)
		g.attached = false
	}
}

func windowThread(h model.Handle) uint32 {
	tid, _, _ := procGetWindowThreadProcessId.Call(uintptr(h), 0)
	return uint32(tid)
}

// InjectKey synthesizes a global key event via keybd_event, temporarily
// attaching the source window's thread input to the target's. This
// reaches windows and games that poll input state and ignore posted key
// messages.
func (in *WinInputter) InjectKey(source, target model.Handle, kind platform.EventKind, vkCode uint16) error {
	guard := attachThreadInput(windowThread(source), windowThread(target))
	defer guard.Close()

	scan, _, _ := procMapVirtualKeyW.Call(uintptr(vkCode), mapvkVKToVSC)

	var flags uintptr
	if kind == platform.KeyUp {
		flags = keyeventfKeyUp
	}
	procKeybdEvent.Call(uintptr(vkCode), scan, flags, 0)
	return nil
}

// ForceForeground switches the foreground to the given window, as if via
// Alt-Tab.
func (in *WinInputter) ForceForeground(h model.Handle) error {
	alive, _, _ := procIsWindow.Call(uintptr(h))
	if alive == 0 {
		return platform.ErrWindowGone
	}
	procSwitchToThisWin.Call(uintptr(h), 1)
	return nil
}

// VKFromRune resolves a printable character to a virtual-key code via the
// current keyboard layout. The high byte of VkKeyScanW carries shift
// state, which the mirror ignores; -1 means no mapping.
func (in *WinInputter) VKFromRune(r rune) (uint16, bool) {
	ret, _, _ := procVkKeyScanW.Call(uintptr(uint16(r)))
	if int16(ret) == -1 {
		return 0, false
	}
	return uint16(ret) & 0xFF, true
}
