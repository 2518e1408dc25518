//go:build windows

package windows

import (
	"fmt"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	xwindows "golang.org/x/sys/windows"

	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

// WinDirectory implements platform.Directory over EnumWindows and the
// window query procs.
type WinDirectory struct{}

func NewDirectory() *WinDirectory {
	return &WinDirectory{}
}

// The EnumWindows callback is compiled once: NewCallback pins are
// process-wide and capped, and the directory is re-enumerated before
// every dispatch. The callback writes into package state, so
// enumerations serialize on the mutex.
var (
	enumMu      sync.Mutex
	enumOnce    sync.Once
	enumCB      uintptr
	enumWindows []model.Window
	enumFg      uintptr
)

func initEnumCallback() {
	enumOnce.Do(func() {
		enumCB = syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
			visible, _, _ := procIsWindowVisible.Call(hwnd)
			if visible == 0 {
				return 1
			}
			title, ok := windowTitle(hwnd)
			if !ok || strings.TrimSpace(title) == "" {
				return 1
			}
			var pid uint32
			procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
			enumWindows = append(enumWindows, model.Window{
				Handle:  model.Handle(hwnd),
				Title:   title,
				PID:     int(pid),
				Focused: hwnd == enumFg,
			})
			return 1
		})
	})
}

// ListWindows enumerates all visible top-level windows with a title that
// is non-empty after trimming whitespace. A window whose state cannot be
// queried mid-enumeration is skipped; no single window aborts the scan.
func (d *WinDirectory) ListWindows() ([]model.Window, error) {
	initEnumCallback()

	enumMu.Lock()
	defer enumMu.Unlock()

	fg, _, _ := procGetForegroundWindow.Call()
	enumFg = fg
	enumWindows = nil

	ret, _, err := procEnumWindows.Call(enumCB, 0)
	windows := enumWindows
	enumWindows = nil
	if ret == 0 && len(windows) == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return windows, nil
}

// Foreground returns the current foreground window.
func (d *WinDirectory) Foreground() (model.Window, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return model.Window{}, false
	}
	title, _ := windowTitle(hwnd)
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	return model.Window{
		Handle:  model.Handle(hwnd),
		Title:   title,
		PID:     int(pid),
		Focused: true,
	}, true
}

// WindowRect returns the window's full bounds in screen coordinates.
func (d *WinDirectory) WindowRect(h model.Handle) (geom.Rect, error) {
	var r winRect
	ret, _, _ := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return geom.Rect{}, platform.ErrWindowGone
	}
	return geom.Rect{
		Left: int(r.Left), Top: int(r.Top),
		Right: int(r.Right), Bottom: int(r.Bottom),
	}, nil
}

// ClientSize returns the window's client-area dimensions. GetClientRect
// always reports a zero top-left, so only the size is meaningful.
func (d *WinDirectory) ClientSize(h model.Handle) (geom.Size, error) {
	var r winRect
	ret, _, _ := procGetClientRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return geom.Size{}, platform.ErrWindowGone
	}
	return geom.Size{Width: int(r.Right), Height: int(r.Bottom)}, nil
}

// windowTitle reads a window's title. ok is false when the window is gone
// or the title cannot be read.
func windowTitle(hwnd uintptr) (string, bool) {
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		alive, _, _ := procIsWindow.Call(hwnd)
		return "", alive != 0
	}
	buf := make([]uint16, length+1)
	ret, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), length+1)
	if ret == 0 {
		return "", false
	}
	return xwindows.UTF16ToString(buf), true
}
