//go:build windows

package windows

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/winmirror/winmirror/internal/geom"
	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/platform"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit       = 0x0012
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	// Capacity of the event channel between the hook thread and the
	// session consumer. The callback never blocks; overflow is dropped.
	eventBuffer = 256
)

type point32 struct {
	X, Y int32
}

type msllHookStruct struct {
	Pt          point32
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point32
}

// activeCapturer is read by the hook callbacks, which run on the pump's
// OS thread. NewCallback pins are process-wide and never released, so the
// callbacks are created once and dispatch through this pointer.
var (
	activeCapturer atomic.Pointer[WinCapturer]
	callbackOnce   sync.Once
	keyboardCB     uintptr
	mouseCB        uintptr
)

// WinCapturer implements platform.Capturer with WH_KEYBOARD_LL and
// WH_MOUSE_LL hooks pumped on a dedicated locked OS thread.
type WinCapturer struct {
	logger *slog.Logger

	events   chan platform.Event
	threadID atomic.Uint32
	dropped  atomic.Uint64
	started  atomic.Bool
}

func NewCapturer() *WinCapturer {
	return &WinCapturer{logger: logging.Component("hook")}
}

func initCallbacks() {
	callbackOnce.Do(func() {
		keyboardCB = newHookCallback(func(c *WinCapturer, wparam, lparam uintptr) {
			info := (*kbdllHookStruct)(unsafe.Pointer(lparam))
			var kind platform.EventKind
			switch wparam {
			case wmKeyDown, wmSysKeyDown:
				kind = platform.KeyDown
			case wmKeyUp, wmSysKeyUp:
				kind = platform.KeyUp
			default:
				return
			}
			c.push(platform.Event{Kind: kind, VK: uint16(info.VkCode)})
		})
		mouseCB = newHookCallback(func(c *WinCapturer, wparam, lparam uintptr) {
			info := (*msllHookStruct)(unsafe.Pointer(lparam))
			var kind platform.EventKind
			switch wparam {
			case wmMouseMove:
				kind = platform.MouseMove
			case wmLButtonDown:
				kind = platform.LeftDown
			case wmLButtonUp:
				kind = platform.LeftUp
			case wmRButtonDown:
				kind = platform.RightDown
			case wmRButtonUp:
				kind = platform.RightUp
			default:
				return
			}
			c.push(platform.Event{
				Kind:  kind,
				Point: geom.Point{X: int(info.Pt.X), Y: int(info.Pt.Y)},
			})
		})
	})
}

func newHookCallback(handle func(c *WinCapturer, wparam, lparam uintptr)) uintptr {
	return syscall.NewCallback(func(nCode, wparam, lparam uintptr) uintptr {
		if int32(nCode) >= 0 {
			if c := activeCapturer.Load(); c != nil {
				handle(c, wparam, lparam)
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, nCode, wparam, lparam)
		return ret
	})
}

// push hands an event to the consumer without ever blocking the hook
// callback. Overflow is dropped and counted.
func (c *WinCapturer) push(ev platform.Event) {
	select {
	case c.events <- ev:
	default:
		c.dropped.Add(1)
	}
}

// Start installs the hooks and begins delivering events. The context
// cancels capture; Stop also works.
func (c *WinCapturer) Start(ctx context.Context) (<-chan platform.Event, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("capture already started")
	}
	initCallbacks()
	c.events = make(chan platform.Event, eventBuffer)
	activeCapturer.Store(c)

	ready := make(chan error, 1)
	go c.pump(ready)
	if err := <-ready; err != nil {
		activeCapturer.Store(nil)
		c.started.Store(false)
		return nil, err
	}

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	c.logger.Info("input hooks installed")
	return c.events, nil
}

// pump owns the hook lifetime: low-level hooks must be installed and
// serviced from the same thread that runs the message loop.
func (c *WinCapturer) pump(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, _, _ := procGetCurrentThreadId.Call()
	c.threadID.Store(uint32(tid))

	hmod, _, _ := procGetModuleHandleW.Call(0)

	kbHook, _, kbErr := procSetWindowsHookExW.Call(whKeyboardLL, keyboardCB, hmod, 0)
	if kbHook == 0 {
		ready <- fmt.Errorf("SetWindowsHookEx(WH_KEYBOARD_LL): %w", kbErr)
		return
	}
	mouseHook, _, mErr := procSetWindowsHookExW.Call(whMouseLL, mouseCB, hmod, 0)
	if mouseHook == 0 {
		procUnhookWindowsHookEx.Call(kbHook)
		ready <- fmt.Errorf("SetWindowsHookEx(WH_MOUSE_LL): %w", mErr)
		return
	}
	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}

	procUnhookWindowsHookEx.Call(kbHook)
	procUnhookWindowsHookEx.Call(mouseHook)
	activeCapturer.CompareAndSwap(c, nil)
	close(c.events)

	if n := c.dropped.Load(); n > 0 {
		c.logger.Warn("events dropped under backpressure", "count", n)
	}
	c.logger.Info("input hooks removed")
}

// Stop posts WM_QUIT to the pump thread, which unhooks and closes the
// event channel.
func (c *WinCapturer) Stop() error {
	if !c.started.CompareAndSwap(true, false) {
		return nil
	}
	tid := c.threadID.Load()
	if tid == 0 {
		return nil
	}
	ret, _, err := procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
	if ret == 0 {
		return fmt.Errorf("PostThreadMessage(WM_QUIT): %w", err)
	}
	return nil
}
