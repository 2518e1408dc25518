//go:build windows

package windows

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/winmirror/winmirror/internal/logging"
	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
)

const (
	smCxScreen = 0
	smCyScreen = 1
)

// WinDiagnoser implements platform.Diagnoser. It reports why a target
// window might ignore synthetic input: thread/desktop identity, whether a
// test thread-input attach succeeds, and the fullscreen-bounds heuristic
// for exclusive-input windows.
type WinDiagnoser struct {
	dir    *WinDirectory
	logger *slog.Logger
}

func NewDiagnoser(dir *WinDirectory) *WinDiagnoser {
	return &WinDiagnoser{dir: dir, logger: logging.Component("diag")}
}

func (d *WinDiagnoser) Inspect(h model.Handle) (model.DiagReport, error) {
	alive, _, _ := procIsWindow.Call(uintptr(h))
	if alive == 0 {
		return model.DiagReport{}, platform.ErrWindowGone
	}

	report := model.DiagReport{Handle: h}
	report.Title, _ = windowTitle(uintptr(h))

	var pid uint32
	tid, _, _ := procGetWindowThreadProcessId.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	report.ThreadID = uint32(tid)
	report.PID = int(pid)

	if proc, err := process.NewProcess(int32(pid)); err == nil {
		report.ProcessName, _ = proc.Name()
		report.ProcessExe, _ = proc.Exe()
	}

	desk, _, _ := procGetThreadDesktop.Call(tid)
	report.Desktop = uint64(desk)
	if desk == 0 {
		report.Findings = append(report.Findings,
			"thread desktop could not be resolved; window may live on another desktop")
	}

	report.AttachOK = d.testAttach(uint32(tid))
	if !report.AttachOK {
		report.Findings = append(report.Findings,
			"AttachThreadInput failed; key injection will run without attachment")
	}

	if child := d.focusedChild(uint32(tid)); child != 0 {
		report.FocusedChild = child
	}

	report.Fullscreen = d.isFullscreen(h)
	if report.Fullscreen {
		report.Findings = append(report.Findings,
			"window bounds equal the full screen; may use exclusive input (DirectInput) that ignores synthetic events")
	}

	if len(report.Findings) == 0 {
		report.Findings = append(report.Findings, "no input blockers detected")
	}
	d.logger.Debug(Describe(report))
	return report, nil
}

// testAttach attaches the foreground thread's input to the target thread
// and immediately detaches, reporting whether the attach succeeded.
func (d *WinDiagnoser) testAttach(targetTID uint32) bool {
	fg, _, _ := procGetForegroundWindow.Call()
	if fg == 0 {
		return false
	}
	srcTID, _, _ := procGetWindowThreadProcessId.Call(fg, 0)
	guard := attachThreadInput(uint32(srcTID), targetTID)
	defer guard.Close()
	return uint32(srcTID) == targetTID || guard.attached
}

// focusedChild reports the focused child window in the target's thread,
// visible only while the calling thread's input is attached to it.
func (d *WinDiagnoser) focusedChild(targetTID uint32) model.Handle {
	curTID, _, _ := procGetCurrentThreadId.Call()
	guard := attachThreadInput(uint32(curTID), targetTID)
	defer guard.Close()
	if !guard.attached && uint32(curTID) != targetTID {
		return 0
	}
	focused, _, _ := procGetFocus.Call()
	return model.Handle(focused)
}

func (d *WinDiagnoser) isFullscreen(h model.Handle) bool {
	rect, err := d.dir.WindowRect(h)
	if err != nil {
		return false
	}
	screenW, _, _ := procGetSystemMetrics.Call(smCxScreen)
	screenH, _, _ := procGetSystemMetrics.Call(smCyScreen)
	return rect.Left == 0 && rect.Top == 0 &&
		rect.Right == int(screenW) && rect.Bottom == int(screenH)
}

// Describe renders a report as human-readable lines.
func Describe(r model.DiagReport) string {
	mode := "windowed"
	if r.Fullscreen {
		mode = "fullscreen"
	}
	return fmt.Sprintf("hwnd=%#x title=%q pid=%d process=%s thread=%d desktop=%#x attach_ok=%v mode=%s",
		uintptr(r.Handle), r.Title, r.PID, r.ProcessName, r.ThreadID, r.Desktop, r.AttachOK, mode)
}
