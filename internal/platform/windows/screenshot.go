//go:build windows

package windows

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/winmirror/winmirror/internal/model"
	"github.com/winmirror/winmirror/internal/platform"
)

const (
	srcCopy      = 0x00CC0020
	dibRGBColors = 0
	biRGB        = 0
)

type bitmapInfoHeader struct {
	BiSize          uint32
	BiWidth         int32
	BiHeight        int32
	BiPlanes        uint16
	BiBitCount      uint16
	BiCompression   uint32
	BiSizeImage     uint32
	BiXPelsPerMeter int32
	BiYPelsPerMeter int32
	BiClrUsed       uint32
	BiClrImportant  uint32
}

// WinScreenshotter implements platform.Screenshotter by copying the
// window's device context into a DIB section.
type WinScreenshotter struct {
	dir *WinDirectory
}

func NewScreenshotter(dir *WinDirectory) *WinScreenshotter {
	return &WinScreenshotter{dir: dir}
}

func (s *WinScreenshotter) CaptureWindow(h model.Handle) (image.Image, error) {
	rect, err := s.dir.WindowRect(h)
	if err != nil {
		return nil, err
	}
	width := int32(rect.Width())
	height := int32(rect.Height())
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("window %#x has empty bounds", uintptr(h))
	}

	hWinDC, _, _ := procGetWindowDC.Call(uintptr(h))
	if hWinDC == 0 {
		return nil, platform.ErrWindowGone
	}
	defer procReleaseDC.Call(uintptr(h), hWinDC)

	hMemDC, _, _ := procCreateCompatibleDC.Call(hWinDC)
	if hMemDC == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(hMemDC)

	// Top-down DIB (negative height) so (0,0) is the top-left pixel.
	bmi := bitmapInfoHeader{
		BiSize:        uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		BiWidth:       width,
		BiHeight:      -height,
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: biRGB,
	}

	var bits uintptr
	hBitmap, _, _ := procCreateDIBSection.Call(
		hMemDC,
		uintptr(unsafe.Pointer(&bmi)),
		dibRGBColors,
		uintptr(unsafe.Pointer(&bits)),
		0, 0,
	)
	if hBitmap == 0 {
		return nil, fmt.Errorf("CreateDIBSection failed")
	}
	defer procDeleteObject.Call(hBitmap)

	oldObj, _, _ := procSelectObject.Call(hMemDC, hBitmap)
	if oldObj == 0 {
		return nil, fmt.Errorf("SelectObject failed")
	}
	defer procSelectObject.Call(hMemDC, oldObj)

	ret, _, _ := procBitBlt.Call(
		hMemDC,
		0, 0, uintptr(width), uintptr(height),
		hWinDC,
		0, 0,
		srcCopy,
	)
	if ret == 0 {
		return nil, fmt.Errorf("BitBlt failed for window %#x", uintptr(h))
	}

	total := int(width) * int(height) * 4
	raw := unsafe.Slice((*byte)(unsafe.Pointer(bits)), total)

	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	// DIB pixels are BGRA; swap to RGBA while copying out of the section.
	for i := 0; i < total; i += 4 {
		img.Pix[i+0] = raw[i+2]
		img.Pix[i+1] = raw[i+1]
		img.Pix[i+2] = raw[i+0]
		img.Pix[i+3] = 0xFF
	}
	return img, nil
}
