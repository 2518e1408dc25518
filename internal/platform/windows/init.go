//go:build windows

package windows

import "github.com/winmirror/winmirror/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		dir := NewDirectory()
		return &platform.Provider{
			Directory:     dir,
			Inputter:      NewInputter(),
			Capturer:      NewCapturer(),
			Diagnoser:     NewDiagnoser(dir),
			Screenshotter: NewScreenshotter(dir),
		}, nil
	}
}
