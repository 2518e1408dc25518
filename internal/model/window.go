package model

// Handle is an opaque OS window identifier. Validity can change at any
// time; never cache one across input events.
type Handle uintptr

// Window represents a visible top-level window.
type Window struct {
	Handle  Handle `yaml:"hwnd"              json:"hwnd"`
	Title   string `yaml:"title"             json:"title"`
	PID     int    `yaml:"pid,omitempty"     json:"pid,omitempty"`
	Focused bool   `yaml:"focused,omitempty" json:"focused,omitempty"`
}
