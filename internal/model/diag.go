package model

// DiagReport collects the findings of an input diagnosis for one target
// window. Fields mirror the checks: thread/desktop identity, a test
// thread-input attach, and the fullscreen-bounds heuristic for windows
// that take exclusive input.
type DiagReport struct {
	Handle       Handle `yaml:"hwnd"                    json:"hwnd"`
	Title        string `yaml:"title"                   json:"title"`
	ThreadID     uint32 `yaml:"thread_id"               json:"thread_id"`
	PID          int    `yaml:"pid"                     json:"pid"`
	ProcessName  string `yaml:"process,omitempty"       json:"process,omitempty"`
	ProcessExe   string `yaml:"exe,omitempty"           json:"exe,omitempty"`
	Desktop      uint64 `yaml:"desktop_handle"          json:"desktop_handle"`
	AttachOK     bool   `yaml:"attach_ok"               json:"attach_ok"`
	FocusedChild Handle `yaml:"focused_child,omitempty" json:"focused_child,omitempty"`
	Fullscreen   bool   `yaml:"fullscreen"              json:"fullscreen"`
	Findings     []string `yaml:"findings,omitempty"    json:"findings,omitempty"`
}
