//go:build windows

package windows

import "testing"

func TestEnumCallbackCompiledOnce(t *testing.T) {
	initEnumCallback()
	first := enumCB
	if first == 0 {
		t.Fatal("enum callback not compiled")
	}
	initEnumCallback()
	if enumCB != first {
		t.Error("enum callback must be compiled exactly once")
	}
}

// The runtime caps compiled callbacks at 2000 process-wide and never
// releases them, so enumerating must not compile a new one per call.
func TestListWindowsRepeatedEnumeration(t *testing.T) {
	if testing.Short() {
		t.Skip("repeated enumeration is slow")
	}
	dir := NewDirectory()
	for i := 0; i < 2500; i++ {
		if _, err := dir.ListWindows(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
}
