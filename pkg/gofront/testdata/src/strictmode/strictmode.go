package strictmode

import "os"

// ReadConfig runs on the UI thread and performs a disk read directly,
// which Strict Mode-style policies forbid there.
func ReadConfig(f *os.File) {
	buf := make([]byte, 16)
	f.Read(buf) // want `Strict Mode violation on UI thread: disk read via os\.File\.Read`
}
