//go:build linux || darwin

package gcx

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// readMaxRSSKB reports the process's maximum resident set size via
// getrusage(2), wired through golang.org/x/sys/unix to augment the
// allocator's own byte counters with an OS-reported figure.
func readMaxRSSKB() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	// Linux reports Maxrss in KB already; Darwin reports bytes.
	if runtime.GOOS == "darwin" {
		return int64(ru.Maxrss) / 1024
	}
	return int64(ru.Maxrss)
}
