//go:build !linux && !darwin

package gcx

// readMaxRSSKB has no portable implementation outside unix.Getrusage;
// platforms without it simply report no OS-level figure, and Stats
// falls back to the allocator's own counters.
func readMaxRSSKB() int64 { return 0 }
