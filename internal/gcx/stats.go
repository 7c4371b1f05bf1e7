package gcx

// Stats is an mstats-style snapshot of allocator and OS-level memory
// figures. The OS fields are populated only where readRUsage
// (stats_unix.go / stats_other.go) can get at them.
type Stats struct {
	TotalBytes uint64 // live GC-managed + raw-tracked bytes, per the Allocator
	GCLimit    uint64
	RawBytes   uint64
	MaxRSSKB   int64 // 0 if unavailable on this platform
}

// ReadStats snapshots the allocator's own counters plus, where supported,
// the process's resident set size via golang.org/x/sys/unix.Getrusage.
func (a *Allocator) ReadStats() Stats {
	s := Stats{
		TotalBytes: a.totalBytes,
		GCLimit:    a.gcLimit,
		RawBytes:   a.rawBytes,
	}
	s.MaxRSSKB = readMaxRSSKB()
	return s
}
