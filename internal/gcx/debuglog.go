package gcx

import (
	"log"

	"github.com/croc-lang/croc/internal/value"
)

// debugLog is nil by default; SetDebugLog turns on an ambient logging
// channel in the same spirit as runtime/debug's externed debug knobs
// (SetGCPercent and friends) — off unless a host explicitly asks for
// it, using the standard "log" package.
var debugLog *log.Logger

// SetDebugLog installs (or, passed nil, removes) a logger that receives
// one line per tracked allocation and one line per GC cycle (the cycle
// line includes the number of finalizers invoked). Intended for
// embedders debugging GC pressure, never required for correct operation.
func SetDebugLog(l *log.Logger) { debugLog = l }

func logAlloc(o value.GCObject, size uint64) {
	if debugLog == nil {
		return
	}
	debugLog.Printf("gcx: track %s (%d bytes)", o.TypeName(), size)
}

func logCycle(stats CollectStats) {
	if debugLog == nil {
		return
	}
	debugLog.Printf("gcx: cycle freed=%d queued_finalizers=%d interned_removed=%d total_bytes=%d gc_limit=%d",
		stats.Freed, stats.Finalized, stats.InternRemoved, stats.TotalBytesAfter, stats.GCLimitAfter)
}
