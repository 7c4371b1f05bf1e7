package gcx

import "testing"

func TestReadStatsReflectsAllocatorCounters(t *testing.T) {
	a := NewAllocator()
	a.TrackRaw(128)
	s := a.ReadStats()
	if s.TotalBytes != 128 {
		t.Fatalf("TotalBytes = %d, want 128", s.TotalBytes)
	}
	if s.RawBytes != 128 {
		t.Fatalf("RawBytes = %d, want 128", s.RawBytes)
	}
	if s.GCLimit != defaultGCLimit {
		t.Fatalf("GCLimit = %d, want default %d", s.GCLimit, defaultGCLimit)
	}
}
