package gcx

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/croc-lang/croc/internal/value"
)

func TestDebugLogOffByDefault(t *testing.T) {
	SetDebugLog(nil)
	a := NewAllocator()
	a.NewTable() // must not panic with no logger installed
}

func TestDebugLogEmitsOnAllocAndCycle(t *testing.T) {
	var buf bytes.Buffer
	SetDebugLog(log.New(&buf, "", 0))
	defer SetDebugLog(nil)

	a := NewAllocator()
	a.NewTable()
	if !strings.Contains(buf.String(), "track table") {
		t.Fatalf("expected an alloc-tracking log line, got %q", buf.String())
	}

	buf.Reset()
	intern := value.NewInternTable([]byte("seed"))
	c := NewCollector(a, intern)
	c.Collect(nil, nil)
	if !strings.Contains(buf.String(), "cycle freed=") {
		t.Fatalf("expected a cycle-summary log line, got %q", buf.String())
	}
}
