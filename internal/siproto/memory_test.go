package siproto

import (
	"bytes"
	"testing"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// S7-adjacent: the memory ring evicts the oldest packets once the byte
// budget is exceeded, and Dispatch serializes whatever remains (spec.md
// §4.9).
func TestMemoryProtocolRingEvictsOldest(t *testing.T) {
	// Each entry's Size() is 71 bytes, so a 256-byte budget keeps the
	// newest three.
	lk := sioptions.New(map[string]string{"maxsize": "256", "astext": "true", "pattern": "%title%"})
	base, _, err := NewMemoryProtocol(lk)
	if err != nil {
		t.Fatalf("NewMemoryProtocol: %v", err)
	}
	base.Start()
	defer base.Stop() // Disconnect clears the ring, so dispatch first

	for i := 0; i < 20; i++ {
		e := sipacket.NewLogEntry(sipacket.Warning)
		e.Title = "padding title to eat up the byte budget quickly"
		base.Submit(e)
	}

	var buf bytes.Buffer
	base.Dispatch(&buf)
	if buf.Len() == 0 {
		t.Fatal("expected at least the most recent entries to survive eviction")
	}
}

func TestMemoryProtocolDispatchBinaryDefault(t *testing.T) {
	lk := sioptions.New(nil)
	base, _, err := NewMemoryProtocol(lk)
	if err != nil {
		t.Fatalf("NewMemoryProtocol: %v", err)
	}
	base.Start()
	defer base.Stop()
	e := sipacket.NewLogEntry(sipacket.Warning)
	e.Title = "binary ring entry"
	base.Submit(e)

	var buf bytes.Buffer
	base.Dispatch(&buf)
	if buf.Len() < 6 {
		t.Fatalf("expected at least one binary frame, got %d bytes", buf.Len())
	}
}
