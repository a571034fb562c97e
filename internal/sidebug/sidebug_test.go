package sidebug

import (
	"bytes"
	"strings"
	"testing"
)

func TestTraceGatedByLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	SetLevel(LevelOff)
	Debug("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty at LevelOff", buf.String())
	}

	SetLevel(LevelDebug)
	Debug("queue trimmed %d bytes", 42)
	if !strings.Contains(buf.String(), "queue trimmed 42 bytes") {
		t.Fatalf("buf = %q, want trace line", buf.String())
	}
}

func TestRingDump(t *testing.T) {
	SetLevel(LevelDebug)
	EnableRing(2)

	Debug("one")
	Debug("two")
	Debug("three")

	got := Dump()
	if len(got) != 2 {
		t.Fatalf("len(Dump()) = %d, want 2: %v", len(got), got)
	}
	if !strings.Contains(got[0], "two") || !strings.Contains(got[1], "three") {
		t.Fatalf("Dump() = %v, want [two, three]", got)
	}
}
