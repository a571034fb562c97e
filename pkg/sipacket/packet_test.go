package sipacket

import "testing"

func TestLevelRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		want Level
	}{
		{"debug", Debug},
		{"VERBOSE", Verbose},
		{"Message", Message},
		{"warning", Warning},
		{"Error", Error},
		{"fatal", Fatal},
		{"control", Control},
	}
	for _, c := range cases {
		got, err := ParseLevel(c.name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParseLevelInvalid(t *testing.T) {
	if _, err := ParseLevel("nope"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestColorSentinel(t *testing.T) {
	// Invariant 3: encoding a null color yields 05 00 00 FF (little-endian
	// uint32 0xFF000005).
	if got := NoColor.Encode(); got != 0xFF000005 {
		t.Fatalf("NoColor.Encode() = %#x, want 0xFF000005", got)
	}
	if !DecodeColor(0xFF000005).IsDefault() {
		t.Fatal("DecodeColor(0xFF000005) should be the default color")
	}

	c := RGB(0x11, 0x22, 0x33)
	got := DecodeColor(c.Encode())
	if got.IsDefault() {
		t.Fatal("round-tripped opaque color should not be default")
	}
	r, g, b, a := got.RGBA()
	if r != 0x11 || g != 0x22 || b != 0x33 || a != 0xFF {
		t.Fatalf("RGBA() = %x %x %x %x, want 11 22 33 ff", r, g, b, a)
	}
}

func TestTimestampFormula(t *testing.T) {
	// Invariant 4.
	if got := EncodeTimestamp(0); got != 25569.0 {
		t.Errorf("EncodeTimestamp(0) = %v, want 25569.0", got)
	}
	if got := EncodeTimestamp(86_400_000_000); got != 25570.0 {
		t.Errorf("EncodeTimestamp(86_400_000_000) = %v, want 25570.0", got)
	}
	if got := DecodeTimestamp(25569.0); got != 0 {
		t.Errorf("DecodeTimestamp(25569.0) = %v, want 0", got)
	}
}

func TestLogEntrySize(t *testing.T) {
	e := NewLogEntry(Message)
	e.AppName = "A"
	e.SessionName = "S"
	e.Title = "T"
	e.HostName = "H"
	want := uint32(packetHeaderOverhead + 4)
	if got := e.Size(); got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	if e.PacketType() != TypeLogEntry {
		t.Errorf("PacketType() = %v, want LogEntry", e.PacketType())
	}
}

func TestLogHeaderContent(t *testing.T) {
	h := ConnectHeader("box", "app")
	want := "hostname=box\r\nappname=app\r\n"
	if h.Content != want {
		t.Errorf("Content = %q, want %q", h.Content, want)
	}
	if h.Level() != Control {
		t.Errorf("Level() = %v, want Control", h.Level())
	}
}
