package smartinspect

import (
	"bytes"
	"testing"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

func TestSetConnectionsAndSubmitFanOut(t *testing.T) {
	si := New("smartinspect_test")
	if err := si.SetConnections(`mem(astext=true,pattern="%title%")`); err != nil {
		t.Fatalf("SetConnections: %v", err)
	}
	defer si.Close()

	e := sipacket.NewLogEntry(sipacket.Warning)
	e.Title = "hello from the test"
	si.Submit(e)

	var buf bytes.Buffer
	si.Dispatch("mem", &buf)
	if !bytes.Contains(buf.Bytes(), []byte("hello from the test")) {
		t.Fatalf("dispatched buffer = %q, want it to contain the submitted title", buf.String())
	}
}

func TestDispatchWildcardReachesEveryProtocol(t *testing.T) {
	si := New("smartinspect_test")
	if err := si.SetConnections(`mem(astext=true,maxsize=4096),mem(astext=true,maxsize=8192)`); err != nil {
		t.Fatalf("SetConnections: %v", err)
	}
	defer si.Close()

	e := sipacket.NewLogEntry(sipacket.Warning)
	e.Title = "wildcard fan-out"
	si.Submit(e)

	var buf1, buf2 bytes.Buffer
	bufs := []*bytes.Buffer{&buf1, &buf2}
	i := 0
	si.Dispatch("*", &buf1)
	si.Dispatch("mem", &buf2)
	for _, b := range bufs {
		i++
		if n := bytes.Count(b.Bytes(), []byte("wildcard fan-out")); n != 2 {
			t.Fatalf("buffer %d holds %d copies, want 2: wildcard/name dispatch did not reach both mem protocols", i, n)
		}
	}
}

func TestSetConnectionsRejectsUnknownProtocol(t *testing.T) {
	si := New("smartinspect_test")
	if err := si.SetConnections(`bogus(foo=1)`); err == nil {
		t.Fatal("expected a configuration error for an unknown protocol name")
	}
	if err := si.SetConnections(`mem()`); err != nil {
		t.Fatalf("SetConnections after failed attempt: %v", err)
	}
	si.Close()
}

func TestSetConnectionsLeavesExistingSetOnError(t *testing.T) {
	si := New("smartinspect_test")
	if err := si.SetConnections(`mem(astext=true)`); err != nil {
		t.Fatalf("initial SetConnections: %v", err)
	}
	defer si.Close()

	si.Submit(sipacket.NewLogEntry(sipacket.Warning))

	if err := si.SetConnections(`bogus(x=1)`); err == nil {
		t.Fatal("expected an error for the malformed second connections string")
	}

	// The original mem protocol should still be live: Dispatch must still
	// reach it after the failed SetConnections attempt.
	var buf bytes.Buffer
	si.Dispatch("mem", &buf)
	if buf.Len() == 0 {
		t.Fatal("existing protocol set was replaced despite SetConnections failing")
	}
}

func TestDefaultInstanceLifecycle(t *testing.T) {
	defer CloseDefault()

	if Default() != nil {
		t.Fatal("Default() before InitDefault should be nil")
	}
	if err := InitDefault("smartinspect_test", `mem()`); err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	if Default() == nil {
		t.Fatal("Default() after InitDefault should be non-nil")
	}

	CloseDefault()
	if Default() != nil {
		t.Fatal("Default() after CloseDefault should be nil")
	}
}
