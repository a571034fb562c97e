//go:build !windows

package siproto

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
)

// TestPipeHandshakeAndWrite mirrors TestTCPHandshakeAndWrite against the
// Unix-domain-socket stand-in dialPipe uses on non-Windows systems
// (spec.md §4.8 "a platform-equivalent local IPC endpoint elsewhere").
func TestPipeHandshakeAndWrite(t *testing.T) {
	name := "sidebug-test-pipe"
	path := socketPath(name)
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	defer os.Remove(path)

	frames := make(chan []byte, 4)
	go fakeTCPServer(t, ln, frames)

	lk := sioptions.New(map[string]string{"pipename": name})
	base, _, err := NewPipeProtocol(lk)
	if err != nil {
		t.Fatalf("NewPipeProtocol: %v", err)
	}
	base.Start()
	defer base.Stop()

	select {
	case frame := <-frames:
		if len(frame) < 6 {
			t.Fatalf("frame too short: % x", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the post-handshake LogHeader frame")
	}
}
