package siproto

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
)

// fakeTCPServer accepts exactly one connection, sends a banner, reads
// the client banner, then reads and returns every length-framed packet
// it receives until the connection closes.
func fakeTCPServer(t *testing.T, ln net.Listener, frames chan<- []byte) {
	t.Helper()
	conn, err := ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("SmartInspect Server v1\n")); err != nil {
		return
	}
	r := bufio.NewReader(conn)
	if _, err := r.ReadString('\n'); err != nil {
		return
	}

	for {
		header := make([]byte, 6) // packet type(2) + size(4), per the binary formatter
		if _, err := readFull(r, header); err != nil {
			return
		}
		size := int(header[2]) | int(header[3])<<8 | int(header[4])<<16 | int(header[5])<<24
		body := make([]byte, size)
		if _, err := readFull(r, body); err != nil {
			return
		}
		frame := append(append([]byte(nil), header...), body...)
		frames <- frame
	}
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// S2-adjacent: TCP handshake exchanges banners before any packets flow,
// and a connected write round-trips to the fake server (spec.md §4.8/§6).
func TestTCPHandshakeAndWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	frames := make(chan []byte, 4)
	go fakeTCPServer(t, ln, frames)

	addr := ln.Addr().(*net.TCPAddr)
	lk := sioptions.New(map[string]string{
		"host": "127.0.0.1",
		"port": itoa(addr.Port),
	})
	base, _, err := NewTCPProtocol(lk)
	if err != nil {
		t.Fatalf("NewTCPProtocol: %v", err)
	}
	base.Start()
	defer base.Stop()

	select {
	case frame := <-frames:
		// The first frame through is always the LogHeader written by
		// connectLocked immediately after a successful handshake.
		if len(frame) < 6 {
			t.Fatalf("frame too short: % x", frame)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the post-handshake LogHeader frame")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
