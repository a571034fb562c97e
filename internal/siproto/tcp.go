package siproto

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siformat"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// clientBanner is sent after the server banner during the TCP/pipe
// handshake (spec.md §4.8, §6).
const clientBanner = "SmartInspect Go v1\n"

var tcpOptionKeys = []string{"host", "port", "timeout"}

// TCPProtocol is the banner-handshake, length-framed network sink
// (spec.md §4.8). Grounded on src/meshage/node.go's dial/handshake and
// internal/minitunnel/minitunnel.go's Dial-then-frame shape.
type TCPProtocol struct {
	host    string
	port    int
	timeout time.Duration

	conn net.Conn
	bw   *bufio.Writer
	fmt_ *siformat.BinaryFormatter
}

// NewTCPProtocol builds the TCP sink and wraps it in a Base.
func NewTCPProtocol(lk *sioptions.Lookup) (*Base, *TCPProtocol, error) {
	tp := &TCPProtocol{
		host:    lk.String("host", "127.0.0.1"),
		port:    lk.Int("port", 4228),
		timeout: time.Duration(lk.Timespan("timeout", 30000)) * time.Millisecond,
		fmt_:    siformat.NewBinaryFormatter(),
	}
	base, err := NewBase(tp, lk)
	if err != nil {
		return nil, nil, err
	}
	return base, tp, nil
}

func (tp *TCPProtocol) Name() string               { return "tcp" }
func (tp *TCPProtocol) ValidOptions() []string     { return tcpOptionKeys }
func (tp *TCPProtocol) DefaultCaption() string     { return tp.Name() }
func (tp *TCPProtocol) Dispatch(interface{}) error { return nil }

func (tp *TCPProtocol) Format(p sipacket.Packet) ([]byte, error) { return tp.fmt_.Format(p) }

func (tp *TCPProtocol) Connect() error {
	addr := fmt.Sprintf("%s:%d", tp.host, tp.port)
	conn, err := net.DialTimeout("tcp", addr, tp.timeout)
	if err != nil {
		return err
	}
	tp.conn = conn
	tp.conn.SetDeadline(time.Now().Add(tp.timeout))

	if err := handshake(conn); err != nil {
		conn.Close()
		tp.conn = nil
		return err
	}

	tp.bw = bufio.NewWriterSize(conn, 8192)
	return nil
}

func (tp *TCPProtocol) Disconnect() error {
	if tp.conn == nil {
		return nil
	}
	err := tp.conn.Close()
	tp.conn = nil
	tp.bw = nil
	return err
}

func (tp *TCPProtocol) WriteFormatted(frame []byte) error {
	if _, err := tp.bw.Write(frame); err != nil {
		return err
	}
	return tp.bw.Flush()
}

// handshake performs the line-terminated banner exchange common to TCP
// and pipe sinks (spec.md §4.8, §6).
func handshake(conn net.Conn) error {
	r := bufio.NewReader(conn)
	if _, err := r.ReadString('\n'); err != nil {
		return fmt.Errorf("siproto: server banner closed unexpectedly: %w", err)
	}
	_, err := conn.Write([]byte(clientBanner))
	return err
}
