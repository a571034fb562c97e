package siproto

import (
	"bufio"
	"net"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siformat"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

var pipeOptionKeys = []string{"pipename"}

// PipeProtocol is the local named-pipe transport sharing the TCP
// handshake (spec.md §4.8). dialPipe is platform-specific: go-winio on
// Windows, a Unix domain socket everywhere else.
type PipeProtocol struct {
	pipeName string

	conn net.Conn
	bw   *bufio.Writer
	fmt_ *siformat.BinaryFormatter
}

// NewPipeProtocol builds the Pipe sink and wraps it in a Base.
func NewPipeProtocol(lk *sioptions.Lookup) (*Base, *PipeProtocol, error) {
	pp := &PipeProtocol{
		pipeName: lk.String("pipename", "smartinspect"),
		fmt_:     siformat.NewBinaryFormatter(),
	}
	base, err := NewBase(pp, lk)
	if err != nil {
		return nil, nil, err
	}
	return base, pp, nil
}

func (pp *PipeProtocol) Name() string               { return "pipe" }
func (pp *PipeProtocol) ValidOptions() []string     { return pipeOptionKeys }
func (pp *PipeProtocol) DefaultCaption() string     { return pp.Name() }
func (pp *PipeProtocol) Dispatch(interface{}) error { return nil }

func (pp *PipeProtocol) Format(p sipacket.Packet) ([]byte, error) { return pp.fmt_.Format(p) }

func (pp *PipeProtocol) Connect() error {
	conn, err := dialPipe(pp.pipeName)
	if err != nil {
		return err
	}
	if err := handshake(conn); err != nil {
		conn.Close()
		return err
	}
	pp.conn = conn
	pp.bw = bufio.NewWriterSize(conn, 8192)
	return nil
}

func (pp *PipeProtocol) Disconnect() error {
	if pp.conn == nil {
		return nil
	}
	err := pp.conn.Close()
	pp.conn = nil
	pp.bw = nil
	return err
}

func (pp *PipeProtocol) WriteFormatted(frame []byte) error {
	if _, err := pp.bw.Write(frame); err != nil {
		return err
	}
	return pp.bw.Flush()
}
