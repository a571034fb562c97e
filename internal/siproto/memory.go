package siproto

import (
	"io"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/siformat"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sioptions"
	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

var memoryOptionKeys = []string{"maxsize", "astext", "pattern", "indent"}

// MemoryProtocol keeps a byte-capped ring of packets in memory, evicting
// the oldest entries to fit; Dispatch serializes the ring to a caller-
// provided io.Writer (spec.md §4.9). Grounded on pkg/minilog/ring.go's
// container/ring-backed buffer, adapted here to a byte-capped slice
// since the cap is a byte budget, not a fixed slot count.
type MemoryProtocol struct {
	maxSize int64
	asText  bool
	pattern string
	indent  bool

	packets    []sipacket.Packet
	totalBytes int64

	binFmt *siformat.BinaryFormatter
	txtFmt *siformat.TextFormatter
}

// NewMemoryProtocol builds the Memory sink and wraps it in a Base.
func NewMemoryProtocol(lk *sioptions.Lookup) (*Base, *MemoryProtocol, error) {
	mp := &MemoryProtocol{
		maxSize: lk.Size("maxsize", 2<<20),
		asText:  lk.Bool("astext", false),
		pattern: lk.String("pattern", ""),
		indent:  lk.Bool("indent", false),
		binFmt:  siformat.NewBinaryFormatter(),
	}
	if mp.asText {
		mp.txtFmt = siformat.NewTextFormatter(mp.pattern)
		mp.txtFmt.Indent = mp.indent
	}
	base, err := NewBase(mp, lk)
	if err != nil {
		return nil, nil, err
	}
	return base, mp, nil
}

func (mp *MemoryProtocol) Name() string           { return "mem" }
func (mp *MemoryProtocol) ValidOptions() []string { return memoryOptionKeys }
func (mp *MemoryProtocol) DefaultCaption() string { return mp.Name() }

func (mp *MemoryProtocol) Connect() error    { return nil }
func (mp *MemoryProtocol) Disconnect() error { mp.packets = nil; mp.totalBytes = 0; return nil }

// Format stores p in the ring as a side effect; the real encoding only
// happens later, at Dispatch time, against whatever format the caller
// asked for. WriteFormatted is a deliberate no-op since the work already
// happened here — Base's write path is format-then-write, and the ring
// has no second "write" step of its own.
func (mp *MemoryProtocol) Format(p sipacket.Packet) ([]byte, error) {
	mp.appendPacket(p)
	return nil, nil
}

func (mp *MemoryProtocol) WriteFormatted([]byte) error { return nil }

func (mp *MemoryProtocol) appendPacket(p sipacket.Packet) {
	mp.packets = append(mp.packets, p)
	mp.totalBytes += int64(p.Size())
	for mp.totalBytes > mp.maxSize && len(mp.packets) > 0 {
		mp.totalBytes -= int64(mp.packets[0].Size())
		mp.packets = mp.packets[1:]
	}
}

// Dispatch expects state to be an io.Writer; it serializes the current
// ring contents in binary (default) or text format.
func (mp *MemoryProtocol) Dispatch(state interface{}) error {
	w, ok := state.(io.Writer)
	if !ok {
		return nil
	}
	for _, p := range mp.packets {
		var frame []byte
		var err error
		if mp.asText {
			frame = mp.txtFmt.Format(p)
		} else {
			frame, err = mp.binFmt.Format(p)
		}
		if err != nil {
			return err
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}
	return nil
}
