// Package siformat renders packets for the wire. BinaryFormatter produces
// the byte-exact frame the SmartInspect Console reader expects (spec.md
// §4.5); TextFormatter expands a LogEntry through a "%token%" pattern
// (spec.md §4.6). Grounded on the teacher's internal/vnc and src/rfbplay
// protocols, which hand-roll encoding/binary field-by-field codecs over a
// shared buffer rather than reaching for a serialization library.
package siformat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sandia-minimega/smartinspect-go/v2/pkg/sipacket"
)

// shrinkThreshold matches spec.md §4.5: if the last packet exceeded this
// many bytes, the formatter reallocates its scratch buffer to shrink
// memory footprint; otherwise it just resets the write position.
const shrinkThreshold = 1 << 20 // 1 MiB

// BinaryFormatter encodes packets into the fixed wire format. It is not
// safe for concurrent use: spec.md §5 guarantees only one goroutine
// (a protocol's sync caller, or its single writer task) ever touches a
// given formatter at a time.
type BinaryFormatter struct {
	buf *bytes.Buffer
}

func NewBinaryFormatter() *BinaryFormatter {
	return &BinaryFormatter{buf: new(bytes.Buffer)}
}

// Format returns the complete wire frame for p: uint16 packetType,
// uint32 payloadSize, then the payload itself.
func (f *BinaryFormatter) Format(p sipacket.Packet) ([]byte, error) {
	if f.buf.Len() > shrinkThreshold {
		f.buf = new(bytes.Buffer)
	} else {
		f.buf.Reset()
	}

	payload, err := encodePayload(p)
	if err != nil {
		return nil, err
	}

	binary.Write(f.buf, binary.LittleEndian, uint16(p.PacketType()))
	binary.Write(f.buf, binary.LittleEndian, uint32(len(payload)))
	f.buf.Write(payload)

	out := make([]byte, f.buf.Len())
	copy(out, f.buf.Bytes())
	return out, nil
}

func encodePayload(p sipacket.Packet) ([]byte, error) {
	var buf bytes.Buffer

	switch v := p.(type) {
	case *sipacket.LogEntry:
		encodeLogEntry(&buf, v)
	case *sipacket.ControlCommand:
		encodeControlCommand(&buf, v)
	case *sipacket.Watch:
		encodeWatch(&buf, v)
	case *sipacket.ProcessFlow:
		encodeProcessFlow(&buf, v)
	case *sipacket.LogHeader:
		encodeLogHeader(&buf, v)
	default:
		return nil, fmt.Errorf("siformat: unknown packet type %T", p)
	}

	return buf.Bytes(), nil
}

func w32(buf *bytes.Buffer, v uint32) { binary.Write(buf, binary.LittleEndian, v) }
func wi32(buf *bytes.Buffer, v int32) { binary.Write(buf, binary.LittleEndian, v) }
func wf64(buf *bytes.Buffer, v float64) { binary.Write(buf, binary.LittleEndian, v) }

func encodeLogEntry(buf *bytes.Buffer, e *sipacket.LogEntry) {
	wi32(buf, int32(e.EntryType))
	wi32(buf, int32(e.ViewerID))
	w32(buf, uint32(len(e.AppName)))
	w32(buf, uint32(len(e.SessionName)))
	w32(buf, uint32(len(e.Title)))
	w32(buf, uint32(len(e.HostName)))
	w32(buf, uint32(len(e.Data)))
	wi32(buf, e.ProcessID)
	wi32(buf, e.ThreadID)
	wf64(buf, sipacket.EncodeTimestamp(e.TimestampUS))
	w32(buf, e.Color.Encode())
	buf.WriteString(e.AppName)
	buf.WriteString(e.SessionName)
	buf.WriteString(e.Title)
	buf.WriteString(e.HostName)
	buf.Write(e.Data)
}

func encodeControlCommand(buf *bytes.Buffer, c *sipacket.ControlCommand) {
	wi32(buf, int32(c.CommandType))
	w32(buf, uint32(len(c.Data)))
	buf.Write(c.Data)
}

func encodeWatch(buf *bytes.Buffer, w *sipacket.Watch) {
	w32(buf, uint32(len(w.Name)))
	w32(buf, uint32(len(w.Value)))
	wi32(buf, int32(w.WatchType))
	wf64(buf, sipacket.EncodeTimestamp(w.TimestampUS))
	buf.WriteString(w.Name)
	buf.WriteString(w.Value)
}

func encodeProcessFlow(buf *bytes.Buffer, p *sipacket.ProcessFlow) {
	wi32(buf, int32(p.FlowType))
	w32(buf, uint32(len(p.Title)))
	w32(buf, uint32(len(p.HostName)))
	wi32(buf, p.ProcessID)
	wi32(buf, p.ThreadID)
	wf64(buf, sipacket.EncodeTimestamp(p.TimestampUS))
	buf.WriteString(p.Title)
	buf.WriteString(p.HostName)
}

func encodeLogHeader(buf *bytes.Buffer, h *sipacket.LogHeader) {
	w32(buf, uint32(len(h.Content)))
	buf.WriteString(h.Content)
}
